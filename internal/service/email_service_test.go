package service

import (
	"errors"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	from := &mail.Address{Name: "Triple G BuildHub", Address: "no-reply@triplegbuildhub.com"}
	now := time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC)

	msg := string(buildMessage(from, "pat@example.com", "Spring update ✓", "<p>Hello</p>", now))

	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)
	assert.Equal(t, "<p>Hello</p>", body)
	assert.Contains(t, headers, "To: pat@example.com\r\n")
	assert.Contains(t, headers, "Subject: =?utf-8?q?Spring_update_=E2=9C=93?=\r\n")
	assert.Contains(t, headers, "Date: Mon, 01 Apr 2024 09:30:00 +0000\r\n")
	assert.Contains(t, headers, "@triplegbuildhub.com>\r\n")
	assert.Contains(t, headers, "Content-Type: text/html; charset=UTF-8")
}

func TestDeliver(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	svc := &emailService{
		host: "smtp.example.com",
		port: 587,
		from: "Triple G BuildHub <no-reply@triplegbuildhub.com>",
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo = addr, from, to
			return nil
		},
	}

	require.NoError(t, svc.SendNewsletter("pat@example.com", "<Pat>", "News", "<p>Hi</p>", "https://x/unsub"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@triplegbuildhub.com", gotFrom)
	assert.Equal(t, []string{"pat@example.com"}, gotTo)

	svc.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 try later") }
	err := svc.SendSubscriptionConfirm("pat@example.com", "", "https://x/confirm")
	assert.ErrorContains(t, err, "421 try later")
}

func TestDeliver_WithoutSMTPHostOnlyLogs(t *testing.T) {
	called := false
	svc := &emailService{send: func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}}

	assert.NoError(t, svc.SendSubscriptionConfirm("pat@example.com", "Pat", "https://x/confirm"))
	assert.False(t, called)
}

func TestGreetingEscapesName(t *testing.T) {
	assert.Equal(t, "there", greeting("  "))
	assert.Equal(t, "&lt;Pat&gt;", greeting("<Pat>"))
}
