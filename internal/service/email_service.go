package service

import (
	"bytes"
	"fmt"
	"html"
	"mime"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"buildhub/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmailService delivers transactional and newsletter mail
type EmailService interface {
	SendSubscriptionConfirm(to, name, confirmURL string) error
	SendNewsletter(to, name, subject, content, unsubscribeURL string) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     sendMailFunc
}

// NewEmailService sends through SMTP. Without SMTP_HOST mail is only logged,
// which keeps local development free of a mail server.
func NewEmailService(cfg *config.Config) EmailService {
	return &emailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		send:     smtp.SendMail,
	}
}

func (s *emailService) SendSubscriptionConfirm(to, name, confirmURL string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Please confirm your subscription to the Triple G BuildHub newsletter:</p>"+
			"<p><a href=\"%s\">Confirm subscription</a></p>"+
			"<p>If you did not sign up you can ignore this email.</p>",
		greeting(name), confirmURL)
	return s.deliver(to, "Confirm your subscription", body)
}

func (s *emailService) SendNewsletter(to, name, subject, content, unsubscribeURL string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p>%s<hr><p style=\"font-size:12px\"><a href=\"%s\">Unsubscribe</a></p>",
		greeting(name), content, unsubscribeURL)
	return s.deliver(to, subject, body)
}

func (s *emailService) deliver(to, subject, htmlBody string) error {
	if s.host == "" {
		zap.L().Info("smtp not configured, email not sent", zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	from, err := mail.ParseAddress(s.from)
	if err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	msg := buildMessage(from, to, subject, htmlBody, time.Now())

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	addr := s.host + ":" + strconv.Itoa(s.port)
	if err := s.send(addr, auth, from.Address, []string{to}, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from *mail.Address, to, subject, htmlBody string, now time.Time) []byte {
	var buf bytes.Buffer
	header := func(k, v string) {
		buf.WriteString(k + ": " + v + "\r\n")
	}
	header("From", from.String())
	header("To", to)
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.New().String()+"@"+domainOf(from.Address)+">")
	header("MIME-Version", "1.0")
	header("Content-Type", "text/html; charset=UTF-8")
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	return buf.Bytes()
}

func greeting(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return html.EscapeString(name)
	}
	return "there"
}

func domainOf(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 {
		return address[i+1:]
	}
	return "localhost"
}
