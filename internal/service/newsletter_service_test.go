package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"buildhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type newsletterFixture struct {
	repo      *MockNewsletterRepository
	email     *MockEmailService
	publisher *MockPublisher
}

func (f *newsletterFixture) service(withQueue bool) NewsletterService {
	if withQueue {
		return NewNewsletterService(f.repo, f.email, f.publisher, "https://triplegbuildhub.com/")
	}
	return NewNewsletterService(f.repo, f.email, nil, "https://triplegbuildhub.com/")
}

func newNewsletterFixture() *newsletterFixture {
	return &newsletterFixture{
		repo:      new(MockNewsletterRepository),
		email:     new(MockEmailService),
		publisher: new(MockPublisher),
	}
}

func TestSubscribe_NewAddressGetsConfirmation(t *testing.T) {
	f := newNewsletterFixture()
	svc := f.service(false)

	f.repo.On("FindSubscriberByEmail", "pat@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.repo.On("CreateSubscriber", mock.AnythingOfType("*model.NewsletterSubscriber")).Return(nil)
	f.email.On("SendSubscriptionConfirm", "pat@example.com", "Pat", mock.MatchedBy(func(link string) bool {
		return strings.HasPrefix(link, "https://triplegbuildhub.com/api/v1/newsletter/confirm?token=")
	})).Return(nil)

	sub, err := svc.Subscribe(SubscribeRequest{Email: " Pat@Example.com ", Name: "Pat"})
	require.NoError(t, err)
	assert.True(t, sub.IsActive)
	assert.Len(t, sub.ConfirmToken, 32)
	assert.Nil(t, sub.ConfirmedAt)
	f.email.AssertExpectations(t)
}

func TestSubscribe_IsIdempotentAndReactivates(t *testing.T) {
	f := newNewsletterFixture()
	svc := f.service(false)

	confirmed := time.Now().Add(-24 * time.Hour)
	existing := &model.NewsletterSubscriber{ID: "s1", Email: "pat@example.com", IsActive: false, ConfirmedAt: &confirmed}
	f.repo.On("FindSubscriberByEmail", "pat@example.com").Return(existing, nil)
	f.repo.On("UpdateSubscriber", existing).Return(nil).Once()

	sub, err := svc.Subscribe(SubscribeRequest{Email: "pat@example.com"})
	require.NoError(t, err)
	assert.Same(t, existing, sub)
	assert.True(t, sub.IsActive)

	// already active and confirmed: nothing to write, no email
	_, err = svc.Subscribe(SubscribeRequest{Email: "pat@example.com"})
	require.NoError(t, err)
	f.repo.AssertNumberOfCalls(t, "UpdateSubscriber", 1)
	f.email.AssertNotCalled(t, "SendSubscriptionConfirm", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscribe_EmailFailureIsSwallowed(t *testing.T) {
	f := newNewsletterFixture()
	svc := f.service(false)

	f.repo.On("FindSubscriberByEmail", "pat@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.repo.On("CreateSubscriber", mock.Anything).Return(nil)
	f.email.On("SendSubscriptionConfirm", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := svc.Subscribe(SubscribeRequest{Email: "pat@example.com"})
	assert.NoError(t, err)
}

func TestConfirmAndUnsubscribe(t *testing.T) {
	f := newNewsletterFixture()
	svc := f.service(false)

	sub := &model.NewsletterSubscriber{ID: "s1", Email: "pat@example.com", IsActive: true, ConfirmToken: "tok", UnsubscribeToken: "bye"}
	f.repo.On("FindSubscriberByConfirmToken", "tok").Return(sub, nil)
	f.repo.On("FindSubscriberByConfirmToken", "bad").Return(nil, gorm.ErrRecordNotFound)
	f.repo.On("FindSubscriberByUnsubscribeToken", "bye").Return(sub, nil)
	f.repo.On("UpdateSubscriber", sub).Return(nil)

	_, err := svc.Confirm("bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Confirm("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	got, err := svc.Confirm("tok")
	require.NoError(t, err)
	assert.NotNil(t, got.ConfirmedAt)
	assert.Empty(t, got.ConfirmToken)

	got, err = svc.Unsubscribe("bye")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestSend_QueuesOneJobPerSubscriber(t *testing.T) {
	f := newNewsletterFixture()
	svc := f.service(true)

	draft := &model.Newsletter{ID: "n1", Subject: "Spring update", Content: "<p>News</p>", Status: model.NewsletterStatusDraft}
	sent := &model.Newsletter{ID: "n1", Status: model.NewsletterStatusSent, RecipientCount: 2}
	f.repo.On("FindByID", "n1").Return(draft, nil).Once()
	f.repo.On("MarkSending", "n1").Return(true, nil)
	f.repo.On("ListDeliverableSubscribers").Return([]model.NewsletterSubscriber{
		{Email: "a@example.com", UnsubscribeToken: "ua"},
		{Email: "b@example.com", UnsubscribeToken: "ub"},
	}, nil)
	f.publisher.On("PublishJSON", NewsletterExchange, NewsletterRoutingKey, mock.MatchedBy(func(job NewsletterJob) bool {
		return job.NewsletterID == "n1" && job.Subject == "Spring update" &&
			strings.HasPrefix(job.UnsubscribeURL, "https://triplegbuildhub.com/api/v1/newsletter/unsubscribe?token=u")
	})).Return(nil).Twice()
	f.repo.On("MarkSent", "n1", 2).Return(nil)
	f.repo.On("FindByID", "n1").Return(sent, nil).Once()

	got, err := svc.Send(context.Background(), staffActor, "n1")
	require.NoError(t, err)
	assert.Equal(t, model.NewsletterStatusSent, got.Status)
	f.publisher.AssertExpectations(t)
	f.email.AssertNotCalled(t, "SendNewsletter", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_WithoutQueueDeliversDirectly(t *testing.T) {
	f := newNewsletterFixture()
	svc := f.service(false)

	draft := &model.Newsletter{ID: "n1", Subject: "Spring update", Content: "<p>News</p>", Status: model.NewsletterStatusDraft}
	f.repo.On("FindByID", "n1").Return(draft, nil)
	f.repo.On("MarkSending", "n1").Return(true, nil)
	f.repo.On("ListDeliverableSubscribers").Return([]model.NewsletterSubscriber{
		{Email: "a@example.com", Name: "A", UnsubscribeToken: "ua"},
		{Email: "b@example.com", Name: "B", UnsubscribeToken: "ub"},
	}, nil)
	f.email.On("SendNewsletter", "a@example.com", "A", "Spring update", "<p>News</p>", mock.Anything).Return(errors.New("mailbox full"))
	f.email.On("SendNewsletter", "b@example.com", "B", "Spring update", "<p>News</p>", mock.Anything).Return(nil)
	f.repo.On("MarkSent", "n1", 2).Return(nil)

	_, err := svc.Send(context.Background(), staffActor, "n1")
	require.NoError(t, err)
	f.email.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestSend_OnlyOnce(t *testing.T) {
	f := newNewsletterFixture()
	svc := f.service(true)

	f.repo.On("FindByID", "sent").Return(&model.Newsletter{ID: "sent", Status: model.NewsletterStatusSent}, nil)
	f.repo.On("FindByID", "racing").Return(&model.Newsletter{ID: "racing", Status: model.NewsletterStatusDraft}, nil)
	f.repo.On("MarkSending", "racing").Return(false, nil)

	_, err := svc.Send(context.Background(), staffActor, "sent")
	assert.ErrorIs(t, err, ErrNewsletterSent)

	_, err = svc.Send(context.Background(), staffActor, "racing")
	assert.ErrorIs(t, err, ErrNewsletterSent)

	_, err = svc.Send(context.Background(), Actor{UserID: "u1", Role: model.RoleSubscriber}, "racing")
	assert.ErrorIs(t, err, ErrForbidden)

	f.repo.AssertNotCalled(t, "ListDeliverableSubscribers")
}

func TestSend_ListFailureReturnsToDraft(t *testing.T) {
	f := newNewsletterFixture()
	svc := f.service(true)

	f.repo.On("FindByID", "n1").Return(&model.Newsletter{ID: "n1", Status: model.NewsletterStatusDraft}, nil)
	f.repo.On("MarkSending", "n1").Return(true, nil)
	f.repo.On("ListDeliverableSubscribers").Return(nil, errors.New("connection reset"))
	f.repo.On("ReleaseSending", "n1", model.NewsletterStatusDraft).Return(nil)

	_, err := svc.Send(context.Background(), staffActor, "n1")
	assert.ErrorContains(t, err, "connection reset")
	f.repo.AssertExpectations(t)
	f.repo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_MarkSentFailureFlagsNewsletter(t *testing.T) {
	f := newNewsletterFixture()
	svc := f.service(true)

	f.repo.On("FindByID", "n1").Return(&model.Newsletter{ID: "n1", Subject: "Spring update", Status: model.NewsletterStatusDraft}, nil)
	f.repo.On("MarkSending", "n1").Return(true, nil)
	f.repo.On("ListDeliverableSubscribers").Return([]model.NewsletterSubscriber{{Email: "a@example.com", UnsubscribeToken: "ua"}}, nil)
	f.publisher.On("PublishJSON", NewsletterExchange, NewsletterRoutingKey, mock.Anything).Return(nil)
	f.repo.On("MarkSent", "n1", 1).Return(errors.New("deadlock detected"))
	f.repo.On("ReleaseSending", "n1", model.NewsletterStatusFailed).Return(nil)

	_, err := svc.Send(context.Background(), staffActor, "n1")
	assert.ErrorContains(t, err, "deadlock detected")
	f.repo.AssertExpectations(t)
}
