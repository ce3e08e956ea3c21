package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"buildhub/internal/model"
	"buildhub/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	NewsletterExchange   = "newsletter_exchange"
	NewsletterQueue      = "newsletter_queue"
	NewsletterRoutingKey = "newsletter"
)

// JobPublisher queues delivery jobs. *util.RabbitMQClient implements it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// NewsletterJob is one email to one subscriber
type NewsletterJob struct {
	NewsletterID   string `json:"newsletter_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Subject        string `json:"subject"`
	Content        string `json:"content"`
	UnsubscribeURL string `json:"unsubscribe_url"`
}

type NewsletterService interface {
	Subscribe(req SubscribeRequest) (*model.NewsletterSubscriber, error)
	Confirm(token string) (*model.NewsletterSubscriber, error)
	Unsubscribe(token string) (*model.NewsletterSubscriber, error)

	CreateDraft(actor Actor, req NewsletterRequest) (*model.Newsletter, error)
	UpdateDraft(actor Actor, id string, req NewsletterRequest) (*model.Newsletter, error)
	GetNewsletter(actor Actor, id string) (*model.Newsletter, error)
	ListNewsletters(actor Actor, limit, offset int) ([]model.Newsletter, int64, error)
	Send(ctx context.Context, actor Actor, id string) (*model.Newsletter, error)
	Deliver(job NewsletterJob) error
}

type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Name  string `json:"name" binding:"max=100"`
}

type NewsletterRequest struct {
	Subject string `json:"subject" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

type newsletterService struct {
	repo      repository.NewsletterRepository
	email     EmailService
	publisher JobPublisher
	siteURL   string
}

// NewNewsletterService wires newsletters. publisher may be nil, in which case
// Send delivers to every subscriber in the calling goroutine.
func NewNewsletterService(
	repo repository.NewsletterRepository,
	email EmailService,
	publisher JobPublisher,
	siteURL string,
) NewsletterService {
	return &newsletterService{
		repo:      repo,
		email:     email,
		publisher: publisher,
		siteURL:   strings.TrimRight(siteURL, "/"),
	}
}

// Subscribe is idempotent per email. A previously unsubscribed address is
// reactivated; an unconfirmed one gets a fresh confirmation link.
func (s *newsletterService) Subscribe(req SubscribeRequest) (*model.NewsletterSubscriber, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)

	sub, err := s.repo.FindSubscriberByEmail(email)
	switch {
	case err == nil:
		changed := false
		if !sub.IsActive {
			sub.IsActive = true
			changed = true
		}
		if name != "" && name != sub.Name {
			sub.Name = name
			changed = true
		}
		if sub.ConfirmedAt == nil {
			sub.ConfirmToken = newToken()
			changed = true
		}
		if changed {
			if err := s.repo.UpdateSubscriber(sub); err != nil {
				return nil, fmt.Errorf("update subscriber: %w", err)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = &model.NewsletterSubscriber{
			Email:        email,
			Name:         name,
			IsActive:     true,
			ConfirmToken: newToken(),
		}
		if err := s.repo.CreateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}
		zap.L().Info("newsletter subscriber added", zap.String("subscriber_id", sub.ID))
	default:
		return nil, err
	}

	if sub.ConfirmedAt == nil {
		link := s.link("/api/v1/newsletter/confirm", sub.ConfirmToken)
		if err := s.email.SendSubscriptionConfirm(sub.Email, sub.Name, link); err != nil {
			zap.L().Warn("failed to send confirmation email", zap.String("subscriber_id", sub.ID), zap.Error(err))
		}
	}
	return sub, nil
}

func (s *newsletterService) Confirm(token string) (*model.NewsletterSubscriber, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	sub, err := s.repo.FindSubscriberByConfirmToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	now := time.Now()
	sub.ConfirmedAt = &now
	sub.ConfirmToken = ""
	sub.IsActive = true
	if err := s.repo.UpdateSubscriber(sub); err != nil {
		return nil, fmt.Errorf("confirm subscriber: %w", err)
	}
	return sub, nil
}

func (s *newsletterService) Unsubscribe(token string) (*model.NewsletterSubscriber, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	sub, err := s.repo.FindSubscriberByUnsubscribeToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !sub.IsActive {
		return sub, nil
	}

	sub.IsActive = false
	if err := s.repo.UpdateSubscriber(sub); err != nil {
		return nil, fmt.Errorf("unsubscribe: %w", err)
	}
	zap.L().Info("newsletter subscriber left", zap.String("subscriber_id", sub.ID))
	return sub, nil
}

func (s *newsletterService) CreateDraft(actor Actor, req NewsletterRequest) (*model.Newsletter, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	n := &model.Newsletter{
		Subject:   strings.TrimSpace(req.Subject),
		Content:   req.Content,
		Status:    model.NewsletterStatusDraft,
		CreatedBy: actor.UserID,
	}
	if err := s.repo.Create(n); err != nil {
		return nil, fmt.Errorf("create newsletter: %w", err)
	}
	return n, nil
}

func (s *newsletterService) UpdateDraft(actor Actor, id string, req NewsletterRequest) (*model.Newsletter, error) {
	n, err := s.GetNewsletter(actor, id)
	if err != nil {
		return nil, err
	}
	if n.Status != model.NewsletterStatusDraft {
		return nil, ErrNewsletterSent
	}
	n.Subject = strings.TrimSpace(req.Subject)
	n.Content = req.Content
	if err := s.repo.Update(n); err != nil {
		return nil, fmt.Errorf("update newsletter: %w", err)
	}
	return n, nil
}

func (s *newsletterService) GetNewsletter(actor Actor, id string) (*model.Newsletter, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	n, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsletterNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *newsletterService) ListNewsletters(actor Actor, limit, offset int) ([]model.Newsletter, int64, error) {
	if !actor.IsStaff() {
		return nil, 0, ErrForbidden
	}
	return s.repo.List(limit, offset)
}

// Send moves a draft to sending, fans out one job per confirmed active
// subscriber and marks the newsletter sent. A newsletter is sent at most once.
func (s *newsletterService) Send(ctx context.Context, actor Actor, id string) (*model.Newsletter, error) {
	n, err := s.GetNewsletter(actor, id)
	if err != nil {
		return nil, err
	}
	if n.Status != model.NewsletterStatusDraft {
		return nil, ErrNewsletterSent
	}
	claimed, err := s.repo.MarkSending(n.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrNewsletterSent
	}

	subs, err := s.repo.ListDeliverableSubscribers()
	if err != nil {
		// nothing was delivered, so the draft can be sent again
		s.release(n.ID, model.NewsletterStatusDraft)
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	queued, direct := 0, 0
	for _, sub := range subs {
		job := NewsletterJob{
			NewsletterID:   n.ID,
			Email:          sub.Email,
			Name:           sub.Name,
			Subject:        n.Subject,
			Content:        n.Content,
			UnsubscribeURL: s.link("/api/v1/newsletter/unsubscribe", sub.UnsubscribeToken),
		}
		if s.publisher != nil {
			err := s.publisher.PublishJSON(ctx, NewsletterExchange, NewsletterRoutingKey, job)
			if err == nil {
				queued++
				continue
			}
			zap.L().Warn("failed to queue newsletter job, delivering directly", zap.String("email", sub.Email), zap.Error(err))
		}
		_ = s.Deliver(job)
		direct++
	}

	if err := s.repo.MarkSent(n.ID, len(subs)); err != nil {
		s.release(n.ID, model.NewsletterStatusFailed)
		return nil, fmt.Errorf("mark newsletter sent: %w", err)
	}
	zap.L().Info("newsletter sent",
		zap.String("newsletter_id", n.ID),
		zap.Int("recipients", len(subs)),
		zap.Int("queued", queued),
		zap.Int("direct", direct))

	return s.repo.FindByID(n.ID)
}

func (s *newsletterService) release(id, status string) {
	if err := s.repo.ReleaseSending(id, status); err != nil {
		zap.L().Error("failed to release sending newsletter",
			zap.String("newsletter_id", id),
			zap.String("status", status),
			zap.Error(err))
	}
}

// Deliver sends one job. Failures are logged and returned, never retried.
func (s *newsletterService) Deliver(job NewsletterJob) error {
	err := s.email.SendNewsletter(job.Email, job.Name, job.Subject, job.Content, job.UnsubscribeURL)
	if err != nil {
		zap.L().Error("newsletter delivery failed",
			zap.String("newsletter_id", job.NewsletterID),
			zap.String("email", job.Email),
			zap.Error(err))
	}
	return err
}

func (s *newsletterService) link(path, token string) string {
	return s.siteURL + path + "?token=" + url.QueryEscape(token)
}

func newToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
