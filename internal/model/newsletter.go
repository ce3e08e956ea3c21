package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NewsletterStatusDraft   = "draft"
	NewsletterStatusSending = "sending"
	NewsletterStatusSent    = "sent"
	// Delivery started but the newsletter could not be marked sent
	NewsletterStatusFailed = "failed"
)

type NewsletterSubscriber struct {
	ID               string     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name             string     `gorm:"type:varchar(100)" json:"name"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	ConfirmToken     string     `gorm:"type:varchar(64);index" json:"-"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	UnsubscribeToken string     `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *NewsletterSubscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.UnsubscribeToken == "" {
		s.UnsubscribeToken = uuid.New().String()
	}
	return nil
}

func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}

type Newsletter struct {
	ID             string     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Subject        string     `gorm:"type:varchar(200);not null" json:"subject"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	Status         string     `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	RecipientCount int        `gorm:"default:0" json:"recipient_count"`
	CreatedBy      string     `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Newsletter) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

func (Newsletter) TableName() string {
	return "newsletters"
}
