package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rule types
const (
	RuleTypeKeyword     = "keyword"
	RuleTypeEmailDomain = "email_domain"
	RuleTypeIP          = "ip"
	RuleTypeLength      = "length"
	RuleTypeLinkCount   = "link_count"
	RuleTypeCapsRatio   = "caps_ratio"
)

// Rule actions
const (
	RuleActionApprove = "approve"
	RuleActionReject  = "reject"
	RuleActionSpam    = "spam"
	RuleActionHold    = "hold"
)

type ModerationRule struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	RuleType  string    `gorm:"type:varchar(20);not null" json:"rule_type"`
	Pattern   string    `gorm:"type:text" json:"pattern"`
	Threshold float64   `gorm:"default:0" json:"threshold"`
	Action    string    `gorm:"type:varchar(20);not null" json:"action"`
	Priority  int       `gorm:"default:100;index" json:"priority"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *ModerationRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

func (ModerationRule) TableName() string {
	return "moderation_rules"
}
