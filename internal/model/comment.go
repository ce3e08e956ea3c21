package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Moderation statuses
const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
	CommentStatusSpam     = "spam"
)

type Comment struct {
	ID             string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PostID         string         `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID         *string        `gorm:"type:uuid;index" json:"user_id,omitempty"` // nil for anonymous commenters
	ParentID       *string        `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	AuthorName     string         `gorm:"type:varchar(100);not null" json:"author_name"`
	AuthorEmail    string         `gorm:"type:varchar(255);not null" json:"-"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	Status         string         `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	SpamScore      float64        `gorm:"default:0" json:"spam_score,omitempty"`
	IPAddress      string         `gorm:"type:varchar(45)" json:"-"`
	UserAgent      string         `gorm:"type:varchar(512)" json:"-"`
	LikeCount      int64          `gorm:"default:0" json:"like_count"`
	DislikeCount   int64          `gorm:"default:0" json:"dislike_count"`
	ModeratedBy    *string        `gorm:"type:uuid" json:"moderated_by,omitempty"`
	ModeratedAt    *time.Time     `json:"moderated_at,omitempty"`
	ModerationNote string         `gorm:"type:text" json:"moderation_note,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Assembled in memory from a flat listing, never persisted
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (Comment) TableName() string {
	return "comments"
}

// PublicView returns a copy of the comment and its replies without the
// moderation fields.
func (c *Comment) PublicView() *Comment {
	out := *c
	out.SpamScore = 0
	out.ModeratedBy = nil
	out.ModeratedAt = nil
	out.ModerationNote = ""
	if len(c.Replies) > 0 {
		out.Replies = make([]*Comment, len(c.Replies))
		for i, reply := range c.Replies {
			out.Replies[i] = reply.PublicView()
		}
	}
	return &out
}

func IsValidCommentStatus(status string) bool {
	switch status {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected, CommentStatusSpam:
		return true
	}
	return false
}

// CommentLike records one reaction per (comment, user) or, for anonymous
// visitors, per (comment, IP).
type CommentLike struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CommentID string    `gorm:"type:uuid;not null;uniqueIndex:idx_comment_like_user,where:user_id IS NOT NULL;uniqueIndex:idx_comment_like_ip,where:user_id IS NULL" json:"comment_id"`
	UserID    *string   `gorm:"type:uuid;uniqueIndex:idx_comment_like_user,where:user_id IS NOT NULL" json:"user_id,omitempty"`
	IPAddress string    `gorm:"type:varchar(45);uniqueIndex:idx_comment_like_ip,where:user_id IS NULL" json:"-"`
	IsLike    bool      `gorm:"not null" json:"is_like"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

func (CommentLike) TableName() string {
	return "comment_likes"
}
