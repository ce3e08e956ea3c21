package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type BlogPost struct {
	ID              string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AuthorID        string         `gorm:"type:uuid;not null;index" json:"author_id"`
	CategoryID      *string        `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Title           string         `gorm:"type:varchar(200);not null" json:"title"`
	Slug            string         `gorm:"type:varchar(220);uniqueIndex;not null" json:"slug"`
	Excerpt         string         `gorm:"type:varchar(500)" json:"excerpt"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	CoverImageURL   *string        `gorm:"type:text" json:"cover_image_url,omitempty"`
	MetaDescription string         `gorm:"type:varchar(300)" json:"meta_description"`
	Status          string         `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	PublishedAt     *time.Time     `gorm:"index" json:"published_at,omitempty"`
	AllowComments   bool           `gorm:"default:true" json:"allow_comments"`
	ViewCount       int64          `gorm:"default:0" json:"view_count"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Author   User      `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	Tags     []Tag     `gorm:"many2many:blog_post_tags;" json:"tags,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// IsPublished reports whether the post is visible to the public
func (p *BlogPost) IsPublished() bool {
	return p.Status == PostStatusPublished && p.PublishedAt != nil && !p.PublishedAt.After(time.Now())
}

type Category struct {
	ID          string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (Category) TableName() string {
	return "categories"
}

type Tag struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(60);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

func (Tag) TableName() string {
	return "tags"
}
