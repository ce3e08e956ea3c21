package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusOngoing   = "ongoing"
	ProjectStatusCompleted = "completed"
)

type Project struct {
	ID             string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title          string         `gorm:"type:varchar(200);not null" json:"title"`
	Slug           string         `gorm:"type:varchar(220);uniqueIndex;not null" json:"slug"`
	Description    string         `gorm:"type:text" json:"description"`
	Location       string         `gorm:"type:varchar(200)" json:"location"`
	Category       string         `gorm:"type:varchar(50);index" json:"category"` // residential, commercial, renovation, ...
	Status         string         `gorm:"type:varchar(20);default:'planning';index" json:"status"`
	ClientID       *string        `gorm:"type:uuid;index" json:"client_id,omitempty"`
	StartDate      *time.Time     `json:"start_date,omitempty"`
	CompletionDate *time.Time     `json:"completion_date,omitempty"`
	IsFeatured     bool           `gorm:"default:false" json:"is_featured"`
	IsPublic       bool           `gorm:"default:false;index" json:"is_public"`
	CoverImageURL  *string        `gorm:"type:text" json:"cover_image_url,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Client *User          `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	Images []ProjectImage `gorm:"foreignKey:ProjectID;references:ID" json:"images,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (Project) TableName() string {
	return "projects"
}

func IsValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusPlanning, ProjectStatusOngoing, ProjectStatusCompleted:
		return true
	}
	return false
}

type ProjectImage struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID string    `gorm:"type:uuid;not null;index" json:"project_id"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Caption   string    `gorm:"type:varchar(255)" json:"caption,omitempty"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (i *ProjectImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

func (ProjectImage) TableName() string {
	return "project_images"
}

// SiteDiaryEntry is a dated log of on-site work for a project
type SiteDiaryEntry struct {
	ID                string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID         string    `gorm:"type:uuid;not null;index" json:"project_id"`
	AuthorID          string    `gorm:"type:uuid;not null" json:"author_id"`
	EntryDate         time.Time `gorm:"type:date;not null;index" json:"entry_date"`
	Weather           string    `gorm:"type:varchar(100)" json:"weather,omitempty"`
	WorkCompleted     string    `gorm:"type:text;not null" json:"work_completed"`
	Issues            string    `gorm:"type:text" json:"issues,omitempty"`
	WorkersOnSite     int       `gorm:"default:0" json:"workers_on_site"`
	IsVisibleToClient bool      `gorm:"default:true" json:"is_visible_to_client"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

func (e *SiteDiaryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

func (SiteDiaryEntry) TableName() string {
	return "site_diary_entries"
}

// All lists every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&User{}, &Category{}, &Tag{}, &BlogPost{}, &Comment{}, &CommentLike{},
		&ModerationRule{}, &NewsletterSubscriber{}, &Newsletter{},
		&Project{}, &ProjectImage{}, &SiteDiaryEntry{},
	}
}
