package repository

import (
	"buildhub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiaryRepository interface {
	Create(entry *model.SiteDiaryEntry) error
	Update(entry *model.SiteDiaryEntry) error
	Delete(id string) error
	FindByID(id string) (*model.SiteDiaryEntry, error)
	ListByProject(projectID string, visibleOnly bool, limit, offset int) ([]model.SiteDiaryEntry, int64, error)
	ListRecent(projectIDs []string, visibleOnly bool, limit int) ([]model.SiteDiaryEntry, error)
}

type diaryRepository struct {
	db *gorm.DB
}

func NewDiaryRepository(db *gorm.DB) DiaryRepository {
	return &diaryRepository{db: db}
}

func (r *diaryRepository) Create(entry *model.SiteDiaryEntry) error {
	return r.db.Omit(clause.Associations).Create(entry).Error
}

func (r *diaryRepository) Update(entry *model.SiteDiaryEntry) error {
	return r.db.Omit(clause.Associations).Save(entry).Error
}

func (r *diaryRepository) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&model.SiteDiaryEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *diaryRepository) FindByID(id string) (*model.SiteDiaryEntry, error) {
	var entry model.SiteDiaryEntry
	if err := r.db.Preload("Author").Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByProject returns the diary newest day first
func (r *diaryRepository) ListByProject(projectID string, visibleOnly bool, limit, offset int) ([]model.SiteDiaryEntry, int64, error) {
	q := r.db.Model(&model.SiteDiaryEntry{}).Where("project_id = ?", projectID)
	if visibleOnly {
		q = q.Where("is_visible_to_client = ?", true)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.SiteDiaryEntry
	err := q.Preload("Author").
		Order("entry_date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *diaryRepository) ListRecent(projectIDs []string, visibleOnly bool, limit int) ([]model.SiteDiaryEntry, error) {
	var entries []model.SiteDiaryEntry
	if len(projectIDs) == 0 {
		return entries, nil
	}
	q := r.db.Preload("Author").Where("project_id IN ?", projectIDs)
	if visibleOnly {
		q = q.Where("is_visible_to_client = ?", true)
	}
	err := q.Order("entry_date DESC, created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
