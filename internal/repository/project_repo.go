package repository

import (
	"fmt"

	"buildhub/internal/model"
	"buildhub/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectFilter struct {
	Category string
	Status   string
	Featured bool
	Limit    int
	Offset   int
}

type ProjectRepository interface {
	Create(project *model.Project) error
	Update(project *model.Project) error
	Delete(project *model.Project) error
	FindByID(id string) (*model.Project, error)
	FindBySlug(slug string) (*model.Project, error)
	SlugExists(slug, excludeID string) (bool, error)
	ListPublic(filter ProjectFilter) ([]model.Project, int64, error)
	List(filter ProjectFilter) ([]model.Project, int64, error)
	ListByClient(clientID string) ([]model.Project, error)
	AddImage(image *model.ProjectImage) error
	NextImageOrder(projectID string) (int, error)
	Search(query string, limit int) ([]model.Project, error)
	ListPublicForSitemap() ([]model.Project, error)
	CountByStatus() (map[string]int64, error)
}

type projectRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	projectBySlugCachePrefix = "project:slug:"
	projectListCachePrefix   = "project:list:"
)

type cachedProjectPage struct {
	Projects []model.Project `json:"projects"`
	Total    int64           `json:"total"`
}

func NewProjectRepository(db *gorm.DB, redis *util.RedisClient) ProjectRepository {
	return &projectRepository{db: db, redis: redis}
}

func (r *projectRepository) Create(project *model.Project) error {
	if err := r.db.Omit(clause.Associations).Create(project).Error; err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *projectRepository) Update(project *model.Project) error {
	if err := r.db.Omit(clause.Associations).Save(project).Error; err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *projectRepository) Delete(project *model.Project) error {
	if err := r.db.Delete(project).Error; err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *projectRepository) FindByID(id string) (*model.Project, error) {
	var project model.Project
	if err := r.preload(r.db).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindBySlug(slug string) (*model.Project, error) {
	var project model.Project
	if cacheGet(r.redis, projectBySlugCachePrefix+slug, &project) {
		return &project, nil
	}
	if err := r.preload(r.db).Where("slug = ?", slug).First(&project).Error; err != nil {
		return nil, err
	}
	cacheSet(r.redis, projectBySlugCachePrefix+slug, &project)
	return &project, nil
}

func (r *projectRepository) SlugExists(slug, excludeID string) (bool, error) {
	var count int64
	q := r.db.Unscoped().Model(&model.Project{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPublic is the portfolio: public projects only, featured first
func (r *projectRepository) ListPublic(filter ProjectFilter) ([]model.Project, int64, error) {
	cacheKey := fmt.Sprintf("%s%s:%s:%t:%d:%d", projectListCachePrefix, filter.Category, filter.Status, filter.Featured, filter.Limit, filter.Offset)
	var page cachedProjectPage
	if cacheGet(r.redis, cacheKey, &page) {
		return page.Projects, page.Total, nil
	}

	q := r.filtered(filter).Where("is_public = ?", true)
	projects, total, err := r.page(q, filter, "is_featured DESC, completion_date DESC NULLS LAST, created_at DESC")
	if err != nil {
		return nil, 0, err
	}

	cacheSet(r.redis, cacheKey, cachedProjectPage{Projects: projects, Total: total})
	return projects, total, nil
}

func (r *projectRepository) List(filter ProjectFilter) ([]model.Project, int64, error) {
	return r.page(r.filtered(filter), filter, "updated_at DESC")
}

func (r *projectRepository) ListByClient(clientID string) ([]model.Project, error) {
	var projects []model.Project
	err := r.preload(r.db).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) AddImage(image *model.ProjectImage) error {
	if err := r.db.Create(image).Error; err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *projectRepository) NextImageOrder(projectID string) (int, error) {
	var max *int
	err := r.db.Model(&model.ProjectImage{}).
		Select("MAX(sort_order)").
		Where("project_id = ?", projectID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func (r *projectRepository) Search(query string, limit int) ([]model.Project, error) {
	pattern := containsPattern(query)
	var projects []model.Project
	err := r.db.Where("is_public = ?", true).
		Where("title ILIKE ? OR description ILIKE ? OR location ILIKE ?", pattern, pattern, pattern).
		Order("is_featured DESC, created_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) ListPublicForSitemap() ([]model.Project, error) {
	var projects []model.Project
	err := r.db.Select("id", "slug", "updated_at").
		Where("is_public = ?", true).
		Order("updated_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&model.Project{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *projectRepository) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Client").Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, created_at ASC")
	})
}

func (r *projectRepository) filtered(filter ProjectFilter) *gorm.DB {
	q := r.db.Model(&model.Project{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Featured {
		q = q.Where("is_featured = ?", true)
	}
	return q
}

func (r *projectRepository) page(q *gorm.DB, filter ProjectFilter, order string) ([]model.Project, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var projects []model.Project
	err := r.preload(q).Order(order).Limit(filter.Limit).Offset(filter.Offset).Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *projectRepository) invalidate() {
	cacheDeletePattern(r.redis, projectBySlugCachePrefix+"*")
	cacheDeletePattern(r.redis, projectListCachePrefix+"*")
}
