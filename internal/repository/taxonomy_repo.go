package repository

import (
	"buildhub/internal/model"
	"buildhub/internal/util"

	"gorm.io/gorm"
)

// TaxonomyRepository stores blog categories and tags
type TaxonomyRepository interface {
	CreateCategory(category *model.Category) error
	ListCategories() ([]model.Category, error)
	FindCategoryByID(id string) (*model.Category, error)
	CreateTag(tag *model.Tag) error
	ListTags() ([]model.Tag, error)
	FindTagsByIDs(ids []string) ([]model.Tag, error)
	FindTagBySlug(slug string) (*model.Tag, error)
	CategorySlugExists(slug string) (bool, error)
	TagSlugExists(slug string) (bool, error)
}

type taxonomyRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	categoryListCacheKey = "taxonomy:categories"
	tagListCacheKey      = "taxonomy:tags"
)

func NewTaxonomyRepository(db *gorm.DB, redis *util.RedisClient) TaxonomyRepository {
	return &taxonomyRepository{db: db, redis: redis}
}

func (r *taxonomyRepository) CreateCategory(category *model.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		return err
	}
	cacheDelete(r.redis, categoryListCacheKey)
	return nil
}

func (r *taxonomyRepository) ListCategories() ([]model.Category, error) {
	var categories []model.Category
	if cacheGet(r.redis, categoryListCacheKey, &categories) {
		return categories, nil
	}
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	cacheSet(r.redis, categoryListCacheKey, categories)
	return categories, nil
}

func (r *taxonomyRepository) FindCategoryByID(id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *taxonomyRepository) CreateTag(tag *model.Tag) error {
	if err := r.db.Create(tag).Error; err != nil {
		return err
	}
	cacheDelete(r.redis, tagListCacheKey)
	return nil
}

func (r *taxonomyRepository) ListTags() ([]model.Tag, error) {
	var tags []model.Tag
	if cacheGet(r.redis, tagListCacheKey, &tags) {
		return tags, nil
	}
	if err := r.db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	cacheSet(r.redis, tagListCacheKey, tags)
	return tags, nil
}

func (r *taxonomyRepository) FindTagsByIDs(ids []string) ([]model.Tag, error) {
	var tags []model.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.Where("id IN ?", ids).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *taxonomyRepository) FindTagBySlug(slug string) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.Where("slug = ?", slug).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *taxonomyRepository) CategorySlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Category{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *taxonomyRepository) TagSlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Tag{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
