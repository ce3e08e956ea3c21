package repository

import (
	"buildhub/internal/model"
	"buildhub/internal/util"

	"gorm.io/gorm"
)

type ModerationRuleRepository interface {
	Create(rule *model.ModerationRule) error
	Update(rule *model.ModerationRule) error
	Delete(id string) error
	FindByID(id string) (*model.ModerationRule, error)
	FindByName(name string) (*model.ModerationRule, error)
	List() ([]model.ModerationRule, error)
	ListActive() ([]model.ModerationRule, error)
}

type moderationRuleRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const activeRulesCacheKey = "moderation:rules:active"

func NewModerationRuleRepository(db *gorm.DB, redis *util.RedisClient) ModerationRuleRepository {
	return &moderationRuleRepository{db: db, redis: redis}
}

func (r *moderationRuleRepository) Create(rule *model.ModerationRule) error {
	if err := r.db.Create(rule).Error; err != nil {
		return err
	}
	cacheDelete(r.redis, activeRulesCacheKey)
	return nil
}

func (r *moderationRuleRepository) Update(rule *model.ModerationRule) error {
	if err := r.db.Save(rule).Error; err != nil {
		return err
	}
	cacheDelete(r.redis, activeRulesCacheKey)
	return nil
}

func (r *moderationRuleRepository) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&model.ModerationRule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cacheDelete(r.redis, activeRulesCacheKey)
	return nil
}

func (r *moderationRuleRepository) FindByID(id string) (*model.ModerationRule, error) {
	var rule model.ModerationRule
	if err := r.db.Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *moderationRuleRepository) FindByName(name string) (*model.ModerationRule, error) {
	var rule model.ModerationRule
	if err := r.db.Where("name = ?", name).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// List returns every rule in evaluation order
func (r *moderationRuleRepository) List() ([]model.ModerationRule, error) {
	var rules []model.ModerationRule
	err := r.db.Order("priority ASC, created_at ASC, id ASC").Find(&rules).Error
	return rules, err
}

// ListActive returns the active rules in evaluation order. The result is
// cached because every new comment reads it.
func (r *moderationRuleRepository) ListActive() ([]model.ModerationRule, error) {
	var rules []model.ModerationRule
	if cacheGet(r.redis, activeRulesCacheKey, &rules) {
		return rules, nil
	}

	err := r.db.Where("is_active = ?", true).
		Order("priority ASC, created_at ASC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	cacheSet(r.redis, activeRulesCacheKey, rules)
	return rules, nil
}
