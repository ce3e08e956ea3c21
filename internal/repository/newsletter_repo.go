package repository

import (
	"time"

	"buildhub/internal/model"

	"gorm.io/gorm"
)

type NewsletterRepository interface {
	CreateSubscriber(sub *model.NewsletterSubscriber) error
	UpdateSubscriber(sub *model.NewsletterSubscriber) error
	FindSubscriberByEmail(email string) (*model.NewsletterSubscriber, error)
	FindSubscriberByConfirmToken(token string) (*model.NewsletterSubscriber, error)
	FindSubscriberByUnsubscribeToken(token string) (*model.NewsletterSubscriber, error)
	ListDeliverableSubscribers() ([]model.NewsletterSubscriber, error)
	CountSubscribers() (active int64, total int64, err error)

	Create(newsletter *model.Newsletter) error
	Update(newsletter *model.Newsletter) error
	FindByID(id string) (*model.Newsletter, error)
	List(limit, offset int) ([]model.Newsletter, int64, error)
	MarkSending(id string) (bool, error)
	MarkSent(id string, recipients int) error
	ReleaseSending(id, status string) error
}

type newsletterRepository struct {
	db *gorm.DB
}

func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{db: db}
}

func (r *newsletterRepository) CreateSubscriber(sub *model.NewsletterSubscriber) error {
	return r.db.Create(sub).Error
}

func (r *newsletterRepository) UpdateSubscriber(sub *model.NewsletterSubscriber) error {
	return r.db.Save(sub).Error
}

func (r *newsletterRepository) FindSubscriberByEmail(email string) (*model.NewsletterSubscriber, error) {
	var sub model.NewsletterSubscriber
	if err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *newsletterRepository) FindSubscriberByConfirmToken(token string) (*model.NewsletterSubscriber, error) {
	var sub model.NewsletterSubscriber
	if err := r.db.Where("confirm_token = ? AND confirm_token <> ''", token).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *newsletterRepository) FindSubscriberByUnsubscribeToken(token string) (*model.NewsletterSubscriber, error) {
	var sub model.NewsletterSubscriber
	if err := r.db.Where("unsubscribe_token = ?", token).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListDeliverableSubscribers returns active subscribers who confirmed their address
func (r *newsletterRepository) ListDeliverableSubscribers() ([]model.NewsletterSubscriber, error) {
	var subs []model.NewsletterSubscriber
	err := r.db.Where("is_active = ? AND confirmed_at IS NOT NULL", true).
		Order("created_at ASC").
		Find(&subs).Error
	return subs, err
}

func (r *newsletterRepository) CountSubscribers() (int64, int64, error) {
	var active, total int64
	if err := r.db.Model(&model.NewsletterSubscriber{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err := r.db.Model(&model.NewsletterSubscriber{}).
		Where("is_active = ? AND confirmed_at IS NOT NULL", true).
		Count(&active).Error
	if err != nil {
		return 0, 0, err
	}
	return active, total, nil
}

func (r *newsletterRepository) Create(newsletter *model.Newsletter) error {
	return r.db.Create(newsletter).Error
}

func (r *newsletterRepository) Update(newsletter *model.Newsletter) error {
	return r.db.Save(newsletter).Error
}

func (r *newsletterRepository) FindByID(id string) (*model.Newsletter, error) {
	var newsletter model.Newsletter
	if err := r.db.Where("id = ?", id).First(&newsletter).Error; err != nil {
		return nil, err
	}
	return &newsletter, nil
}

func (r *newsletterRepository) List(limit, offset int) ([]model.Newsletter, int64, error) {
	var newsletters []model.Newsletter
	var total int64
	if err := r.db.Model(&model.Newsletter{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&newsletters).Error
	if err != nil {
		return nil, 0, err
	}
	return newsletters, total, nil
}

// MarkSending moves a draft to sending. It reports false when the newsletter
// was not a draft, so two concurrent sends cannot both win.
func (r *newsletterRepository) MarkSending(id string) (bool, error) {
	res := r.db.Model(&model.Newsletter{}).
		Where("id = ? AND status = ?", id, model.NewsletterStatusDraft).
		Update("status", model.NewsletterStatusSending)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSending moves a newsletter stuck in sending to status
func (r *newsletterRepository) ReleaseSending(id, status string) error {
	return r.db.Model(&model.Newsletter{}).
		Where("id = ? AND status = ?", id, model.NewsletterStatusSending).
		Update("status", status).Error
}

func (r *newsletterRepository) MarkSent(id string, recipients int) error {
	now := time.Now()
	return r.db.Model(&model.Newsletter{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          model.NewsletterStatusSent,
			"sent_at":         &now,
			"recipient_count": recipients,
		}).Error
}
