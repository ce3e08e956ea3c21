package repository

import (
	"fmt"

	"buildhub/internal/model"
	"buildhub/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id string) (*model.Comment, error)
	FindByIDs(ids []string) ([]*model.Comment, error)
	Update(comment *model.Comment) error
	Delete(comment *model.Comment) error
	FindApprovedByPost(postID string) ([]*model.Comment, error)
	CountApprovedByPost(postID string) (int64, error)
	ListByStatus(status, postID string, limit, offset int) ([]*model.Comment, int64, error)
	FindByStatus(status string, limit, offset int) ([]*model.Comment, error)
	CountByStatus() (map[string]int64, error)
}

type commentRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	commentByPostCachePrefix = "comment:post:"
	commentCountCachePrefix  = "comment:count:"
)

func NewCommentRepository(db *gorm.DB, redis *util.RedisClient) CommentRepository {
	return &commentRepository{db: db, redis: redis}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	if err := r.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return err
	}
	invalidatePostComments(r.redis, comment.PostID)
	return nil
}

// FindByID always reads the database: cached copies drop private fields
// such as the author email that moderation needs.
func (r *commentRepository) FindByID(id string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindByIDs(ids []string) ([]*model.Comment, error) {
	var comments []*model.Comment
	if len(ids) == 0 {
		return comments, nil
	}
	err := r.db.Where("id IN ?", ids).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Update(comment *model.Comment) error {
	if err := r.db.Omit(clause.Associations).Save(comment).Error; err != nil {
		return err
	}
	invalidatePostComments(r.redis, comment.PostID)
	return nil
}

// Delete soft-deletes the comment. Replies stay in place and fall out of
// public trees as orphans.
func (r *commentRepository) Delete(comment *model.Comment) error {
	if err := r.db.Delete(comment).Error; err != nil {
		return err
	}
	invalidatePostComments(r.redis, comment.PostID)
	return nil
}

// FindApprovedByPost returns the flat, time-ordered list of approved comments
// that the public tree is assembled from.
func (r *commentRepository) FindApprovedByPost(postID string) ([]*model.Comment, error) {
	cacheKey := commentByPostCachePrefix + postID + ":approved"
	var comments []*model.Comment
	if cacheGet(r.redis, cacheKey, &comments) {
		return comments, nil
	}

	err := r.db.Where("post_id = ? AND status = ?", postID, model.CommentStatusApproved).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	cacheSet(r.redis, cacheKey, comments)
	return comments, nil
}

func (r *commentRepository) CountApprovedByPost(postID string) (int64, error) {
	cacheKey := commentCountCachePrefix + postID
	if r.redis != nil {
		if count, err := r.redis.GetInt64(cacheKey); err == nil {
			return count, nil
		}
	}

	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("post_id = ? AND status = ?", postID, model.CommentStatusApproved).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	cacheSet(r.redis, cacheKey, count)
	return count, nil
}

// ListByStatus is the moderation queue. An empty postID lists across posts.
func (r *commentRepository) ListByStatus(status, postID string, limit, offset int) ([]*model.Comment, int64, error) {
	q := r.db.Model(&model.Comment{}).Where("status = ?", status)
	if postID != "" {
		q = q.Where("post_id = ?", postID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*model.Comment
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// FindByStatus pages through comments oldest first, for batch jobs
func (r *commentRepository) FindByStatus(status string, limit, offset int) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&model.Comment{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count comments by status: %w", err)
	}
	counts := map[string]int64{
		model.CommentStatusPending:  0,
		model.CommentStatusApproved: 0,
		model.CommentStatusRejected: 0,
		model.CommentStatusSpam:     0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func invalidatePostComments(redis *util.RedisClient, postID string) {
	cacheDeletePattern(redis, commentByPostCachePrefix+postID+":*")
	cacheDelete(redis, commentCountCachePrefix+postID)
}
