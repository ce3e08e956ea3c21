package repository

import (
	"errors"
	"fmt"

	"buildhub/internal/model"
	"buildhub/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionAction is what a reaction request did to the stored record
type ReactionAction string

const (
	ReactionAdded    ReactionAction = "added"
	ReactionRemoved  ReactionAction = "removed"
	ReactionSwitched ReactionAction = "switched"
)

// ReactionResult carries the outcome and the comment's counters afterwards
type ReactionResult struct {
	Action       ReactionAction `json:"action"`
	IsLike       *bool          `json:"is_like"`
	LikeCount    int64          `json:"like_count"`
	DislikeCount int64          `json:"dislike_count"`
}

// NextReaction decides the toggle: no record adds one, the same value
// removes it and the opposite value switches it.
func NextReaction(existing *model.CommentLike, isLike bool) ReactionAction {
	switch {
	case existing == nil:
		return ReactionAdded
	case existing.IsLike == isLike:
		return ReactionRemoved
	default:
		return ReactionSwitched
	}
}

// counterDeltas returns how like_count and dislike_count move for action
func counterDeltas(action ReactionAction, isLike bool) (likes, dislikes int) {
	switch action {
	case ReactionAdded:
		likes, dislikes = 1, 0
	case ReactionRemoved:
		likes, dislikes = -1, 0
	case ReactionSwitched:
		likes, dislikes = 1, -1
	}
	if !isLike {
		likes, dislikes = dislikes, likes
	}
	return likes, dislikes
}

type CommentLikeRepository interface {
	Toggle(commentID string, userID *string, ip string, isLike bool) (*ReactionResult, error)
	FindReaction(commentID string, userID *string, ip string) (*model.CommentLike, error)
}

type commentLikeRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

func NewCommentLikeRepository(db *gorm.DB, redis *util.RedisClient) CommentLikeRepository {
	return &commentLikeRepository{db: db, redis: redis}
}

// Toggle applies a reaction and adjusts the comment counters in one
// transaction. The comment row is locked so concurrent reactions serialize.
func (r *commentLikeRepository) Toggle(commentID string, userID *string, ip string, isLike bool) (*ReactionResult, error) {
	var result ReactionResult
	var postID string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var comment model.Comment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "post_id").
			Where("id = ?", commentID).
			First(&comment).Error
		if err != nil {
			return err
		}
		postID = comment.PostID

		existing, err := findReaction(tx, commentID, userID, ip)
		if err != nil {
			return err
		}

		result.Action = NextReaction(existing, isLike)
		switch result.Action {
		case ReactionAdded:
			like := &model.CommentLike{CommentID: commentID, UserID: userID, IPAddress: ip, IsLike: isLike}
			if err := tx.Create(like).Error; err != nil {
				return err
			}
		case ReactionRemoved:
			if err := tx.Delete(existing).Error; err != nil {
				return err
			}
		case ReactionSwitched:
			if err := tx.Model(existing).Update("is_like", isLike).Error; err != nil {
				return err
			}
		}
		if result.Action != ReactionRemoved {
			result.IsLike = &isLike
		}

		likes, dislikes := counterDeltas(result.Action, isLike)
		err = tx.Model(&model.Comment{}).
			Where("id = ?", commentID).
			UpdateColumns(map[string]interface{}{
				"like_count":    gorm.Expr("GREATEST(like_count + ?, 0)", likes),
				"dislike_count": gorm.Expr("GREATEST(dislike_count + ?, 0)", dislikes),
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&model.Comment{}).
			Select("like_count", "dislike_count").
			Where("id = ?", commentID).
			Row().
			Scan(&result.LikeCount, &result.DislikeCount)
	})
	if err != nil {
		return nil, fmt.Errorf("toggle reaction: %w", err)
	}

	invalidatePostComments(r.redis, postID)
	return &result, nil
}

func (r *commentLikeRepository) FindReaction(commentID string, userID *string, ip string) (*model.CommentLike, error) {
	return findReaction(r.db, commentID, userID, ip)
}

// findReaction returns nil without error when the actor has not reacted
func findReaction(db *gorm.DB, commentID string, userID *string, ip string) (*model.CommentLike, error) {
	q := db.Where("comment_id = ?", commentID)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	} else {
		q = q.Where("user_id IS NULL AND ip_address = ?", ip)
	}

	var like model.CommentLike
	err := q.First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}
