package service

import (
	"errors"

	"buildhub/internal/model"
	"buildhub/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReactionService interface {
	React(actor Actor, commentID string, isLike bool) (*repository.ReactionResult, error)
}

type ReactRequest struct {
	IsLike *bool `json:"is_like" binding:"required"`
}

type reactionService struct {
	commentRepo repository.CommentRepository
	likeRepo    repository.CommentLikeRepository
	broadcaster CommentBroadcaster
}

func NewReactionService(
	commentRepo repository.CommentRepository,
	likeRepo repository.CommentLikeRepository,
	broadcaster CommentBroadcaster,
) ReactionService {
	return &reactionService{
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		broadcaster: broadcaster,
	}
}

// React toggles the actor's like or dislike. Signed-in users are keyed by
// user ID, anonymous visitors by IP.
func (s *reactionService) React(actor Actor, commentID string, isLike bool) (*repository.ReactionResult, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.Status != model.CommentStatusApproved {
		return nil, ErrReactionNotAllowed
	}

	var userID *string
	if actor.IsAuthenticated() {
		id := actor.UserID
		userID = &id
	} else if actor.IP == "" {
		return nil, ErrForbidden
	}

	result, err := s.likeRepo.Toggle(comment.ID, userID, actor.IP, isLike)
	if err != nil {
		zap.L().Error("failed to toggle reaction", zap.String("comment_id", comment.ID), zap.Error(err))
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToPost(comment.PostID, "comment.reaction", map[string]interface{}{
			"id":            comment.ID,
			"like_count":    result.LikeCount,
			"dislike_count": result.DislikeCount,
		})
	}
	return result, nil
}
