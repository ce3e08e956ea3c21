package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"buildhub/internal/model"
	"buildhub/internal/moderation"
	"buildhub/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCommentRunes = 5000

// Live events pushed to a post's room
const (
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentRemoved = "comment.removed"
)

// CommentBroadcaster pushes live comment events to everyone viewing a post
type CommentBroadcaster interface {
	BroadcastToPost(postID, msgType string, payload interface{})
}

type CommentService interface {
	CreateComment(actor Actor, req CreateCommentRequest) (*model.Comment, error)
	GetComment(actor Actor, id string) (*model.Comment, error)
	GetTree(slug string) ([]*model.Comment, error)
	CountApproved(slug string) (int64, error)
	UpdateComment(actor Actor, id string, req UpdateCommentRequest) (*model.Comment, error)
	DeleteComment(actor Actor, id string) error

	ListForModeration(actor Actor, status, postID string, limit, offset int) ([]*model.Comment, int64, error)
	Moderate(actor Actor, id string, req ModerateRequest) (*model.Comment, error)
	BulkModerate(actor Actor, req BulkModerateRequest) (int, error)
	Rescore(actor Actor) (*RescoreResult, error)
}

type CreateCommentRequest struct {
	PostID      string  `json:"post_id" binding:"required"`
	ParentID    *string `json:"parent_id"`
	Content     string  `json:"content" binding:"required"`
	AuthorName  string  `json:"author_name" binding:"max=100"`
	AuthorEmail string  `json:"author_email" binding:"omitempty,email,max=255"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type ModerateRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected spam"`
	Note   string `json:"note" binding:"max=1000"`
}

type BulkModerateRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1,max=200"`
	Status string   `json:"status" binding:"required,oneof=pending approved rejected spam"`
	Note   string   `json:"note" binding:"max=1000"`
}

type RescoreResult struct {
	Processed int            `json:"processed"`
	Changed   map[string]int `json:"changed"`
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	ruleRepo    repository.ModerationRuleRepository
	moderator   *moderation.Moderator
	broadcaster CommentBroadcaster
	validate    *validator.Validate
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	ruleRepo repository.ModerationRuleRepository,
	moderator *moderation.Moderator,
	broadcaster CommentBroadcaster,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		ruleRepo:    ruleRepo,
		moderator:   moderator,
		broadcaster: broadcaster,
		validate:    validator.New(),
	}
}

// CreateComment runs a new comment through moderation and stores it with
// the resulting status. Only approved comments are announced live.
func (s *commentService) CreateComment(actor Actor, req CreateCommentRequest) (*model.Comment, error) {
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.FindByID(req.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.IsPublished() {
		return nil, ErrPostNotFound
	}
	if !post.AllowComments {
		return nil, ErrCommentsClosed
	}

	var parentID *string
	if req.ParentID != nil && *req.ParentID != "" {
		parent, err := s.commentRepo.FindByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, ErrParentMismatch
		}
		if parent.Status != model.CommentStatusApproved {
			return nil, ErrParentNotFound
		}
		parentID = &parent.ID
	}

	comment := &model.Comment{
		PostID:    post.ID,
		ParentID:  parentID,
		Content:   content,
		IPAddress: actor.IP,
		UserAgent: truncate(actor.UserAgent, 512),
	}

	trusted := false
	if actor.IsAuthenticated() {
		user, err := s.userRepo.FindByID(actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		comment.UserID = &user.ID
		comment.AuthorName = user.DisplayName()
		comment.AuthorEmail = user.Email
		trusted = user.IsStaff()
	} else {
		name := strings.TrimSpace(req.AuthorName)
		email := strings.TrimSpace(req.AuthorEmail)
		if name == "" || s.validate.Var(email, "required,email") != nil {
			return nil, ErrAuthorRequired
		}
		comment.AuthorName = name
		comment.AuthorEmail = strings.ToLower(email)
	}

	decision := s.moderator.Evaluate(moderation.Input{
		Content:     comment.Content,
		AuthorEmail: comment.AuthorEmail,
		IP:          comment.IPAddress,
		Trusted:     trusted,
	}, s.activeRules())
	comment.Status = decision.Status
	comment.SpamScore = decision.Score

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	logDecision("comment moderated", comment, decision)
	if comment.Status == model.CommentStatusApproved {
		s.broadcast(comment.PostID, EventCommentCreated, comment.PublicView())
	}
	return comment, nil
}

// GetComment hides comments that are not approved from everyone except
// their author and staff.
func (s *commentService) GetComment(actor Actor, id string) (*model.Comment, error) {
	comment, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if comment.Status != model.CommentStatusApproved && !actor.IsStaff() && !ownsComment(actor, comment) {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// GetTree assembles the public thread for a post from approved comments
func (s *commentService) GetTree(slug string) ([]*model.Comment, error) {
	post, err := s.publishedPost(slug)
	if err != nil {
		return nil, err
	}
	flat, err := s.commentRepo.FindApprovedByPost(post.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	return moderation.BuildTree(flat), nil
}

func (s *commentService) CountApproved(slug string) (int64, error) {
	post, err := s.publishedPost(slug)
	if err != nil {
		return 0, err
	}
	return s.commentRepo.CountApprovedByPost(post.ID)
}

// UpdateComment lets authors edit their own comment. The new text goes
// through moderation again.
func (s *commentService) UpdateComment(actor Actor, id string, req UpdateCommentRequest) (*model.Comment, error) {
	comment, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !ownsComment(actor, comment) {
		return nil, ErrForbidden
	}
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}

	wasApproved := comment.Status == model.CommentStatusApproved
	comment.Content = content

	decision := s.moderator.Evaluate(moderation.Input{
		Content:     comment.Content,
		AuthorEmail: comment.AuthorEmail,
		IP:          comment.IPAddress,
		Trusted:     actor.IsStaff(),
	}, s.activeRules())

	status := decision.Status
	// Once a moderator has ruled, an edit can send the comment back to the
	// queue but never approve it on its own
	if comment.ModeratedBy != nil && status == model.CommentStatusApproved {
		status = model.CommentStatusPending
	}
	if status != comment.Status {
		comment.ModeratedBy = nil
		comment.ModeratedAt = nil
		comment.ModerationNote = ""
	}
	comment.Status = status
	comment.SpamScore = decision.Score

	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	logDecision("comment re-moderated", comment, decision)
	s.announceTransition(comment, wasApproved, EventCommentUpdated)
	return comment, nil
}

func (s *commentService) DeleteComment(actor Actor, id string) error {
	comment, err := s.find(id)
	if err != nil {
		return err
	}
	if !ownsComment(actor, comment) && !actor.IsStaff() {
		return ErrForbidden
	}
	if err := s.commentRepo.Delete(comment); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if comment.Status == model.CommentStatusApproved {
		s.broadcast(comment.PostID, EventCommentRemoved, map[string]string{"id": comment.ID})
	}
	zap.L().Info("comment deleted", zap.String("comment_id", id), zap.String("by", actor.UserID))
	return nil
}

func (s *commentService) ListForModeration(actor Actor, status, postID string, limit, offset int) ([]*model.Comment, int64, error) {
	if !actor.IsStaff() {
		return nil, 0, ErrForbidden
	}
	if status == "" {
		status = model.CommentStatusPending
	}
	if !model.IsValidCommentStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	return s.commentRepo.ListByStatus(status, postID, limit, offset)
}

func (s *commentService) Moderate(actor Actor, id string, req ModerateRequest) (*model.Comment, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if !model.IsValidCommentStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	comment, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := s.setStatus(actor, comment, req.Status, req.Note); err != nil {
		return nil, err
	}
	return comment, nil
}

// BulkModerate applies one status to many comments. Unknown IDs are skipped;
// the count of updated comments is returned.
func (s *commentService) BulkModerate(actor Actor, req BulkModerateRequest) (int, error) {
	if !actor.IsStaff() {
		return 0, ErrForbidden
	}
	if !model.IsValidCommentStatus(req.Status) {
		return 0, ErrInvalidStatus
	}

	comments, err := s.commentRepo.FindByIDs(uniqueStrings(req.IDs))
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, comment := range comments {
		if err := s.setStatus(actor, comment, req.Status, req.Note); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *commentService) setStatus(actor Actor, comment *model.Comment, status, note string) error {
	wasApproved := comment.Status == model.CommentStatusApproved
	now := time.Now()
	comment.Status = status
	comment.ModeratedBy = &actor.UserID
	comment.ModeratedAt = &now
	comment.ModerationNote = strings.TrimSpace(note)

	if err := s.commentRepo.Update(comment); err != nil {
		return fmt.Errorf("moderate comment: %w", err)
	}

	zap.L().Info("comment moderated manually",
		zap.String("comment_id", comment.ID),
		zap.String("status", status),
		zap.String("by", actor.UserID))
	s.announceTransition(comment, wasApproved, EventCommentUpdated)
	return nil
}

const rescoreBatchSize = 100

// Rescore re-runs automatic moderation over the pending queue, for example
// after the rules changed. Comments a moderator already decided on are left alone.
func (s *commentService) Rescore(actor Actor) (*RescoreResult, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	rules := s.activeRules()
	result := &RescoreResult{Changed: map[string]int{}}
	trusted := map[string]bool{}

	offset := 0
	for {
		batch, err := s.commentRepo.FindByStatus(model.CommentStatusPending, rescoreBatchSize, offset)
		if err != nil {
			return result, fmt.Errorf("load pending comments: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, comment := range batch {
			result.Processed++
			if comment.ModeratedBy != nil {
				offset++
				continue
			}

			decision := s.moderator.Evaluate(moderation.Input{
				Content:     comment.Content,
				AuthorEmail: comment.AuthorEmail,
				IP:          comment.IPAddress,
				Trusted:     s.isTrusted(comment.UserID, trusted),
			}, rules)

			comment.SpamScore = decision.Score
			if decision.Status == comment.Status {
				offset++
				if err := s.commentRepo.Update(comment); err != nil {
					return result, fmt.Errorf("update comment: %w", err)
				}
				continue
			}

			comment.Status = decision.Status
			if err := s.commentRepo.Update(comment); err != nil {
				return result, fmt.Errorf("update comment: %w", err)
			}
			result.Changed[decision.Status]++
			if comment.Status == model.CommentStatusApproved {
				s.broadcast(comment.PostID, EventCommentCreated, comment.PublicView())
			}
		}
	}

	zap.L().Info("pending comments rescored",
		zap.Int("processed", result.Processed),
		zap.Any("changed", result.Changed),
		zap.String("by", actor.UserID))
	return result, nil
}

func (s *commentService) isTrusted(userID *string, cache map[string]bool) bool {
	if userID == nil {
		return false
	}
	if trusted, ok := cache[*userID]; ok {
		return trusted
	}
	trusted := false
	if user, err := s.userRepo.FindByID(*userID); err == nil {
		trusted = user.IsStaff()
	}
	cache[*userID] = trusted
	return trusted
}

// activeRules never fails the caller: without rules moderation falls back
// to score thresholds.
func (s *commentService) activeRules() []model.ModerationRule {
	rules, err := s.ruleRepo.ListActive()
	if err != nil {
		zap.L().Error("failed to load moderation rules", zap.Error(err))
		return nil
	}
	moderation.SortRules(rules)
	return rules
}

// announceTransition tells live viewers about a comment whose visibility
// may have changed.
func (s *commentService) announceTransition(comment *model.Comment, wasApproved bool, updateEvent string) {
	isApproved := comment.Status == model.CommentStatusApproved
	switch {
	case isApproved && wasApproved:
		s.broadcast(comment.PostID, updateEvent, comment.PublicView())
	case isApproved:
		s.broadcast(comment.PostID, EventCommentCreated, comment.PublicView())
	case wasApproved:
		s.broadcast(comment.PostID, EventCommentRemoved, map[string]string{"id": comment.ID})
	}
}

func (s *commentService) broadcast(postID, event string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToPost(postID, event, payload)
	}
}

func (s *commentService) publishedPost(slug string) (*model.BlogPost, error) {
	post, err := s.postRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.IsPublished() {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *commentService) find(id string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func ownsComment(actor Actor, comment *model.Comment) bool {
	return actor.IsAuthenticated() && comment.UserID != nil && *comment.UserID == actor.UserID
}

func cleanContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(content); n == 0 || n > maxCommentRunes {
		return "", ErrInvalidContent
	}
	return content, nil
}

// truncate cuts s to at most max bytes without splitting a rune
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func logDecision(msg string, comment *model.Comment, d moderation.Decision) {
	fields := []zap.Field{
		zap.String("comment_id", comment.ID),
		zap.String("post_id", comment.PostID),
		zap.String("status", d.Status),
		zap.Float64("spam_score", d.Score),
		zap.Strings("reasons", d.Reasons),
	}
	if d.Rule != nil {
		fields = append(fields, zap.String("rule", d.Rule.Name))
	}
	zap.L().Info(msg, fields...)
}
