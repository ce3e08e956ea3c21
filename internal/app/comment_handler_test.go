package app

import (
	"net/http"
	"testing"

	"buildhub/internal/model"
	"buildhub/internal/repository"
	"buildhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func anonymous(a service.Actor) bool {
	return a.UserID == "" && a.IP != ""
}

func TestCreateComment_AnonymousPending(t *testing.T) {
	comments := new(MockCommentService)
	r := newTestRouter(Services{Comment: comments}, nil)

	req := service.CreateCommentRequest{
		PostID:      "post-1",
		Content:     "When does the second phase start?",
		AuthorName:  "Dana",
		AuthorEmail: "dana@example.com",
	}
	comments.On("CreateComment", mock.MatchedBy(anonymous), req).
		Return(&model.Comment{ID: "c1", PostID: "post-1", Status: model.CommentStatusPending}, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/comments", req, "")

	require.Equal(t, http.StatusCreated, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Comment submitted and awaiting moderation", env.Message)
	comments.AssertExpectations(t)
}

func TestCreateComment_SignedInApproved(t *testing.T) {
	comments := new(MockCommentService)
	r := newTestRouter(Services{Comment: comments}, nil)

	comments.On("CreateComment", mock.MatchedBy(func(a service.Actor) bool {
		return a.UserID == "u1" && a.Role == model.RoleSubscriber
	}), mock.Anything).Return(&model.Comment{ID: "c1", Status: model.CommentStatusApproved}, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/comments",
		gin.H{"post_id": "post-1", "content": "Lovely finish"}, tokenFor(t, "u1", model.RoleSubscriber))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Comment posted successfully", decode(t, w).Message)
}

func TestCreateComment_Validation(t *testing.T) {
	comments := new(MockCommentService)
	r := newTestRouter(Services{Comment: comments}, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/comments", gin.H{"author_email": "nope"}, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "is required", env.Errors["post_id"])
	assert.Equal(t, "is required", env.Errors["content"])
	assert.Equal(t, "must be a valid email address", env.Errors["author_email"])
	comments.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything)
}

func TestCreateComment_ClosedPost(t *testing.T) {
	comments := new(MockCommentService)
	r := newTestRouter(Services{Comment: comments}, nil)
	comments.On("CreateComment", mock.Anything, mock.Anything).Return(nil, service.ErrCommentsClosed)

	w := doRequest(r, http.MethodPost, "/api/v1/comments", gin.H{"post_id": "p", "content": "hi"}, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetCommentTree(t *testing.T) {
	comments := new(MockCommentService)
	r := newTestRouter(Services{Comment: comments}, nil)

	staff := "u-staff"
	reply := &model.Comment{ID: "c2", Content: "reply", SpamScore: 0.2, ModeratedBy: &staff, ModerationNote: "checked the link"}
	root := &model.Comment{ID: "c1", Content: "root", SpamScore: 0.4, Replies: []*model.Comment{reply}}
	comments.On("GetTree", "kitchen-extension").Return([]*model.Comment{root}, nil)
	comments.On("GetTree", "draft-post").Return(nil, service.ErrPostNotFound)

	w := doRequest(r, http.MethodGet, "/api/v1/posts/kitchen-extension/comments", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode(t, w).Data["comments"].([]interface{})
	require.Len(t, tree, 1)
	first := tree[0].(map[string]interface{})
	assert.NotContains(t, first, "spam_score")
	replies := first["replies"].([]interface{})
	require.Len(t, replies, 1)
	for _, field := range []string{"spam_score", "moderated_by", "moderation_note"} {
		assert.NotContains(t, replies[0], field)
	}
	assert.Equal(t, "u-staff", *reply.ModeratedBy, "service value must not be modified")

	w = doRequest(r, http.MethodGet, "/api/v1/posts/draft-post/comments", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCommentCount(t *testing.T) {
	comments := new(MockCommentService)
	r := newTestRouter(Services{Comment: comments}, nil)
	comments.On("CountApproved", "kitchen-extension").Return(int64(7), nil)

	w := doRequest(r, http.MethodGet, "/api/v1/posts/kitchen-extension/comments/count", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7), decode(t, w).Data["count"])
}

func TestReact(t *testing.T) {
	reactions := new(MockReactionService)
	r := newTestRouter(Services{Reaction: reactions}, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/comments/c1/react", gin.H{}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "is required", decode(t, w).Errors["is_like"])

	dislike := false
	reactions.On("React", mock.MatchedBy(anonymous), "c1", false).Return(&repository.ReactionResult{
		Action:       repository.ReactionAdded,
		IsLike:       &dislike,
		DislikeCount: 1,
	}, nil)

	w = doRequest(r, http.MethodPost, "/api/v1/comments/c1/react", gin.H{"is_like": false}, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Reaction added", env.Message)
	assert.Equal(t, float64(1), env.Data["dislike_count"])
	reactions.AssertExpectations(t)
}

func TestUpdateComment_RequiresAuth(t *testing.T) {
	comments := new(MockCommentService)
	r := newTestRouter(Services{Comment: comments}, nil)

	w := doRequest(r, http.MethodPut, "/api/v1/comments/c1", gin.H{"content": "edited"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	comments.On("UpdateComment", mock.Anything, "c1", service.UpdateCommentRequest{Content: "edited"}).
		Return(nil, service.ErrForbidden)
	w = doRequest(r, http.MethodPut, "/api/v1/comments/c1", gin.H{"content": "edited"}, tokenFor(t, "u2", model.RoleSubscriber))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestModerationQueue(t *testing.T) {
	comments := new(MockCommentService)
	r := newTestRouter(Services{Comment: comments}, nil)

	comments.On("ListForModeration", mock.Anything, "spam", "", 20, 0).
		Return([]*model.Comment{{ID: "c9", Status: model.CommentStatusSpam}}, int64(1), nil)
	comments.On("BulkModerate", mock.Anything, service.BulkModerateRequest{IDs: []string{"c9"}, Status: "rejected"}).
		Return(1, nil)

	staff := tokenFor(t, "st", model.RoleStaff)

	w := doRequest(r, http.MethodGet, "/api/v1/admin/comments?status=spam", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w).Data["total"])

	w = doRequest(r, http.MethodPost, "/api/v1/admin/comments/bulk", gin.H{"ids": []string{"c9"}, "status": "rejected"}, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w).Data["updated"])

	w = doRequest(r, http.MethodPost, "/api/v1/admin/comments/c9/moderate", gin.H{"status": "deleted"}, staff)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	comments.AssertExpectations(t)
}

func TestGetComment_ModerationFieldsStaffOnly(t *testing.T) {
	comments := new(MockCommentService)
	r := newTestRouter(Services{Comment: comments}, nil)

	moderator := "u-staff"
	comments.On("GetComment", mock.Anything, "c1").Return(&model.Comment{
		ID:             "c1",
		Status:         model.CommentStatusPending,
		SpamScore:      0.6,
		ModeratedBy:    &moderator,
		ModerationNote: "held for review",
	}, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/comments/c1", nil, tokenFor(t, "u1", model.RoleSubscriber))
	require.Equal(t, http.StatusOK, w.Code)
	comment := decode(t, w).Data["comment"].(map[string]interface{})
	assert.NotContains(t, comment, "spam_score")
	assert.NotContains(t, comment, "moderated_by")
	assert.NotContains(t, comment, "moderation_note")

	w = doRequest(r, http.MethodGet, "/api/v1/comments/c1", nil, tokenFor(t, "u-staff", model.RoleStaff))
	require.Equal(t, http.StatusOK, w.Code)
	comment = decode(t, w).Data["comment"].(map[string]interface{})
	assert.Equal(t, 0.6, comment["spam_score"])
	assert.Equal(t, "held for review", comment["moderation_note"])
}
