package app

import (
	"net/http"

	"buildhub/internal/model"
	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService  service.CommentService
	reactionService service.ReactionService
}

func NewCommentHandler(commentService service.CommentService, reactionService service.ReactionService) *CommentHandler {
	return &CommentHandler{
		commentService:  commentService,
		reactionService: reactionService,
	}
}

// CreateComment accepts comments from signed-in users and anonymous visitors.
// The response status tells the author whether it is visible yet.
// POST /api/v1/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req service.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.CreateComment(actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Comment posted successfully"
	if comment.Status != model.CommentStatusApproved {
		message = "Comment submitted and awaiting moderation"
	}
	util.SuccessResponse(c, http.StatusCreated, message, gin.H{"comment": viewFor(c, comment)})
}

// GetComment
// GET /api/v1/comments/:id
func (h *CommentHandler) GetComment(c *gin.Context) {
	comment, err := h.commentService.GetComment(actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment retrieved successfully", gin.H{"comment": viewFor(c, comment)})
}

// GetCommentTree returns the approved thread for a published post
// GET /api/v1/posts/:id/comments
func (h *CommentHandler) GetCommentTree(c *gin.Context) {
	tree, err := h.commentService.GetTree(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comments retrieved successfully", gin.H{"comments": publicTree(tree)})
}

// GetCommentCount
// GET /api/v1/posts/:id/comments/count
func (h *CommentHandler) GetCommentCount(c *gin.Context) {
	count, err := h.commentService.CountApproved(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment count retrieved successfully", gin.H{"count": count})
}

// UpdateComment
// PUT /api/v1/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var req service.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.UpdateComment(actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment updated successfully", gin.H{"comment": viewFor(c, comment)})
}

// DeleteComment
// DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.commentService.DeleteComment(actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment deleted successfully", nil)
}

// React toggles a like or dislike
// POST /api/v1/comments/:id/react
func (h *CommentHandler) React(c *gin.Context) {
	var req service.ReactRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.reactionService.React(actorFrom(c), c.Param("id"), *req.IsLike)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Reaction "+string(result.Action), result)
}

// ListForModeration defaults to the pending queue
// GET /api/v1/admin/comments?status=&post_id=&limit=&offset=
func (h *CommentHandler) ListForModeration(c *gin.Context) {
	limit, offset := util.ParsePagination(c)

	comments, total, err := h.commentService.ListForModeration(actorFrom(c), c.Query("status"), c.Query("post_id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comments retrieved successfully", gin.H{
		"comments": comments,
		"limit":    limit,
		"offset":   offset,
		"total":    total,
	})
}

// Moderate
// POST /api/v1/admin/comments/:id/moderate
func (h *CommentHandler) Moderate(c *gin.Context) {
	var req service.ModerateRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Moderate(actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment moderated successfully", gin.H{"comment": comment})
}

// BulkModerate
// POST /api/v1/admin/comments/bulk
func (h *CommentHandler) BulkModerate(c *gin.Context) {
	var req service.BulkModerateRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.commentService.BulkModerate(actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comments moderated successfully", gin.H{"updated": updated})
}

// Rescore re-runs moderation over the pending queue
// POST /api/v1/admin/comments/rescore
func (h *CommentHandler) Rescore(c *gin.Context) {
	result, err := h.commentService.Rescore(actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Pending comments rescored", result)
}

// viewFor hides moderation details from everyone but staff
func viewFor(c *gin.Context, comment *model.Comment) *model.Comment {
	if actorFrom(c).IsStaff() {
		return comment
	}
	return comment.PublicView()
}

func publicTree(roots []*model.Comment) []*model.Comment {
	out := make([]*model.Comment, len(roots))
	for i, root := range roots {
		out[i] = root.PublicView()
	}
	return out
}
