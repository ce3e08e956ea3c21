package app

import (
	"net/http"

	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
)

type ModerationRuleHandler struct {
	ruleService service.ModerationRuleService
}

func NewModerationRuleHandler(ruleService service.ModerationRuleService) *ModerationRuleHandler {
	return &ModerationRuleHandler{ruleService: ruleService}
}

// ListRules returns rules in evaluation order
// GET /api/v1/admin/moderation-rules
func (h *ModerationRuleHandler) ListRules(c *gin.Context) {
	rules, err := h.ruleService.ListRules(actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Moderation rules retrieved successfully", gin.H{"rules": rules})
}

// GET /api/v1/admin/moderation-rules/:id
func (h *ModerationRuleHandler) GetRule(c *gin.Context) {
	rule, err := h.ruleService.GetRule(actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Moderation rule retrieved successfully", gin.H{"rule": rule})
}

// POST /api/v1/admin/moderation-rules
func (h *ModerationRuleHandler) CreateRule(c *gin.Context) {
	var req service.RuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, err := h.ruleService.CreateRule(actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Moderation rule created successfully", gin.H{"rule": rule})
}

// PUT /api/v1/admin/moderation-rules/:id
func (h *ModerationRuleHandler) UpdateRule(c *gin.Context) {
	var req service.RuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, err := h.ruleService.UpdateRule(actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Moderation rule updated successfully", gin.H{"rule": rule})
}

// DELETE /api/v1/admin/moderation-rules/:id
func (h *ModerationRuleHandler) DeleteRule(c *gin.Context) {
	if err := h.ruleService.DeleteRule(actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Moderation rule deleted successfully", nil)
}

// Preview shows what moderation would do with a comment, without storing it
// POST /api/v1/admin/moderation-rules/preview
func (h *ModerationRuleHandler) Preview(c *gin.Context) {
	var req service.PreviewRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.ruleService.Preview(actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Moderation preview", result)
}
