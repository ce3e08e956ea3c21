package app

import (
	"net/http"

	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
)

type NewsletterHandler struct {
	newsletterService service.NewsletterService
}

func NewNewsletterHandler(newsletterService service.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletterService: newsletterService}
}

// Subscribe sends a confirmation email
// POST /api/v1/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req service.SubscribeRequest
	if !bindJSON(c, &req) {
		return
	}

	subscriber, err := h.newsletterService.Subscribe(req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Please check your inbox to confirm your subscription"
	if subscriber.ConfirmedAt != nil {
		message = "You are already subscribed"
	}
	util.SuccessResponse(c, http.StatusOK, message, gin.H{"email": subscriber.Email})
}

// Confirm is the link in the confirmation email
// GET /api/v1/newsletter/confirm?token=
func (h *NewsletterHandler) Confirm(c *gin.Context) {
	subscriber, err := h.newsletterService.Confirm(c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Subscription confirmed", gin.H{"email": subscriber.Email})
}

// Unsubscribe is the link at the bottom of every newsletter
// GET /api/v1/newsletter/unsubscribe?token=
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	subscriber, err := h.newsletterService.Unsubscribe(c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "You have been unsubscribed", gin.H{"email": subscriber.Email})
}

// GET /api/v1/admin/newsletters
func (h *NewsletterHandler) ListNewsletters(c *gin.Context) {
	limit, offset := util.ParsePagination(c)

	newsletters, total, err := h.newsletterService.ListNewsletters(actorFrom(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Newsletters retrieved successfully", gin.H{
		"newsletters": newsletters,
		"limit":       limit,
		"offset":      offset,
		"total":       total,
	})
}

// GET /api/v1/admin/newsletters/:id
func (h *NewsletterHandler) GetNewsletter(c *gin.Context) {
	newsletter, err := h.newsletterService.GetNewsletter(actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Newsletter retrieved successfully", gin.H{"newsletter": newsletter})
}

// POST /api/v1/admin/newsletters
func (h *NewsletterHandler) CreateNewsletter(c *gin.Context) {
	var req service.NewsletterRequest
	if !bindJSON(c, &req) {
		return
	}

	newsletter, err := h.newsletterService.CreateDraft(actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Newsletter draft created", gin.H{"newsletter": newsletter})
}

// PUT /api/v1/admin/newsletters/:id
func (h *NewsletterHandler) UpdateNewsletter(c *gin.Context) {
	var req service.NewsletterRequest
	if !bindJSON(c, &req) {
		return
	}

	newsletter, err := h.newsletterService.UpdateDraft(actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Newsletter draft updated", gin.H{"newsletter": newsletter})
}

// SendNewsletter queues delivery to every active subscriber
// POST /api/v1/admin/newsletters/:id/send
func (h *NewsletterHandler) SendNewsletter(c *gin.Context) {
	newsletter, err := h.newsletterService.Send(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusAccepted, "Newsletter is being sent", gin.H{"newsletter": newsletter})
}
