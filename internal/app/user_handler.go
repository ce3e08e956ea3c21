package app

import (
	"net/http"

	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	authService  service.AuthService
	statsService service.StatsService
}

func NewUserHandler(authService service.AuthService, statsService service.StatsService) *UserHandler {
	return &UserHandler{
		authService:  authService,
		statsService: statsService,
	}
}

// GetAllUsers handles getting all users (admin only)
// GET /api/v1/admin/users
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	limit, offset := util.ParsePagination(c)

	users, total, err := h.authService.ListUsers(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", gin.H{
		"users":  users,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

// UpdateUserRole promotes a user to staff or links a client account
// PUT /api/v1/admin/users/:id/role
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required,oneof=admin staff client subscriber"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateRole(actorFrom(c), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User role updated successfully", gin.H{"user": user})
}

// GetStats backs the admin dashboard
// GET /api/v1/admin/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Overview(actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Stats retrieved successfully", stats)
}
