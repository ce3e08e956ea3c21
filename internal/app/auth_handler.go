package app

import (
	"net/http"
	"strings"

	"buildhub/internal/model"
	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares
const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
)

type AuthHandler struct {
	authService service.AuthService
	jwtSecret   string
}

func NewAuthHandler(authService service.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Registration successful", resp)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Login successful", resp)
}

// GetMe handles getting current user info
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	if userID == "" {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetMe(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved successfully", gin.H{"user": user})
}

// AuthMiddleware validates the bearer token and rejects anonymous requests
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		claims, ok := h.parseHeader(authHeader)
		if !ok {
			util.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies signed-in users but lets anonymous
// visitors through. A bad token is treated as no token.
func (h *AuthHandler) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if claims, ok := h.parseHeader(authHeader); ok {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware
func (h *AuthHandler) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserID) == "" {
			util.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		role := c.GetString(ctxRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		util.Forbidden(c, "Access denied: "+strings.Join(roles, " or ")+" role required")
		c.Abort()
	}
}

func (h *AuthHandler) StaffMiddleware() gin.HandlerFunc {
	return h.RequireRole(model.RoleAdmin, model.RoleStaff)
}

func (h *AuthHandler) AdminMiddleware() gin.HandlerFunc {
	return h.RequireRole(model.RoleAdmin)
}

func (h *AuthHandler) parseHeader(authHeader string) (*util.Claims, bool) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := util.ValidateToken(parts[1], h.jwtSecret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *util.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxRole, claims.Role)
}

// actorFrom describes the caller for the service layer
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		UserID:    c.GetString(ctxUserID),
		Email:     c.GetString(ctxEmail),
		Role:      c.GetString(ctxRole),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
