package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"buildhub/internal/model"
	"buildhub/internal/repository"
	"buildhub/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(req RegisterRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*AuthResponse, error)
	GetMe(userID string) (*model.User, error)
	ListUsers(limit, offset int) ([]model.User, int64, error)
	UpdateRole(actor Actor, userID, role string) (*model.User, error)
	CreateUser(req RegisterRequest, role string) (*model.User, error)
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50,alphanum"`
	FullName string `json:"full_name" binding:"max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        *model.User `json:"user"`
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a subscriber account and signs the user in
func (s *authService) Register(req RegisterRequest) (*AuthResponse, error) {
	user, err := s.CreateUser(req, model.RoleSubscriber)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// CreateUser is shared by public registration and the management CLI
func (s *authService) CreateUser(req RegisterRequest, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Username:     req.Username,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	zap.L().Info("user registered", zap.String("user_id", user.ID), zap.String("role", role))
	return user, nil
}

func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := util.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		zap.L().Warn("failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issue(user)
}

func (s *authService) GetMe(userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ListUsers(limit, offset int) ([]model.User, int64, error) {
	return s.userRepo.FindAll(limit, offset)
}

// UpdateRole is admin only. Admins cannot demote themselves, so the site
// always keeps at least the acting admin.
func (s *authService) UpdateRole(actor Actor, userID, role string) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !model.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if actor.UserID == userID && role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	zap.L().Info("user role changed",
		zap.String("user_id", userID),
		zap.String("role", role),
		zap.String("by", actor.UserID))
	return s.userRepo.FindByID(userID)
}

func (s *authService) issue(user *model.User) (*AuthResponse, error) {
	token, err := util.GenerateToken(user.ID, user.Email, user.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        user,
	}, nil
}
