package service

import (
	"testing"
	"time"

	"buildhub/internal/model"
	"buildhub/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestRegister_Success(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewAuthService(users, testSecret, time.Hour)

	users.On("FindByEmail", "sam@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("FindByUsername", "sam").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

	resp, err := svc.Register(RegisterRequest{Email: "Sam@Example.com", Username: "sam", Password: "password123"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.EqualValues(t, 3600, resp.ExpiresIn)
	assert.Equal(t, model.RoleSubscriber, resp.User.Role)
	assert.Equal(t, "sam@example.com", resp.User.Email)
	assert.NotEqual(t, "password123", resp.User.PasswordHash)

	claims, err := util.ValidateToken(resp.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSubscriber, claims.Role)
}

func TestRegister_Duplicates(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewAuthService(users, testSecret, time.Hour)

	users.On("FindByEmail", "taken@example.com").Return(&model.User{}, nil)
	users.On("FindByEmail", "new@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("FindByUsername", "taken").Return(&model.User{}, nil)

	_, err := svc.Register(RegisterRequest{Email: "taken@example.com", Username: "x", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(RegisterRequest{Email: "new@example.com", Username: "taken", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	users.AssertNotCalled(t, "Create", mock.Anything)
}

func TestLogin(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewAuthService(users, testSecret, time.Hour)

	hash, err := util.HashPassword("password123")
	require.NoError(t, err)
	active := &model.User{ID: "u1", Email: "sam@example.com", PasswordHash: hash, Role: model.RoleClient, IsActive: true}
	disabled := &model.User{ID: "u2", Email: "old@example.com", PasswordHash: hash, Role: model.RoleClient}

	users.On("FindByEmail", "sam@example.com").Return(active, nil)
	users.On("FindByEmail", "old@example.com").Return(disabled, nil)
	users.On("FindByEmail", "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("UpdateLastLogin", "u1").Return(nil)

	resp, err := svc.Login(LoginRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)

	_, err = svc.Login(LoginRequest{Email: "sam@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Email: "old@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestUpdateRole(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewAuthService(users, testSecret, time.Hour)
	admin := Actor{UserID: "u-admin", Role: model.RoleAdmin}

	_, err := svc.UpdateRole(staffActor, "u1", model.RoleClient)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateRole(admin, "u1", "owner")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.UpdateRole(admin, "u-admin", model.RoleStaff)
	assert.ErrorIs(t, err, ErrForbidden)

	users.On("UpdateRole", "missing", model.RoleClient).Return(gorm.ErrRecordNotFound)
	_, err = svc.UpdateRole(admin, "missing", model.RoleClient)
	assert.ErrorIs(t, err, ErrUserNotFound)

	users.On("UpdateRole", "u1", model.RoleClient).Return(nil)
	users.On("FindByID", "u1").Return(&model.User{ID: "u1", Role: model.RoleClient}, nil)
	got, err := svc.UpdateRole(admin, "u1", model.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, model.RoleClient, got.Role)
}
