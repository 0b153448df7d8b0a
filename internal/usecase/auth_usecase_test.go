package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
	"restaurant/internal/usecase"
)

// =====================
// Helper
// =====================

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return string(b)
}

func newAuthUC(userRepo *UserRepoMock, rtRepo *RefreshTokenRepoMock, v *AuthValidatorMock) *usecase.AuthUsecase {
	// JWTSecret は Login/Refresh で必須
	cfg := config.Config{JWTSecret: "test-secret"}
	return usecase.NewAuthUsecase(cfg, userRepo, rtRepo, v)
}

func activeStaff(t *testing.T, pass string) *model.User {
	return &model.User{
		ID:           1,
		Email:        "staff@test.com",
		PasswordHash: mustHash(t, pass),
		Role:         model.RoleStaff,
		IsActive:     true,
	}
}

// =====================
// CreateUser
// =====================

func TestAuthUsecase_CreateUser_Success(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateCreateUser", mock.Anything, mock.MatchedBy(func(req usecase.CreateUserRequest) bool {
		return req.Email == "driver@test.com" && req.Role == "driver"
	})).Return(nil)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		// 平文は保存しない
		return u.Role == model.RoleDriver && u.IsActive && u.PasswordHash != "Secret123" && u.Username == "driver@test.com"
	})).Return(nil)

	res, err := newAuthUC(userRepo, rtRepo, v).CreateUser(context.Background(), usecase.CreateUserRequest{
		Email:    "driver@test.com",
		Password: "Secret123",
		Role:     "driver",
	})
	assert.NoError(t, err)
	assert.Equal(t, "driver", res.Role)

	userRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

func TestAuthUsecase_CreateUser_Duplicate(t *testing.T) {
	userRepo := new(UserRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateCreateUser", mock.Anything, mock.Anything).Return(nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))

	res, err := newAuthUC(userRepo, new(RefreshTokenRepoMock), v).CreateUser(context.Background(), usecase.CreateUserRequest{
		Email: "a@test.com", Password: "Secret123", Role: "staff",
	})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrConflict)
}

// =====================
// Login
// =====================

func TestAuthUsecase_Login_Success(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateLogin", mock.Anything, "staff@test.com", "CorrectPW").Return(nil)
	userRepo.On("FindByEmail", mock.Anything, "staff@test.com").Return(activeStaff(t, "CorrectPW"), nil)
	// last_login 更新は失敗しても継続
	userRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	rtRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.UserID == 1 && rt.UserAgent == "UA" && rt.TokenHash != ""
	})).Return(nil)

	res, err := newAuthUC(userRepo, rtRepo, v).Login(context.Background(), usecase.AuthLoginRequest{Email: "staff@test.com", Password: "CorrectPW"}, "UA")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.Token.AccessToken)
	assert.Greater(t, res.Body.Token.ExpiresIn, 0)
	assert.Equal(t, "staff", res.Body.User.Role)
	assert.NotEmpty(t, res.RefreshTokenPlain)
	assert.NotEmpty(t, res.CsrfTokenPlain)

	userRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
}

// PW違い => 401 / refresh増えない
func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateLogin", mock.Anything, "staff@test.com", "WrongPW").Return(nil)
	userRepo.On("FindByEmail", mock.Anything, "staff@test.com").Return(activeStaff(t, "CorrectPW"), nil)

	res, err := newAuthUC(userRepo, rtRepo, v).Login(context.Background(), usecase.AuthLoginRequest{Email: "staff@test.com", Password: "WrongPW"}, "UA")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Login_ValidationError(t *testing.T) {
	userRepo := new(UserRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateLogin", mock.Anything, "", "xxx").Return(usecase.ErrValidation)

	res, err := newAuthUC(userRepo, new(RefreshTokenRepoMock), v).Login(context.Background(), usecase.AuthLoginRequest{Email: "", Password: "xxx"}, "UA")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrValidation)
	userRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

// 停止ユーザー => forbidden
func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	u := activeStaff(t, "CorrectPW")
	u.IsActive = false
	v.On("ValidateLogin", mock.Anything, u.Email, "CorrectPW").Return(nil)
	userRepo.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)

	res, err := newAuthUC(userRepo, rtRepo, v).Login(context.Background(), usecase.AuthLoginRequest{Email: u.Email, Password: "CorrectPW"}, "UA")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrForbidden)
	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// Refresh
// =====================

// 正常（旧token used_at 更新 + 新token追加）
func TestAuthUsecase_Refresh_Success(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateRefresh", mock.Anything, "refresh-plain", "UA").Return(nil)
	rtRepo.On("FindByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.RefreshToken{
		ID:        "rt-old",
		UserID:    1,
		UserAgent: "UA",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(activeStaff(t, "pw"), nil)
	rtRepo.On("MarkUsed", mock.Anything, "rt-old", mock.AnythingOfType("time.Time")).Return(nil)
	rtRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	res, err := newAuthUC(userRepo, rtRepo, v).Refresh(context.Background(), "refresh-plain", "UA")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.AccessToken)
	assert.NotEmpty(t, res.RefreshTokenPlain)
	assert.NotEqual(t, "refresh-plain", res.RefreshTokenPlain)

	rtRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

// 期限切れ => Revoke + 401
func TestAuthUsecase_Refresh_Expired(t *testing.T) {
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateRefresh", mock.Anything, "expired", "UA").Return(nil)
	rtRepo.On("FindByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.RefreshToken{
		ID:        "rt-exp",
		UserID:    1,
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)
	rtRepo.On("Revoke", mock.Anything, "rt-exp", mock.AnythingOfType("time.Time")).Return(nil)

	res, err := newAuthUC(new(UserRepoMock), rtRepo, v).Refresh(context.Background(), "expired", "UA")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
	rtRepo.AssertExpectations(t)
}

// 再利用（used_atあり）=> DeleteAllByUserID + incident
func TestAuthUsecase_Refresh_Replay(t *testing.T) {
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)
	usedAt := time.Now().Add(-time.Minute)

	v.On("ValidateRefresh", mock.Anything, "replayed", "UA").Return(nil)
	rtRepo.On("FindByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.RefreshToken{
		ID:        "rt-used",
		UserID:    7,
		ExpiresAt: time.Now().Add(time.Hour),
		UsedAt:    &usedAt,
	}, nil)
	rtRepo.On("DeleteAllByUserID", mock.Anything, int64(7)).Return(nil)

	res, err := newAuthUC(new(UserRepoMock), rtRepo, v).Refresh(context.Background(), "replayed", "UA")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrSecurityIncident)
	rtRepo.AssertExpectations(t)
}

// =====================
// Logout / ForceLogout
// =====================

func TestAuthUsecase_Logout_RevokesToken(t *testing.T) {
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateLogout", mock.Anything).Return(nil)
	rtRepo.On("FindByTokenHash", mock.Anything, mock.AnythingOfType("string")).Return(&model.RefreshToken{ID: "rt-1", UserID: 1}, nil)
	rtRepo.On("Revoke", mock.Anything, "rt-1", mock.AnythingOfType("time.Time")).Return(nil)

	res, err := newAuthUC(new(UserRepoMock), rtRepo, v).Logout(context.Background(), "plain")
	assert.NoError(t, err)
	assert.Equal(t, "logout success", res.Message)
	rtRepo.AssertExpectations(t)
}

func TestAuthUsecase_ForceLogout(t *testing.T) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateForceLogout", mock.Anything, int64(3)).Return(nil)
	userRepo.On("IncrementTokenVersion", mock.Anything, int64(3)).Return(nil)
	rtRepo.On("DeleteAllByUserID", mock.Anything, int64(3)).Return(nil)
	userRepo.On("FindByID", mock.Anything, int64(3)).Return(&model.User{ID: 3, TokenVersion: 2}, nil)

	res, err := newAuthUC(userRepo, rtRepo, v).ForceLogout(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, 2, res.NewTokenVersion)

	userRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
}

func TestAuthUsecase_ForceLogout_UnknownUser(t *testing.T) {
	userRepo := new(UserRepoMock)
	v := new(AuthValidatorMock)

	v.On("ValidateForceLogout", mock.Anything, int64(99)).Return(nil)
	userRepo.On("IncrementTokenVersion", mock.Anything, int64(99)).Return(repo.ErrUserNotFound)

	res, err := newAuthUC(userRepo, new(RefreshTokenRepoMock), v).ForceLogout(context.Background(), 99)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, usecase.ErrValidation)
}
