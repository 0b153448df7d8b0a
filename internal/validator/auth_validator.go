package validator

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmailAlreadyUsed = errors.New("email already used")
	ErrInvalidRefresh   = errors.New("invalid refresh")
)

// アカウント項目の上限。usersテーブルの列幅と揃える
const (
	minPasswordLen = 8
	maxUsernameLen = 150
	minMobileLen   = 7
	maxMobileLen   = 15
)

// どの項目が不正か。errors.Is(err, ErrInvalidInput) で判定できる
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

type authValidator struct {
	users repository.UserRepository
}

func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// 管理者が作るスタッフ・配達員アカウント。配達員は連絡先の携帯番号が必須。
func (v *authValidator) ValidateCreateUser(ctx context.Context, req usecase.CreateUserRequest) error {
	email := strings.TrimSpace(req.Email)
	if err := checkEmail(email); err != nil {
		return err
	}
	if len(req.Password) < minPasswordLen {
		return invalid("password", "must be at least 8 characters")
	}

	role := model.Role(strings.TrimSpace(req.Role))
	if !role.Valid() {
		return invalid("role", "must be admin, staff or driver")
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Username)) > maxUsernameLen {
		return invalid("username", "too long")
	}

	mobile := strings.TrimSpace(req.MobileNumber)
	switch {
	case mobile == "" && role == model.RoleDriver:
		return invalid("mobile_number", "required for drivers")
	case mobile != "" && !isMobileNumber(mobile):
		return invalid("mobile_number", "must be 7 to 15 digits")
	}

	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return ErrEmailAlreadyUsed
	}
	return nil
}

func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if password == "" {
		return invalid("password", "required")
	}
	return checkEmail(strings.TrimSpace(email))
}

func (v *authValidator) ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrInvalidRefresh
	}
	return nil
}

func (v *authValidator) ValidateLogout(ctx context.Context) error {
	return nil
}

func (v *authValidator) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	if targetUserID <= 0 {
		return invalid("user_id", "must be positive")
	}
	return nil
}

// 表示名付き ("Ravi <a@b.c>") は受け付けない
func checkEmail(email string) error {
	if email == "" {
		return invalid("email", "required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return invalid("email", "malformed")
	}
	return nil
}

// 先頭の + は国番号として許す
func isMobileNumber(s string) bool {
	digits := strings.TrimPrefix(s, "+")
	if len(digits) < minMobileLen || len(digits) > maxMobileLen {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
