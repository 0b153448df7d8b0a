package validator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
	"restaurant/internal/validator"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) List(ctx context.Context, role *model.Role) ([]model.User, error) {
	panic("not used in validator tests")
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	panic("not used in validator tests")
}

func (m *userRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	panic("not used in validator tests")
}

var _ repository.UserRepository = (*userRepoMock)(nil)

func TestValidateCreateUser(t *testing.T) {
	users := new(userRepoMock)
	users.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{ID: 1}, nil)
	users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	v := validator.NewAuthValidator(users)

	valid := usecase.CreateUserRequest{Email: "new@example.com", Password: "password1", Role: "staff"}
	with := func(edit func(r *usecase.CreateUserRequest)) usecase.CreateUserRequest {
		r := valid
		edit(&r)
		return r
	}

	tests := []struct {
		name  string
		req   usecase.CreateUserRequest
		field string
		want  error
	}{
		{name: "ok", req: valid},
		{name: "携帯番号付きの配達員", req: with(func(r *usecase.CreateUserRequest) { r.Role = "driver"; r.MobileNumber = "+919876543210" })},
		{name: "email空", req: with(func(r *usecase.CreateUserRequest) { r.Email = " " }), field: "email", want: validator.ErrInvalidInput},
		{name: "email形式", req: with(func(r *usecase.CreateUserRequest) { r.Email = "not-an-email" }), field: "email", want: validator.ErrInvalidInput},
		{name: "表示名付きemail", req: with(func(r *usecase.CreateUserRequest) { r.Email = "Ravi <new@example.com>" }), field: "email", want: validator.ErrInvalidInput},
		{name: "短いパスワード", req: with(func(r *usecase.CreateUserRequest) { r.Password = "short" }), field: "password", want: validator.ErrInvalidInput},
		{name: "不明なロール", req: with(func(r *usecase.CreateUserRequest) { r.Role = "customer" }), field: "role", want: validator.ErrInvalidInput},
		{name: "長すぎるユーザー名", req: with(func(r *usecase.CreateUserRequest) { r.Username = strings.Repeat("a", 151) }), field: "username", want: validator.ErrInvalidInput},
		{name: "配達員は携帯番号必須", req: with(func(r *usecase.CreateUserRequest) { r.Role = "driver" }), field: "mobile_number", want: validator.ErrInvalidInput},
		{name: "携帯番号に文字", req: with(func(r *usecase.CreateUserRequest) { r.MobileNumber = "98765-4321" }), field: "mobile_number", want: validator.ErrInvalidInput},
		{name: "携帯番号が短い", req: with(func(r *usecase.CreateUserRequest) { r.MobileNumber = "12345" }), field: "mobile_number", want: validator.ErrInvalidInput},
		{name: "重複", req: with(func(r *usecase.CreateUserRequest) { r.Email = "taken@example.com" }), want: validator.ErrEmailAlreadyUsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreateUser(context.Background(), tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			if tt.field != "" {
				var fe *validator.FieldError
				if assert.ErrorAs(t, err, &fe) {
					assert.Equal(t, tt.field, fe.Field)
				}
			}
		})
	}
}

func TestValidateLoginAndRefresh(t *testing.T) {
	v := validator.NewAuthValidator(new(userRepoMock))
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "staff@example.com", "x"))
	assert.ErrorIs(t, v.ValidateLogin(ctx, "staff@example.com", ""), validator.ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "staff", "x"), validator.ErrInvalidInput)

	assert.ErrorIs(t, v.ValidateRefresh(ctx, "  ", "ua"), validator.ErrInvalidRefresh)
	assert.NoError(t, v.ValidateRefresh(ctx, "token", "ua"))

	assert.ErrorIs(t, v.ValidateForceLogout(ctx, 0), validator.ErrInvalidInput)
	assert.NoError(t, v.ValidateForceLogout(ctx, 3))
}
