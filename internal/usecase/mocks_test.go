package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"restaurant/internal/domain/model"
	"restaurant/internal/infra/cache"
	repo "restaurant/internal/repository"
	"restaurant/internal/usecase"
)

// =====================
// Mock: UserRepository
// =====================

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) List(ctx context.Context, role *model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	us, _ := args.Get(0).([]model.User)
	return us, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repo.UserRepository = (*UserRepoMock)(nil)

// =====================
// Mock: RefreshTokenRepository
// =====================

type RefreshTokenRepoMock struct {
	mock.Mock
}

func (m *RefreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *RefreshTokenRepoMock) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) Revoke(ctx context.Context, tokenID string, revokedAt time.Time) error {
	args := m.Called(ctx, tokenID, revokedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var _ repo.RefreshTokenRepository = (*RefreshTokenRepoMock)(nil)

// =====================
// Mock: AuthValidator
// =====================

type AuthValidatorMock struct {
	mock.Mock
}

func (m *AuthValidatorMock) ValidateCreateUser(ctx context.Context, req usecase.CreateUserRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateLogin(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateRefresh(ctx context.Context, refreshToken, userAgent string) error {
	args := m.Called(ctx, refreshToken, userAgent)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateLogout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	args := m.Called(ctx, targetUserID)
	return args.Error(0)
}

var _ usecase.AuthValidator = (*AuthValidatorMock)(nil)

// =====================
// Mock: CouponRepository
// =====================

type CouponRepoMock struct {
	mock.Mock
}

func (m *CouponRepoMock) Create(ctx context.Context, c *model.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CouponRepoMock) FindByID(ctx context.Context, id int64) (model.Coupon, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *CouponRepoMock) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *CouponRepoMock) List(ctx context.Context) ([]model.Coupon, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.Coupon)
	return cs, args.Error(1)
}

func (m *CouponRepoMock) Update(ctx context.Context, c model.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CouponRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CouponRepoMock) IncrementUsage(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var _ repo.CouponRepository = (*CouponRepoMock)(nil)

// =====================
// Mock: NotificationRepository
// =====================

type NotificationRepoMock struct {
	mock.Mock
}

func (m *NotificationRepoMock) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepoMock) List(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	args := m.Called(ctx, unreadOnly)
	ns, _ := args.Get(0).([]model.Notification)
	return ns, args.Error(1)
}

func (m *NotificationRepoMock) MarkAsRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *NotificationRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repo.NotificationRepository = (*NotificationRepoMock)(nil)

// =====================
// Mock: ReportRepository
// =====================

type ReportRepoMock struct {
	mock.Mock
}

func (m *ReportRepoMock) OrdersBetween(ctx context.Context, from, to time.Time, f repo.OrderListFilter) ([]model.Order, error) {
	args := m.Called(ctx, from, to, f)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

func (m *ReportRepoMock) ItemsForOrders(ctx context.Context, orderIDs []int64) ([]repo.ItemSalesRow, error) {
	args := m.Called(ctx, orderIDs)
	rows, _ := args.Get(0).([]repo.ItemSalesRow)
	return rows, args.Error(1)
}

func (m *ReportRepoMock) DriverOrdersBetween(ctx context.Context, from, to time.Time, driverID *int64) ([]repo.DriverOrderRow, error) {
	args := m.Called(ctx, from, to, driverID)
	rows, _ := args.Get(0).([]repo.DriverOrderRow)
	return rows, args.Error(1)
}

var _ repo.ReportRepository = (*ReportRepoMock)(nil)

// =====================
// Mock: Cache
// =====================

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *CacheMock) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *CacheMock) GenerateKey(operation, key string) string {
	return operation + ":" + key
}

var _ cache.Cache = (*CacheMock)(nil)
