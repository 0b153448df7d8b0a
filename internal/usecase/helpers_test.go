package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant/internal/domain/event"
	"restaurant/internal/domain/model"
	"restaurant/internal/infra/db"
	infrarepo "restaurant/internal/infra/repository"
	"restaurant/internal/usecase"
)

// =====================
// DB（sqliteのインメモリ）
// =====================

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func int64Ptr(v int64) *int64 {
	return &v
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// 金額は文字列表現で比較する（scale差を無視）
func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

// =====================
// EventDispatcher（記録するだけ）
// =====================

type recordingDispatcher struct {
	mu     sync.Mutex
	events []event.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, events ...event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, events...)
}

func (d *recordingDispatcher) types() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.events))
	for _, ev := range d.events {
		out = append(out, ev.Type())
	}
	return out
}

// =====================
// seed
// =====================

type fixture struct {
	db      *gorm.DB
	tx      *infrarepo.TxManagerGorm
	events  *recordingDispatcher
	biryani model.Dish
	lassi   model.Dish
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := newTestDB(t)
	ctx := context.Background()

	cat, err := infrarepo.NewCategoryGormRepository(gdb).Create(ctx, model.Category{Name: "Mains"})
	require.NoError(t, err)
	dishes := infrarepo.NewDishGormRepository(gdb)
	biryani, err := dishes.Create(ctx, model.Dish{Name: "Biryani", Price: dec("50"), CategoryID: cat.ID})
	require.NoError(t, err)
	lassi, err := dishes.Create(ctx, model.Dish{Name: "Lassi", Price: dec("20"), CategoryID: cat.ID})
	require.NoError(t, err)

	return &fixture{
		db:      gdb,
		tx:      infrarepo.NewTxManagerGorm(gdb),
		events:  &recordingDispatcher{},
		biryani: biryani,
		lassi:   lassi,
	}
}

func (f *fixture) orders() *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(f.tx, f.events, nil)
}

func (f *fixture) seedUser(t *testing.T, email string, role model.Role) model.User {
	t.Helper()
	u := model.User{Email: email, Username: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, infrarepo.NewUserGormRepository(f.db).Create(context.Background(), &u))
	return u
}

func (f *fixture) seedCreditUser(t *testing.T, mobile string, active bool) model.CreditUser {
	t.Helper()
	cu := model.CreditUser{Name: "Ravi", MobileNumber: mobile, IsActive: active, TotalDue: decimal.Zero, LimitAmount: decimal.Zero}
	require.NoError(t, infrarepo.NewCreditUserGormRepository(f.db).Create(context.Background(), &cu))
	return cu
}

func (f *fixture) seedCoupon(t *testing.T, c model.Coupon) model.Coupon {
	t.Helper()
	if c.StartDate.IsZero() {
		c.StartDate = time.Now().Add(-time.Hour)
	}
	if c.EndDate.IsZero() {
		c.EndDate = time.Now().Add(24 * time.Hour)
	}
	require.NoError(t, infrarepo.NewCouponGormRepository(f.db).Create(context.Background(), &c))
	return c
}

func (f *fixture) creditUser(t *testing.T, id int64) model.CreditUser {
	t.Helper()
	cu, err := infrarepo.NewCreditUserGormRepository(f.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return cu
}

// =====================
// エラー判定
// =====================

func requireHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.Truef(t, ok, "expected HTTPError, got %T: %v", err, err)
	require.Equal(t, status, he.Status, he.Message)
}

func requireKind(t *testing.T, err error, kind error, status int) {
	t.Helper()
	requireHTTPStatus(t, err, status)
	require.Truef(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}
