package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/handler"
	"restaurant/internal/infra/cache"
	"restaurant/internal/infra/db"
	infraRepo "restaurant/internal/infra/repository"
	applog "restaurant/internal/logger"
	"restaurant/internal/metrics"
	"restaurant/internal/notify"
	"restaurant/internal/server"
	"restaurant/internal/usecase"
	"restaurant/internal/validator"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass-123"
)

// =====================
// テスト用クライアント
// =====================

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func newTestClient(t *testing.T, baseURL string) *TestClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
}

func (c *TestClient) doJSON(t *testing.T, method, path, bearer string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.BaseURL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeJSON[T any](t *testing.T, data []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

// =====================
// アプリ組み立て
// =====================

type app struct {
	srv    *httptest.Server
	client *TestClient
}

func newApp(t *testing.T) *app {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	cfg := config.Config{JWTSecret: "server-test-secret", ReportCacheTTL: time.Minute}
	log := applog.Discard()
	m := metrics.New()

	userRepo := infraRepo.NewUserGormRepository(gdb)
	notificationRepo := infraRepo.NewNotificationGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)
	dispatcher := notify.NewDispatcher(notificationRepo, nil, m, log)

	authUC := usecase.NewAuthUsecase(cfg, userRepo, infraRepo.NewRefreshTokenRepository(gdb), validator.NewAuthValidator(userRepo))
	orderUC := usecase.NewOrderUsecase(txm, dispatcher, m)
	seatingUC := usecase.NewSeatingUsecase(
		infraRepo.NewFloorGormRepository(gdb),
		infraRepo.NewDiningTableGormRepository(gdb),
		infraRepo.NewChairGormRepository(gdb),
		infraRepo.NewChairBookingGormRepository(gdb),
		txm,
	)
	accountingUC := usecase.NewAccountingUsecase(
		infraRepo.NewNatureGroupGormRepository(gdb),
		infraRepo.NewMainGroupGormRepository(gdb),
		infraRepo.NewLedgerGormRepository(gdb),
		infraRepo.NewLedgerTransactionGormRepository(gdb),
		infraRepo.NewIncomeStatementGormRepository(gdb),
		infraRepo.NewBalanceSheetGormRepository(gdb),
	)
	messUC := usecase.NewMessUsecase(
		txm,
		infraRepo.NewMessTypeGormRepository(gdb),
		infraRepo.NewMenuGormRepository(gdb),
		infraRepo.NewMessGormRepository(gdb),
		infraRepo.NewMessTransactionGormRepository(gdb),
	)

	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(cfg, userRepo, authUC),
		AdminUser:    handler.NewAdminUserHandler(cfg, userRepo, authUC),
		Dish:         handler.NewDishHandler(usecase.NewDishUsecase(infraRepo.NewDishGormRepository(gdb), infraRepo.NewCategoryGormRepository(gdb))),
		Order:        handler.NewOrderHandler(orderUC),
		Bill:         handler.NewBillHandler(usecase.NewBillUsecase(txm, dispatcher, m), orderUC),
		Delivery:     handler.NewDeliveryHandler(usecase.NewDeliveryUsecase(txm, userRepo, dispatcher)),
		Credit:       handler.NewCreditHandler(usecase.NewCreditUsecase(txm, m)),
		Coupon:       handler.NewCouponHandler(usecase.NewCouponUsecase(infraRepo.NewCouponGormRepository(gdb))),
		Notification: handler.NewNotificationHandler(usecase.NewNotificationUsecase(notificationRepo)),
		Report:       handler.NewReportHandler(usecase.NewReportUsecase(infraRepo.NewReportGormRepository(gdb), userRepo, cache.NewNoop(), cfg.ReportCacheTTL, m, log)),
		Seating:      handler.NewSeatingHandler(seatingUC),
		Accounting:   handler.NewAccountingHandler(accountingUC),
		Mess:         handler.NewMessHandler(messUC),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(context.Background(), &model.User{
		Email:        adminEmail,
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}))

	srv := httptest.NewServer(server.New(cfg, log, m, userRepo, handlers))
	t.Cleanup(srv.Close)

	return &app{srv: srv, client: newTestClient(t, srv.URL)}
}

func (a *app) login(t *testing.T) string {
	t.Helper()

	resp, data := a.client.doJSON(t, http.MethodPost, "/auth/login", "", usecase.AuthLoginRequest{
		Email:    adminEmail,
		Password: adminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	out := decodeJSON[usecase.AuthLoginResponse](t, data)
	require.NotEmpty(t, out.Token.AccessToken)
	assert.Equal(t, "admin", out.User.Role)
	return out.Token.AccessToken
}

// =====================
// シナリオ
// =====================

func TestServer_Healthz(t *testing.T) {
	a := newApp(t)

	resp, data := a.client.doJSON(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_RequiresToken(t *testing.T) {
	a := newApp(t)

	resp, data := a.client.doJSON(t, http.MethodGet, "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", decodeJSON[handler.ErrorResponse](t, data).Error)
}

func TestServer_LoginWrongPassword(t *testing.T) {
	a := newApp(t)

	resp, _ := a.client.doJSON(t, http.MethodPost, "/auth/login", "", usecase.AuthLoginRequest{
		Email:    adminEmail,
		Password: "nope-nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// メニュー登録 → 注文 → 請求 → 通知 → メトリクス
func TestServer_OrderToBillFlow(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	resp, data := a.client.doJSON(t, http.MethodPost, "/categories", token, map[string]string{"name": "Mains"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	category := decodeJSON[model.Category](t, data)

	resp, data = a.client.doJSON(t, http.MethodPost, "/dishes", token, handler.DishRequest{
		Name:       "Biryani",
		Price:      decimal.NewFromInt(50),
		CategoryID: category.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	dish := decodeJSON[model.Dish](t, data)

	resp, data = a.client.doJSON(t, http.MethodPost, "/orders", token, handler.OrderCreateRequest{
		OrderType:     "dining",
		PaymentMethod: "cash",
		Items:         []usecase.OrderLineInput{{DishID: dish.ID, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	order := decodeJSON[usecase.OrderOutput](t, data)
	assert.True(t, decimal.NewFromInt(100).Equal(order.TotalAmount), order.TotalAmount.String())
	assert.NotEmpty(t, order.InvoiceNumber)
	require.Len(t, order.Items, 1)

	resp, data = a.client.doJSON(t, http.MethodPost, "/bills", token, handler.BillCreateRequest{OrderID: order.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	bill := decodeJSON[model.Bill](t, data)
	assert.Equal(t, order.ID, bill.OrderID)

	resp, data = a.client.doJSON(t, http.MethodGet, "/orders/"+strconv.FormatInt(order.ID, 10), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	billed := decodeJSON[usecase.OrderOutput](t, data)
	assert.True(t, billed.BillGenerated)

	//注文作成と請求作成の2件
	resp, data = a.client.doJSON(t, http.MethodGet, "/notifications/unread", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Len(t, decodeJSON[[]model.Notification](t, data), 2)

	resp, data = a.client.doJSON(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `pos_orders_created_total{order_type="dining"} 1`)
	assert.Contains(t, string(data), "pos_bills_created_total 1")
}

func TestServer_ReportsAreAdminOnly(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	resp, data := a.client.doJSON(t, http.MethodGet, "/reports/dashboard?time_range=week", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, _ = a.client.doJSON(t, http.MethodGet, "/reports/sales?from_date=bad", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_OrderHistoryByPhone(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	resp, data := a.client.doJSON(t, http.MethodPost, "/categories", token, map[string]string{"name": "Drinks"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	category := decodeJSON[model.Category](t, data)

	resp, data = a.client.doJSON(t, http.MethodPost, "/dishes", token, handler.DishRequest{
		Name:       "Lassi",
		Price:      decimal.NewFromInt(20),
		CategoryID: category.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	dish := decodeJSON[model.Dish](t, data)

	for _, phone := range []string{"9000000001", "9000000001", "9000000002"} {
		resp, data = a.client.doJSON(t, http.MethodPost, "/orders", token, handler.OrderCreateRequest{
			OrderType:           "takeaway",
			PaymentMethod:       "cash",
			CustomerPhoneNumber: phone,
			Items:               []usecase.OrderLineInput{{DishID: dish.ID, Quantity: 1}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	}

	resp, data = a.client.doJSON(t, http.MethodGet, "/orders/history?customer_phone_number=9000000001", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	out := decodeJSON[usecase.OrderListOutput](t, data)
	assert.Len(t, out.Items, 2)
	for _, o := range out.Items {
		assert.Equal(t, "9000000001", o.CustomerPhoneNumber)
	}

	//電話番号なしは空
	resp, data = a.client.doJSON(t, http.MethodGet, "/orders/history", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Empty(t, decodeJSON[usecase.OrderListOutput](t, data).Items)
}

func TestServer_ChairBookingFlow(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	resp, data := a.client.doJSON(t, http.MethodPost, "/chairs", token, handler.ChairRequest{
		ChairName: "C1",
		Amount:    decimal.NewFromInt(100),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	chair := decodeJSON[model.Chair](t, data)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	book := func(name string, from, to time.Time) model.ChairBooking {
		t.Helper()
		resp, data := a.client.doJSON(t, http.MethodPost, "/chair-bookings", token, handler.BookingRequest{
			ChairID:      chair.ID,
			CustomerName: name,
			StartTime:    from,
			EndTime:      to,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
		return decodeJSON[model.ChairBooking](t, data)
	}

	first := book("Asha", start, start.Add(time.Hour))
	second := book("Ravi", start.Add(30*time.Minute), start.Add(90*time.Minute))
	assert.Equal(t, model.BookingStatusPending, first.Status)

	resp, data = a.client.doJSON(t, http.MethodPost, "/chair-bookings/"+strconv.FormatInt(first.ID, 10)+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, data = a.client.doJSON(t, http.MethodPost, "/chair-bookings/check-availability", token, handler.AvailabilityRequest{
		ChairID:   chair.ID,
		StartTime: start.Add(30 * time.Minute),
		EndTime:   start.Add(90 * time.Minute),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	avail := decodeJSON[usecase.Availability](t, data)
	assert.False(t, avail.IsAvailable)
	require.Len(t, avail.ConflictingBookings, 1)
	assert.Equal(t, first.ID, avail.ConflictingBookings[0].ID)

	//重なる予約は確定できない
	resp, data = a.client.doJSON(t, http.MethodPost, "/chair-bookings/"+strconv.FormatInt(second.ID, 10)+"/confirm", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(data))

	resp, data = a.client.doJSON(t, http.MethodPost, "/chair-bookings/"+strconv.FormatInt(first.ID, 10)+"/complete", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, data = a.client.doJSON(t, http.MethodPost, "/chair-bookings/"+strconv.FormatInt(first.ID, 10)+"/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(data))
}

func TestServer_LedgerReport(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	resp, data := a.client.doJSON(t, http.MethodPost, "/nature-groups", token, handler.NatureGroupRequest{Name: "Assets"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	nature := decodeJSON[model.NatureGroup](t, data)

	resp, data = a.client.doJSON(t, http.MethodPost, "/main-groups", token, handler.MainGroupRequest{Name: "Cash", NatureGroupID: nature.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	group := decodeJSON[model.MainGroup](t, data)

	resp, data = a.client.doJSON(t, http.MethodPost, "/ledgers", token, handler.LedgerRequest{
		Name:           "Counter",
		OpeningBalance: decimal.NewFromInt(100),
		GroupID:        group.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	ledger := decodeJSON[model.Ledger](t, data)

	entries := []handler.LedgerTransactionRequest{
		{LedgerID: ledger.ID, Date: "2026-01-05", TransactionType: "Pay In", DebitAmount: decimal.NewFromInt(50)},
		{LedgerID: ledger.ID, Date: "2026-02-10", TransactionType: "Pay Out", CreditAmount: decimal.NewFromInt(30)},
	}
	for _, in := range entries {
		resp, data = a.client.doJSON(t, http.MethodPost, "/ledger-transactions", token, in)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	}

	resp, data = a.client.doJSON(t, http.MethodPost, "/ledger-transactions", token, handler.LedgerTransactionRequest{
		LedgerID: ledger.ID, Date: "10/02/2026", TransactionType: "Pay In", DebitAmount: decimal.NewFromInt(1),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(data))

	path := "/ledger-transactions/report?ledger_id=" + strconv.FormatInt(ledger.ID, 10) + "&from=2026-02-01&to=2026-02-28"
	resp, data = a.client.doJSON(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	report := decodeJSON[usecase.LedgerReport](t, data)
	assert.True(t, decimal.NewFromInt(150).Equal(report.OpeningBalance), report.OpeningBalance.String())
	assert.True(t, decimal.NewFromInt(120).Equal(report.ClosingBalance), report.ClosingBalance.String())
	require.Len(t, report.Transactions, 1)

	//ledger未指定は空
	resp, data = a.client.doJSON(t, http.MethodGet, "/ledger-transactions/report", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Empty(t, decodeJSON[usecase.LedgerReport](t, data).Transactions)
}

func TestServer_MessReportRejectsUnknownType(t *testing.T) {
	a := newApp(t)
	token := a.login(t)

	resp, data := a.client.doJSON(t, http.MethodGet, "/messes/report?mess_type=brunch", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(data))

	resp, data = a.client.doJSON(t, http.MethodGet, "/messes/report", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Empty(t, decodeJSON[usecase.MessReportOutput](t, data).Messes)
}
