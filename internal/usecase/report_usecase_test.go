package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"restaurant/internal/domain/model"
	"restaurant/internal/infra/cache"
	"restaurant/internal/logger"
	repo "restaurant/internal/repository"
	"restaurant/internal/usecase"
)

func reportOrders() []model.Order {
	at := time.Now().Add(-2 * time.Hour)
	return []model.Order{
		{ID: 1, UserID: 1, Status: model.OrderStatusDelivered, TotalAmount: dec("100"), CreatedAt: at},
		{ID: 2, UserID: 2, Status: model.OrderStatusDelivered, TotalAmount: dec("50"), CreatedAt: at},
		{ID: 3, UserID: 3, Status: model.OrderStatusPending, TotalAmount: dec("30"), CreatedAt: at},
	}
}

func reportItems() []repo.ItemSalesRow {
	return []repo.ItemSalesRow{
		{OrderID: 1, DishID: 10, DishName: "Biryani", CategoryName: "Mains", Price: dec("50"), Quantity: 2},
		{OrderID: 2, DishID: 10, DishName: "Biryani", CategoryName: "Mains", Price: dec("50"), Quantity: 1},
		{OrderID: 3, DishID: 20, DishName: "Lassi", CategoryName: "Drinks", Price: dec("15"), Quantity: 2},
	}
}

func newReportUC(reports *ReportRepoMock, users *UserRepoMock, c cache.Cache) *usecase.ReportUsecase {
	return usecase.NewReportUsecase(reports, users, c, time.Minute, nil, logger.Discard())
}

// =====================
// Dashboard
// =====================

func TestReportUsecase_Dashboard(t *testing.T) {
	reports := new(ReportRepoMock)
	reports.On("OrdersBetween", mock.Anything, mock.Anything, mock.Anything, repo.OrderListFilter{}).Return(reportOrders(), nil)
	reports.On("ItemsForOrders", mock.Anything, []int64{1, 2, 3}).Return(reportItems(), nil)

	out, err := newReportUC(reports, new(UserRepoMock), cache.NewNoop()).Dashboard(context.Background(), "bogus")
	require.NoError(t, err)

	assert.Equal(t, usecase.RangeMonth, out.TimeRange)
	// 売上・件数は配達済みのみ
	requireMoney(t, "150", out.TotalIncome)
	assert.Equal(t, int64(2), out.TotalOrders)
	// 平均は全注文
	requireMoney(t, "60", out.AvgOrderValue)

	require.Len(t, out.DailySales, 1)
	requireMoney(t, "150", out.DailySales[0].TotalSales)
	require.Len(t, out.PopularTimeSlots, 1)
	assert.Equal(t, int64(2), out.PopularTimeSlots[0].OrderCount)

	require.Len(t, out.TopDishes, 2)
	assert.Equal(t, "Biryani", out.TopDishes[0].Name)
	assert.Equal(t, int64(2), out.TopDishes[0].Orders)

	require.Len(t, out.CategorySales, 2)
	assert.Equal(t, "Mains", out.CategorySales[0].Category)
	requireMoney(t, "150", out.CategorySales[0].Value)
	requireMoney(t, "30", out.CategorySales[1].Value)

	reports.AssertExpectations(t)
}

func TestReportUsecase_Dashboard_CacheHit(t *testing.T) {
	reports := new(ReportRepoMock)
	c := new(CacheMock)

	cachedOut := usecase.DashboardOutput{TimeRange: "week", TotalOrders: 42, TotalIncome: dec("999")}
	b, err := json.Marshal(cachedOut)
	require.NoError(t, err)
	c.On("Get", mock.Anything, "dashboard:week").Return(string(b), nil)

	out, err := newReportUC(reports, new(UserRepoMock), c).Dashboard(context.Background(), "week")
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.TotalOrders)
	requireMoney(t, "999", out.TotalIncome)

	reports.AssertNotCalled(t, "OrdersBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// キャッシュが落ちていても集計は返す
func TestReportUsecase_Dashboard_CacheFailureIsIgnored(t *testing.T) {
	reports := new(ReportRepoMock)
	reports.On("OrdersBetween", mock.Anything, mock.Anything, mock.Anything, repo.OrderListFilter{}).Return([]model.Order{}, nil)
	reports.On("ItemsForOrders", mock.Anything, []int64{}).Return([]repo.ItemSalesRow{}, nil)

	c := new(CacheMock)
	c.On("Get", mock.Anything, "dashboard:day").Return("", errors.New("connection refused"))
	c.On("Set", mock.Anything, "dashboard:day", mock.AnythingOfType("string"), time.Minute).Return(errors.New("connection refused"))

	out, err := newReportUC(reports, new(UserRepoMock), c).Dashboard(context.Background(), "day")
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.TotalOrders)
	requireMoney(t, "0", out.AvgOrderValue)
	assert.NotNil(t, out.TopDishes)

	c.AssertExpectations(t)
}

// =====================
// Trends
// =====================

func TestTrend(t *testing.T) {
	requireMoney(t, "0", usecase.Trend(dec("150"), dec("0")))
	requireMoney(t, "50", usecase.Trend(dec("150"), dec("100")))
	requireMoney(t, "-25", usecase.Trend(dec("75"), dec("100")))
	requireMoney(t, "33.33", usecase.Trend(dec("4"), dec("3")))
}

func TestReportUsecase_SalesTrends(t *testing.T) {
	reports := new(ReportRepoMock)
	// 今の期間 → 直前の期間の順に呼ばれる
	reports.On("OrdersBetween", mock.Anything, mock.Anything, mock.Anything, repo.OrderListFilter{}).Return([]model.Order{
		{ID: 1, TotalAmount: dec("100")}, {ID: 2, TotalAmount: dec("50")},
	}, nil).Once()
	reports.On("OrdersBetween", mock.Anything, mock.Anything, mock.Anything, repo.OrderListFilter{}).Return([]model.Order{
		{ID: 3, TotalAmount: dec("100")},
	}, nil).Once()

	out, err := newReportUC(reports, new(UserRepoMock), cache.NewNoop()).SalesTrends(context.Background(), "week")
	require.NoError(t, err)
	assert.Equal(t, "week", out.TimeRange)
	requireMoney(t, "50", out.TotalIncomeTrend)
	requireMoney(t, "100", out.TotalOrdersTrend)
	requireMoney(t, "-25", out.AvgOrderValueTrend)
	reports.AssertExpectations(t)
}

func TestReportUsecase_SalesTrends_NoPreviousData(t *testing.T) {
	reports := new(ReportRepoMock)
	reports.On("OrdersBetween", mock.Anything, mock.Anything, mock.Anything, repo.OrderListFilter{}).Return([]model.Order{
		{ID: 1, TotalAmount: dec("100")},
	}, nil).Once()
	reports.On("OrdersBetween", mock.Anything, mock.Anything, mock.Anything, repo.OrderListFilter{}).Return([]model.Order{}, nil).Once()

	out, err := newReportUC(reports, new(UserRepoMock), cache.NewNoop()).SalesTrends(context.Background(), "day")
	require.NoError(t, err)
	requireMoney(t, "0", out.TotalIncomeTrend)
	requireMoney(t, "0", out.TotalOrdersTrend)
	requireMoney(t, "0", out.AvgOrderValueTrend)
}

// =====================
// 日付指定レポート
// =====================

func TestReportUsecase_SalesReport_DateBoundsInclusive(t *testing.T) {
	reports := new(ReportRepoMock)
	from := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	reports.On("OrdersBetween", mock.Anything,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		repo.OrderListFilter{OrderType: "delivery", PaymentMethod: "cash", Status: "delivered"},
	).Return(nil, nil)

	out, err := newReportUC(reports, new(UserRepoMock), nil).SalesReport(context.Background(), usecase.SalesReportInput{
		ReportDateRange: usecase.ReportDateRange{From: &from, To: &to},
		OrderType:       "delivery",
		PaymentMethod:   "cash",
		Status:          "delivered",
	})
	require.NoError(t, err)
	assert.NotNil(t, out)
	reports.AssertExpectations(t)
}

func TestReportUsecase_SalesReport_Validation(t *testing.T) {
	uc := newReportUC(new(ReportRepoMock), new(UserRepoMock), nil)
	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := uc.SalesReport(context.Background(), usecase.SalesReportInput{ReportDateRange: usecase.ReportDateRange{From: &from, To: &to}})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	_, err = uc.SalesReport(context.Background(), usecase.SalesReportInput{PaymentMethod: "cheque"})
	requireKind(t, err, usecase.ErrInvalidValue, http.StatusBadRequest)
}

func TestReportUsecase_ProductWiseReport(t *testing.T) {
	reports := new(ReportRepoMock)
	reports.On("OrdersBetween", mock.Anything, mock.Anything, mock.Anything, repo.OrderListFilter{}).Return(reportOrders(), nil)
	reports.On("ItemsForOrders", mock.Anything, []int64{1, 2, 3}).Return(reportItems(), nil)

	out, err := newReportUC(reports, new(UserRepoMock), nil).ProductWiseReport(context.Background(), usecase.ReportDateRange{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Biryani", out[0].ProductName)
	assert.Equal(t, int64(3), out[0].TotalQuantity)
	requireMoney(t, "150", out[0].TotalAmount)
	assert.Equal(t, "Drinks", out[1].Category)
	requireMoney(t, "30", out[1].TotalAmount)
}

func TestReportUsecase_DriverReport(t *testing.T) {
	reports := new(ReportRepoMock)
	driverID := int64(4)
	reports.On("DriverOrdersBetween", mock.Anything, mock.Anything, mock.Anything, &driverID).Return([]repo.DriverOrderRow{
		{DeliveryOrderID: 9, DriverID: &driverID, DeliveryStatus: model.DeliveryStatusDelivered, Order: model.Order{ID: 1, InvoiceNumber: "0001", TotalAmount: dec("60"), DeliveryCharge: dec("10")}},
	}, nil)

	out, err := newReportUC(reports, new(UserRepoMock), nil).DriverReport(context.Background(), usecase.ReportDateRange{}, &driverID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "0001", out[0].InvoiceNumber)
	assert.Equal(t, model.DeliveryStatusDelivered, out[0].DeliveryStatus)
	requireMoney(t, "10", out[0].DeliveryCharge)
}

func TestReportUsecase_StaffOrderReport(t *testing.T) {
	reports := new(ReportRepoMock)
	users := new(UserRepoMock)
	users.On("List", mock.Anything, (*model.Role)(nil)).Return([]model.User{
		{ID: 1, Role: model.RoleStaff},
		{ID: 2, Role: model.RoleAdmin},
		{ID: 3, Role: model.RoleDriver},
	}, nil)
	reports.On("OrdersBetween", mock.Anything, mock.Anything, mock.Anything, repo.OrderListFilter{}).Return(reportOrders(), nil)

	out, err := newReportUC(reports, users, nil).StaffOrderReport(context.Background(), usecase.ReportDateRange{}, nil)
	require.NoError(t, err)
	// driverが受けた注文は含めない
	assert.Len(t, out, 2)
}

func TestReportUsecase_StaffOrderReport_NotStaff(t *testing.T) {
	users := new(UserRepoMock)
	id := int64(3)
	users.On("FindByID", mock.Anything, id).Return(&model.User{ID: 3, Role: model.RoleDriver}, nil)

	_, err := newReportUC(new(ReportRepoMock), users, nil).StaffOrderReport(context.Background(), usecase.ReportDateRange{}, &id)
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
}
