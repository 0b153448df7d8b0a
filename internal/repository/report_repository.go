package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/model"
)

// 集計用の明細行（料理・カテゴリ名付き）
type ItemSalesRow struct {
	OrderID      int64
	DishID       int64
	DishName     string
	CategoryName string
	Price        decimal.Decimal
	Quantity     int64
}

// 配達注文と親注文をまとめた行
type DriverOrderRow struct {
	DeliveryOrderID int64
	DriverID        *int64
	DeliveryStatus  model.DeliveryStatus
	Order           model.Order
}

// 集計の元データだけを返す。集計はusecase側で行う。
type ReportRepository interface {
	OrdersBetween(ctx context.Context, from, to time.Time, f OrderListFilter) ([]model.Order, error)
	ItemsForOrders(ctx context.Context, orderIDs []int64) ([]ItemSalesRow, error)
	DriverOrdersBetween(ctx context.Context, from, to time.Time, driverID *int64) ([]DriverOrderRow, error)
}
