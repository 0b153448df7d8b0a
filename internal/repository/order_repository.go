package repository

import (
	"context"
	"time"

	"restaurant/internal/domain/model"
)

type OrderListFilter struct {
	Page          int
	Limit         int
	Status        string
	OrderType     string
	PaymentMethod string
	UserID        *int64
	From          *time.Time
	To            *time.Time

	//客の電話番号（注文履歴）
	CustomerPhoneNumber string
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//行ロック付き（Tx内で使う）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order *model.Order) error
	//更新可能な列をまとめて保存
	Update(ctx context.Context, order model.Order) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	//未採番のときだけ書き込む
	SetInvoiceNumber(ctx context.Context, orderID int64, invoice string) error
	MarkBilled(ctx context.Context, orderID int64) error
	//明細・請求・配達・掛けの紐付けも消す
	Delete(ctx context.Context, orderID int64) error
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	//Dishをpreloadして返す
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	FindByID(ctx context.Context, itemID int64) (model.OrderItem, error)
	//同じ料理なら数量を加算
	UpsertByOrderAndDish(ctx context.Context, orderID int64, dishID int64, addQty int64) error
	DeleteByID(ctx context.Context, itemID int64) error
}
