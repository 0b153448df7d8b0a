package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/model"
)

type CreditUserRepository interface {
	Create(ctx context.Context, u *model.CreditUser) error
	FindByID(ctx context.Context, id int64) (model.CreditUser, error)
	FindByIDForUpdate(ctx context.Context, id int64) (model.CreditUser, error)
	FindByMobile(ctx context.Context, mobile string) (model.CreditUser, error)
	List(ctx context.Context, activeOnly bool) ([]model.CreditUser, error)
	Update(ctx context.Context, u model.CreditUser) error
	Delete(ctx context.Context, id int64) error

	//total_due = total_due + amount
	AddToTotalDue(ctx context.Context, id int64, amount decimal.Decimal) error
	//total_due = total_due - amount、最終入金日を更新
	ApplyPayment(ctx context.Context, id int64, amount decimal.Decimal, paidAt time.Time) error
}

type CreditOrderRepository interface {
	Create(ctx context.Context, co *model.CreditOrder) error
	FindByOrderID(ctx context.Context, orderID int64) (model.CreditOrder, error)
	List(ctx context.Context, creditUserID *int64) ([]model.CreditOrder, error)
	UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) error
	DeleteByOrderID(ctx context.Context, orderID int64) error
}

type CreditTransactionRepository interface {
	Create(ctx context.Context, t *model.CreditTransaction) error
	List(ctx context.Context, creditUserID *int64) ([]model.CreditTransaction, error)
	Latest(ctx context.Context, creditUserID *int64) (model.CreditTransaction, error)
}
