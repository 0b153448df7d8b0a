package repository

import (
	"context"

	"restaurant/internal/domain/model"
)

type BillListFilter struct {
	Page  int
	Limit int
	//注文のステータスで絞り込む
	OrderStatus string
}

type BillRepository interface {
	Create(ctx context.Context, bill *model.Bill) error
	FindByID(ctx context.Context, billID int64) (model.Bill, error)
	List(ctx context.Context, f BillListFilter) ([]model.Bill, int64, error)
	Delete(ctx context.Context, billID int64) error
}
