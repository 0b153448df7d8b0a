package repository

import (
	"context"

	"restaurant/internal/domain/model"
)

type CouponRepository interface {
	Create(ctx context.Context, c *model.Coupon) error
	FindByID(ctx context.Context, id int64) (model.Coupon, error)
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Update(ctx context.Context, c model.Coupon) error
	Delete(ctx context.Context, id int64) error
	//上限未満のときだけusage_countを+1。falseなら上限到達。
	IncrementUsage(ctx context.Context, id int64) (bool, error)
}
