package repository

import (
	"context"

	"restaurant/internal/domain/model"
)

type DeliveryDriverRepository interface {
	Create(ctx context.Context, d *model.DeliveryDriver) error
	FindByID(ctx context.Context, driverID int64) (model.DeliveryDriver, error)
	FindByUserID(ctx context.Context, userID int64) (model.DeliveryDriver, error)
	List(ctx context.Context) ([]model.DeliveryDriver, error)
	SetActive(ctx context.Context, driverID int64, active bool) error
	SetAvailable(ctx context.Context, driverID int64, available bool) error
	//配達注文のdriver_idはNULLにする
	Delete(ctx context.Context, driverID int64) error
}

type DeliveryOrderFilter struct {
	DriverID *int64
	Status   string
}

type DeliveryOrderRepository interface {
	Create(ctx context.Context, d *model.DeliveryOrder) error
	FindByID(ctx context.Context, id int64) (model.DeliveryOrder, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.DeliveryOrder, error)
	List(ctx context.Context, f DeliveryOrderFilter) ([]model.DeliveryOrder, error)
	UpdateStatus(ctx context.Context, id int64, status model.DeliveryStatus) error
	AssignDriver(ctx context.Context, id int64, driverID *int64) error
}
