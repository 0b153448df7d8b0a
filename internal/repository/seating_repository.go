package repository

import (
	"context"
	"time"

	"restaurant/internal/domain/model"
)

type FloorRepository interface {
	Create(ctx context.Context, f *model.Floor) error
	FindByID(ctx context.Context, id int64) (model.Floor, error)
	FindByName(ctx context.Context, name string) (model.Floor, error)
	List(ctx context.Context) ([]model.Floor, error)
	Update(ctx context.Context, f model.Floor) error
	//フロアのテーブルも消す
	Delete(ctx context.Context, id int64) error
}

type DiningTableRepository interface {
	Create(ctx context.Context, t *model.DiningTable) error
	FindByID(ctx context.Context, id int64) (model.DiningTable, error)
	//floorName が空なら全件
	List(ctx context.Context, floorName string) ([]model.DiningTable, error)
	Update(ctx context.Context, t model.DiningTable) error
	Delete(ctx context.Context, id int64) error
}

type ChairRepository interface {
	Create(ctx context.Context, c *model.Chair) error
	FindByID(ctx context.Context, id int64) (model.Chair, error)
	//同じ席の予約確定を直列にするための行ロック
	FindByIDForUpdate(ctx context.Context, id int64) (model.Chair, error)
	FindByName(ctx context.Context, name string) (model.Chair, error)
	List(ctx context.Context) ([]model.Chair, error)
	Update(ctx context.Context, c model.Chair) error
	Delete(ctx context.Context, id int64) error
}

type ChairBookingFilter struct {
	ChairID *int64
	Status  string
	From    *time.Time
	To      *time.Time
}

type ChairBookingRepository interface {
	Create(ctx context.Context, b *model.ChairBooking) error
	//Chairをpreloadして返す
	FindByID(ctx context.Context, id int64) (model.ChairBooking, error)
	List(ctx context.Context, f ChairBookingFilter) ([]model.ChairBooking, error)
	Update(ctx context.Context, b model.ChairBooking) error
	UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error
	Delete(ctx context.Context, id int64) error
	//[start, end) と重なるconfirmed予約。excludeIDは自分自身を外すため（0なら無視）
	ConfirmedOverlapping(ctx context.Context, chairID int64, start, end time.Time, excludeID int64) ([]model.ChairBooking, error)
}
