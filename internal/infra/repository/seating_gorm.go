package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

// RowsAffected==0 を ErrNotFound にそろえる
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	return err
}

// =====================
// floors
// =====================

type FloorGormRepository struct {
	db *gorm.DB
}

func NewFloorGormRepository(db *gorm.DB) *FloorGormRepository {
	return &FloorGormRepository{db: db}
}

func (r *FloorGormRepository) Create(ctx context.Context, f *model.Floor) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FloorGormRepository) FindByID(ctx context.Context, id int64) (model.Floor, error) {
	var f model.Floor
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return model.Floor{}, notFoundOr(err)
	}
	return f, nil
}

func (r *FloorGormRepository) FindByName(ctx context.Context, name string) (model.Floor, error) {
	var f model.Floor
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&f).Error; err != nil {
		return model.Floor{}, notFoundOr(err)
	}
	return f, nil
}

func (r *FloorGormRepository) List(ctx context.Context) ([]model.Floor, error) {
	var fs []model.Floor
	if err := r.db.WithContext(ctx).Order("id asc").Find(&fs).Error; err != nil {
		return []model.Floor{}, err
	}
	return fs, nil
}

func (r *FloorGormRepository) Update(ctx context.Context, f model.Floor) error {
	return affected(r.db.WithContext(ctx).Model(&model.Floor{}).Where("id = ?", f.ID).Update("name", f.Name))
}

func (r *FloorGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("floor_id = ?", id).Delete(&model.DiningTable{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&model.Floor{}, id))
	})
}

// =====================
// tables
// =====================

type DiningTableGormRepository struct {
	db *gorm.DB
}

func NewDiningTableGormRepository(db *gorm.DB) *DiningTableGormRepository {
	return &DiningTableGormRepository{db: db}
}

func (r *DiningTableGormRepository) Create(ctx context.Context, t *model.DiningTable) error {
	return r.db.WithContext(ctx).Omit("Floor").Create(t).Error
}

func (r *DiningTableGormRepository) FindByID(ctx context.Context, id int64) (model.DiningTable, error) {
	var t model.DiningTable
	if err := r.db.WithContext(ctx).Preload("Floor").First(&t, id).Error; err != nil {
		return model.DiningTable{}, notFoundOr(err)
	}
	return t, nil
}

func (r *DiningTableGormRepository) List(ctx context.Context, floorName string) ([]model.DiningTable, error) {
	q := r.db.WithContext(ctx).Preload("Floor")
	if floorName != "" {
		q = q.Joins("JOIN floors ON floors.id = dining_tables.floor_id").Where("floors.name = ?", floorName)
	}
	var ts []model.DiningTable
	if err := q.Order("dining_tables.id asc").Find(&ts).Error; err != nil {
		return []model.DiningTable{}, err
	}
	return ts, nil
}

func (r *DiningTableGormRepository) Update(ctx context.Context, t model.DiningTable) error {
	return affected(r.db.WithContext(ctx).Model(&model.DiningTable{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
		"table_name":  t.TableName,
		"start_time":  t.StartTime,
		"end_time":    t.EndTime,
		"seats_count": t.SeatsCount,
		"capacity":    t.Capacity,
		"floor_id":    t.FloorID,
		"is_ready":    t.IsReady,
	}))
}

func (r *DiningTableGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.DiningTable{}, id))
}

// =====================
// chairs
// =====================

type ChairGormRepository struct {
	db *gorm.DB
}

func NewChairGormRepository(db *gorm.DB) *ChairGormRepository {
	return &ChairGormRepository{db: db}
}

func (r *ChairGormRepository) Create(ctx context.Context, c *model.Chair) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ChairGormRepository) FindByID(ctx context.Context, id int64) (model.Chair, error) {
	var c model.Chair
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Chair{}, notFoundOr(err)
	}
	return c, nil
}

func (r *ChairGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Chair, error) {
	var c model.Chair
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return model.Chair{}, notFoundOr(err)
	}
	return c, nil
}

func (r *ChairGormRepository) FindByName(ctx context.Context, name string) (model.Chair, error) {
	var c model.Chair
	if err := r.db.WithContext(ctx).Where("chair_name = ?", name).First(&c).Error; err != nil {
		return model.Chair{}, notFoundOr(err)
	}
	return c, nil
}

func (r *ChairGormRepository) List(ctx context.Context) ([]model.Chair, error) {
	var cs []model.Chair
	if err := r.db.WithContext(ctx).Order("id asc").Find(&cs).Error; err != nil {
		return []model.Chair{}, err
	}
	return cs, nil
}

func (r *ChairGormRepository) Update(ctx context.Context, c model.Chair) error {
	return affected(r.db.WithContext(ctx).Model(&model.Chair{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"chair_name": c.ChairName,
		"amount":     c.Amount,
		"is_active":  c.IsActive,
	}))
}

func (r *ChairGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Chair{}, id))
}

// =====================
// bookings
// =====================

type ChairBookingGormRepository struct {
	db *gorm.DB
}

func NewChairBookingGormRepository(db *gorm.DB) *ChairBookingGormRepository {
	return &ChairBookingGormRepository{db: db}
}

func (r *ChairBookingGormRepository) Create(ctx context.Context, b *model.ChairBooking) error {
	return r.db.WithContext(ctx).Omit("Chair").Create(b).Error
}

func (r *ChairBookingGormRepository) FindByID(ctx context.Context, id int64) (model.ChairBooking, error) {
	var b model.ChairBooking
	if err := r.db.WithContext(ctx).Preload("Chair").First(&b, id).Error; err != nil {
		return model.ChairBooking{}, notFoundOr(err)
	}
	return b, nil
}

func (r *ChairBookingGormRepository) List(ctx context.Context, f repo.ChairBookingFilter) ([]model.ChairBooking, error) {
	q := r.db.WithContext(ctx).Preload("Chair")
	if f.ChairID != nil {
		q = q.Where("chair_id = ?", *f.ChairID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("end_time > ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time < ?", *f.To)
	}
	var bs []model.ChairBooking
	if err := q.Order("start_time asc").Find(&bs).Error; err != nil {
		return []model.ChairBooking{}, err
	}
	return bs, nil
}

func (r *ChairBookingGormRepository) Update(ctx context.Context, b model.ChairBooking) error {
	return affected(r.db.WithContext(ctx).Model(&model.ChairBooking{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"chair_id":      b.ChairID,
		"customer_name": b.CustomerName,
		"customer_mob":  b.CustomerMob,
		"start_time":    b.StartTime,
		"end_time":      b.EndTime,
		"amount":        b.Amount,
		"order_id":      b.OrderID,
	}))
}

func (r *ChairBookingGormRepository) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	return affected(r.db.WithContext(ctx).Model(&model.ChairBooking{}).Where("id = ?", id).Update("status", status))
}

func (r *ChairBookingGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.ChairBooking{}, id))
}

func (r *ChairBookingGormRepository) ConfirmedOverlapping(ctx context.Context, chairID int64, start, end time.Time, excludeID int64) ([]model.ChairBooking, error) {
	q := r.db.WithContext(ctx).
		Where("chair_id = ? AND status = ?", chairID, model.BookingStatusConfirmed).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var bs []model.ChairBooking
	if err := q.Order("start_time asc").Find(&bs).Error; err != nil {
		return []model.ChairBooking{}, err
	}
	return bs, nil
}
