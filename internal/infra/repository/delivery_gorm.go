package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type DeliveryDriverGormRepository struct {
	db *gorm.DB
}

func NewDeliveryDriverGormRepository(db *gorm.DB) *DeliveryDriverGormRepository {
	return &DeliveryDriverGormRepository{db: db}
}

func (r *DeliveryDriverGormRepository) Create(ctx context.Context, d *model.DeliveryDriver) error {
	return r.db.WithContext(ctx).Omit("User").Create(d).Error
}

func (r *DeliveryDriverGormRepository) FindByID(ctx context.Context, driverID int64) (model.DeliveryDriver, error) {
	var d model.DeliveryDriver
	err := r.db.WithContext(ctx).Preload("User").First(&d, driverID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DeliveryDriver{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DeliveryDriver{}, err
	}
	return d, nil
}

func (r *DeliveryDriverGormRepository) FindByUserID(ctx context.Context, userID int64) (model.DeliveryDriver, error) {
	var d model.DeliveryDriver
	err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DeliveryDriver{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DeliveryDriver{}, err
	}
	return d, nil
}

func (r *DeliveryDriverGormRepository) List(ctx context.Context) ([]model.DeliveryDriver, error) {
	var ds []model.DeliveryDriver
	if err := r.db.WithContext(ctx).Preload("User").Order("id asc").Find(&ds).Error; err != nil {
		return []model.DeliveryDriver{}, err
	}
	return ds, nil
}

func (r *DeliveryDriverGormRepository) SetActive(ctx context.Context, driverID int64, active bool) error {
	return r.setFlag(ctx, driverID, "is_active", active)
}

func (r *DeliveryDriverGormRepository) SetAvailable(ctx context.Context, driverID int64, available bool) error {
	return r.setFlag(ctx, driverID, "is_available", available)
}

func (r *DeliveryDriverGormRepository) setFlag(ctx context.Context, driverID int64, column string, v bool) error {
	res := r.db.WithContext(ctx).Model(&model.DeliveryDriver{}).
		Where("id = ?", driverID).
		Update(column, v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *DeliveryDriverGormRepository) Delete(ctx context.Context, driverID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.DeliveryOrder{}).
			Where("driver_id = ?", driverID).
			Update("driver_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Order{}).
			Where("delivery_driver_id = ?", driverID).
			Update("delivery_driver_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.DeliveryDriver{}, driverID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

type DeliveryOrderGormRepository struct {
	db *gorm.DB
}

func NewDeliveryOrderGormRepository(db *gorm.DB) *DeliveryOrderGormRepository {
	return &DeliveryOrderGormRepository{db: db}
}

func (r *DeliveryOrderGormRepository) Create(ctx context.Context, d *model.DeliveryOrder) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DeliveryOrderGormRepository) FindByID(ctx context.Context, id int64) (model.DeliveryOrder, error) {
	var d model.DeliveryOrder
	err := r.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DeliveryOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DeliveryOrder{}, err
	}
	return d, nil
}

func (r *DeliveryOrderGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.DeliveryOrder, error) {
	var d model.DeliveryOrder
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DeliveryOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DeliveryOrder{}, err
	}
	return d, nil
}

func (r *DeliveryOrderGormRepository) List(ctx context.Context, f repo.DeliveryOrderFilter) ([]model.DeliveryOrder, error) {
	q := r.db.WithContext(ctx).Model(&model.DeliveryOrder{})
	if f.DriverID != nil {
		q = q.Where("driver_id = ?", *f.DriverID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var ds []model.DeliveryOrder
	if err := q.Order("id desc").Find(&ds).Error; err != nil {
		return []model.DeliveryOrder{}, err
	}
	return ds, nil
}

func (r *DeliveryOrderGormRepository) UpdateStatus(ctx context.Context, id int64, status model.DeliveryStatus) error {
	res := r.db.WithContext(ctx).Model(&model.DeliveryOrder{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *DeliveryOrderGormRepository) AssignDriver(ctx context.Context, id int64, driverID *int64) error {
	res := r.db.WithContext(ctx).Model(&model.DeliveryOrder{}).
		Where("id = ?", id).
		Update("driver_id", driverID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
