package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type BillGormRepository struct {
	db *gorm.DB
}

func NewBillGormRepository(db *gorm.DB) *BillGormRepository {
	return &BillGormRepository{db: db}
}

func (r *BillGormRepository) Create(ctx context.Context, bill *model.Bill) error {
	return r.db.WithContext(ctx).Create(bill).Error
}

func (r *BillGormRepository) FindByID(ctx context.Context, billID int64) (model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).First(&b, billID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Bill{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Bill{}, err
	}
	return b, nil
}

func (r *BillGormRepository) List(ctx context.Context, f repo.BillListFilter) ([]model.Bill, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Bill{})
	if f.OrderStatus != "" {
		q = q.Joins("JOIN orders ON orders.id = bills.order_id").
			Where("orders.status = ?", f.OrderStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Bill{}, 0, err
	}

	var bills []model.Bill
	offset := (f.Page - 1) * f.Limit
	if err := q.Select("bills.*").Order("bills.id desc").Limit(f.Limit).Offset(offset).Find(&bills).Error; err != nil {
		return []model.Bill{}, 0, err
	}
	return bills, total, nil
}

func (r *BillGormRepository) Delete(ctx context.Context, billID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Bill{}, billID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
