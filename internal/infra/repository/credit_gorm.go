package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type CreditUserGormRepository struct {
	db *gorm.DB
}

func NewCreditUserGormRepository(db *gorm.DB) *CreditUserGormRepository {
	return &CreditUserGormRepository{db: db}
}

func (r *CreditUserGormRepository) Create(ctx context.Context, u *model.CreditUser) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *CreditUserGormRepository) FindByID(ctx context.Context, id int64) (model.CreditUser, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CreditUserGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.CreditUser, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *CreditUserGormRepository) FindByMobile(ctx context.Context, mobile string) (model.CreditUser, error) {
	return r.first(r.db.WithContext(ctx).Where("mobile_number = ?", mobile))
}

func (r *CreditUserGormRepository) first(q *gorm.DB) (model.CreditUser, error) {
	var u model.CreditUser
	err := q.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CreditUser{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CreditUser{}, err
	}
	return u, nil
}

func (r *CreditUserGormRepository) List(ctx context.Context, activeOnly bool) ([]model.CreditUser, error) {
	q := r.db.WithContext(ctx).Model(&model.CreditUser{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var us []model.CreditUser
	if err := q.Order("name asc").Find(&us).Error; err != nil {
		return []model.CreditUser{}, err
	}
	return us, nil
}

// total_dueは入金・掛け注文でのみ動かす
func (r *CreditUserGormRepository) Update(ctx context.Context, u model.CreditUser) error {
	res := r.db.WithContext(ctx).Model(&model.CreditUser{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"name":          u.Name,
		"mobile_number": u.MobileNumber,
		"address":       u.Address,
		"limit_amount":  u.LimitAmount,
		"due_date":      u.DueDate,
		"is_active":     u.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CreditUserGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CreditUser{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CreditUserGormRepository) AddToTotalDue(ctx context.Context, id int64, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.CreditUser{}).
		Where("id = ?", id).
		UpdateColumn("total_due", gorm.Expr("total_due + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CreditUserGormRepository) ApplyPayment(ctx context.Context, id int64, amount decimal.Decimal, paidAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.CreditUser{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_due":         gorm.Expr("total_due - ?", amount),
			"last_payment_date": paidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type CreditOrderGormRepository struct {
	db *gorm.DB
}

func NewCreditOrderGormRepository(db *gorm.DB) *CreditOrderGormRepository {
	return &CreditOrderGormRepository{db: db}
}

func (r *CreditOrderGormRepository) Create(ctx context.Context, co *model.CreditOrder) error {
	return r.db.WithContext(ctx).Omit("Order").Create(co).Error
}

func (r *CreditOrderGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.CreditOrder, error) {
	var co model.CreditOrder
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&co).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CreditOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CreditOrder{}, err
	}
	return co, nil
}

func (r *CreditOrderGormRepository) List(ctx context.Context, creditUserID *int64) ([]model.CreditOrder, error) {
	q := r.db.WithContext(ctx).Preload("Order")
	if creditUserID != nil {
		q = q.Where("credit_user_id = ?", *creditUserID)
	}
	var cos []model.CreditOrder
	if err := q.Order("id desc").Find(&cos).Error; err != nil {
		return []model.CreditOrder{}, err
	}
	return cos, nil
}

func (r *CreditOrderGormRepository) UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.CreditOrder{}).Where("id = ?", id).Update("amount", amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CreditOrderGormRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.CreditOrder{}).Error
}

type CreditTransactionGormRepository struct {
	db *gorm.DB
}

func NewCreditTransactionGormRepository(db *gorm.DB) *CreditTransactionGormRepository {
	return &CreditTransactionGormRepository{db: db}
}

func (r *CreditTransactionGormRepository) Create(ctx context.Context, t *model.CreditTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *CreditTransactionGormRepository) List(ctx context.Context, creditUserID *int64) ([]model.CreditTransaction, error) {
	q := r.db.WithContext(ctx).Model(&model.CreditTransaction{})
	if creditUserID != nil {
		q = q.Where("credit_user_id = ?", *creditUserID)
	}
	var ts []model.CreditTransaction
	if err := q.Order("id desc").Find(&ts).Error; err != nil {
		return []model.CreditTransaction{}, err
	}
	return ts, nil
}

func (r *CreditTransactionGormRepository) Latest(ctx context.Context, creditUserID *int64) (model.CreditTransaction, error) {
	q := r.db.WithContext(ctx).Model(&model.CreditTransaction{})
	if creditUserID != nil {
		q = q.Where("credit_user_id = ?", *creditUserID)
	}
	var t model.CreditTransaction
	err := q.Order("id desc").First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CreditTransaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CreditTransaction{}, err
	}
	return t, nil
}
