package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

// =====================
// mess types
// =====================

type MessTypeGormRepository struct {
	db *gorm.DB
}

func NewMessTypeGormRepository(db *gorm.DB) *MessTypeGormRepository {
	return &MessTypeGormRepository{db: db}
}

func (r *MessTypeGormRepository) Create(ctx context.Context, t *model.MessType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *MessTypeGormRepository) FindByID(ctx context.Context, id int64) (model.MessType, error) {
	var t model.MessType
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return model.MessType{}, notFoundOr(err)
	}
	return t, nil
}

func (r *MessTypeGormRepository) FindByName(ctx context.Context, name model.MessTypeName) (model.MessType, error) {
	var t model.MessType
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		return model.MessType{}, notFoundOr(err)
	}
	return t, nil
}

func (r *MessTypeGormRepository) List(ctx context.Context) ([]model.MessType, error) {
	var ts []model.MessType
	if err := r.db.WithContext(ctx).Order("id asc").Find(&ts).Error; err != nil {
		return []model.MessType{}, err
	}
	return ts, nil
}

func (r *MessTypeGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.MessType{}, id))
}

// =====================
// menus
// =====================

type MenuGormRepository struct {
	db *gorm.DB
}

func NewMenuGormRepository(db *gorm.DB) *MenuGormRepository {
	return &MenuGormRepository{db: db}
}

func (r *MenuGormRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("MenuItems.Dish").Preload("MessType")
}

func (r *MenuGormRepository) Create(ctx context.Context, m *model.Menu) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (r *MenuGormRepository) FindByID(ctx context.Context, id int64) (model.Menu, error) {
	var m model.Menu
	if err := r.preloaded(ctx).First(&m, id).Error; err != nil {
		return model.Menu{}, notFoundOr(err)
	}
	return m, nil
}

func (r *MenuGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Menu, error) {
	var m model.Menu
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return model.Menu{}, notFoundOr(err)
	}
	return m, nil
}

func (r *MenuGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Menu, error) {
	if len(ids) == 0 {
		return []model.Menu{}, nil
	}
	var ms []model.Menu
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id asc").Find(&ms).Error; err != nil {
		return []model.Menu{}, err
	}
	return ms, nil
}

func (r *MenuGormRepository) List(ctx context.Context, f repo.MenuListFilter) ([]model.Menu, error) {
	q := r.preloaded(ctx)
	if f.MessTypeID != nil {
		q = q.Where("mess_type_id = ?", *f.MessTypeID)
	}
	if f.IsCustom != nil {
		q = q.Where("is_custom = ?", *f.IsCustom)
	}
	if f.CreatedBy != "" {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR created_by LIKE ?", like, like)
	}
	var ms []model.Menu
	if err := q.Order("id asc").Find(&ms).Error; err != nil {
		return []model.Menu{}, err
	}
	return ms, nil
}

func (r *MenuGormRepository) Update(ctx context.Context, m model.Menu) error {
	return affected(r.db.WithContext(ctx).Model(&model.Menu{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
		"name":         m.Name,
		"day_of_week":  m.DayOfWeek,
		"is_custom":    m.IsCustom,
		"mess_type_id": m.MessTypeID,
		"created_by":   m.CreatedBy,
	}))
}

func (r *MenuGormRepository) SetSubTotal(ctx context.Context, id int64, subTotal decimal.Decimal) error {
	return affected(r.db.WithContext(ctx).Model(&model.Menu{}).Where("id = ?", id).Update("sub_total", subTotal))
}

func (r *MenuGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id = ?", id).Delete(&model.MenuItem{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM mess_menus WHERE menu_id = ?", id).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&model.Menu{}, id))
	})
}

func (r *MenuGormRepository) AddItem(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Omit("Dish").Create(item).Error
}

func (r *MenuGormRepository) FindItem(ctx context.Context, itemID int64) (model.MenuItem, error) {
	var it model.MenuItem
	if err := r.db.WithContext(ctx).Preload("Dish").First(&it, itemID).Error; err != nil {
		return model.MenuItem{}, notFoundOr(err)
	}
	return it, nil
}

func (r *MenuGormRepository) DeleteItem(ctx context.Context, itemID int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.MenuItem{}, itemID))
}

func (r *MenuGormRepository) MessIDsUsing(ctx context.Context, menuID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Table("mess_menus").Where("menu_id = ?", menuID).Order("mess_id asc").Pluck("mess_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// =====================
// messes
// =====================

type MessGormRepository struct {
	db *gorm.DB
}

func NewMessGormRepository(db *gorm.DB) *MessGormRepository {
	return &MessGormRepository{db: db}
}

func (r *MessGormRepository) Create(ctx context.Context, m *model.Mess) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (r *MessGormRepository) FindByID(ctx context.Context, id int64) (model.Mess, error) {
	var m model.Mess
	if err := r.db.WithContext(ctx).Preload("MessType").Preload("Menus").First(&m, id).Error; err != nil {
		return model.Mess{}, notFoundOr(err)
	}
	return m, nil
}

func (r *MessGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Mess, error) {
	var m model.Mess
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return model.Mess{}, notFoundOr(err)
	}
	return m, nil
}

func (r *MessGormRepository) FindByCustomerAndType(ctx context.Context, customerName string, messTypeID int64) (model.Mess, error) {
	var m model.Mess
	err := r.db.WithContext(ctx).Where("customer_name = ? AND mess_type_id = ?", customerName, messTypeID).First(&m).Error
	if err != nil {
		return model.Mess{}, notFoundOr(err)
	}
	return m, nil
}

func (r *MessGormRepository) List(ctx context.Context, f repo.MessReportFilter) ([]model.Mess, error) {
	q := r.db.WithContext(ctx).Preload("MessType").Preload("Menus")
	if f.From != nil {
		q = q.Where("start_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("end_date <= ?", *f.To)
	}
	if f.PaymentMethod != "" {
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.PendingOnly {
		q = q.Where("pending_amount > 0")
	}
	if f.MessTypeID != nil {
		q = q.Where("mess_type_id = ?", *f.MessTypeID)
	}
	var ms []model.Mess
	if err := q.Order("id desc").Find(&ms).Error; err != nil {
		return []model.Mess{}, err
	}
	return ms, nil
}

func (r *MessGormRepository) Update(ctx context.Context, m model.Mess) error {
	return affected(r.db.WithContext(ctx).Model(&model.Mess{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
		"customer_name":  m.CustomerName,
		"mobile_number":  m.MobileNumber,
		"start_date":     m.StartDate,
		"end_date":       m.EndDate,
		"mess_type_id":   m.MessTypeID,
		"payment_method": m.PaymentMethod,
		"total_amount":   m.TotalAmount,
		"paid_amount":    m.PaidAmount,
		"pending_amount": m.PendingAmount,
		"cash_amount":    m.CashAmount,
		"bank_amount":    m.BankAmount,
	}))
}

func (r *MessGormRepository) ReplaceMenus(ctx context.Context, messID int64, menuIDs []int64) error {
	//中間テーブルだけ入れ替える（メニュー本体は触らない）
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM mess_menus WHERE mess_id = ?", messID).Error; err != nil {
			return err
		}
		if len(menuIDs) == 0 {
			return nil
		}
		rows := make([]map[string]interface{}, 0, len(menuIDs))
		for _, id := range menuIDs {
			rows = append(rows, map[string]interface{}{"mess_id": messID, "menu_id": id})
		}
		return tx.Table("mess_menus").Create(rows).Error
	})
}

func (r *MessGormRepository) AddPayment(ctx context.Context, id int64, received, cash, bank decimal.Decimal) error {
	return affected(r.db.WithContext(ctx).Model(&model.Mess{}).Where("id = ?", id).Updates(map[string]interface{}{
		"paid_amount":    gorm.Expr("paid_amount + ?", received),
		"pending_amount": gorm.Expr("pending_amount - ?", received),
		"cash_amount":    gorm.Expr("cash_amount + ?", cash),
		"bank_amount":    gorm.Expr("bank_amount + ?", bank),
	}))
}

func (r *MessGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mess_id = ?", id).Delete(&model.MessTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM mess_menus WHERE mess_id = ?", id).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&model.Mess{}, id))
	})
}

// =====================
// mess transactions
// =====================

type MessTransactionGormRepository struct {
	db *gorm.DB
}

func NewMessTransactionGormRepository(db *gorm.DB) *MessTransactionGormRepository {
	return &MessTransactionGormRepository{db: db}
}

func (r *MessTransactionGormRepository) Create(ctx context.Context, t *model.MessTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *MessTransactionGormRepository) FindByID(ctx context.Context, id int64) (model.MessTransaction, error) {
	var t model.MessTransaction
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return model.MessTransaction{}, notFoundOr(err)
	}
	return t, nil
}

func (r *MessTransactionGormRepository) List(ctx context.Context, messID *int64) ([]model.MessTransaction, error) {
	q := r.db.WithContext(ctx)
	if messID != nil {
		q = q.Where("mess_id = ?", *messID)
	}
	var ts []model.MessTransaction
	if err := q.Order("date desc, id desc").Find(&ts).Error; err != nil {
		return []model.MessTransaction{}, err
	}
	return ts, nil
}

func (r *MessTransactionGormRepository) UpdateStatus(ctx context.Context, id int64, status model.MessTransactionStatus) error {
	return affected(r.db.WithContext(ctx).Model(&model.MessTransaction{}).Where("id = ?", id).Update("status", status))
}
