package repository

import (
	"context"

	"gorm.io/gorm"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type NatureGroupGormRepository struct {
	db *gorm.DB
}

func NewNatureGroupGormRepository(db *gorm.DB) *NatureGroupGormRepository {
	return &NatureGroupGormRepository{db: db}
}

func (r *NatureGroupGormRepository) Create(ctx context.Context, g *model.NatureGroup) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *NatureGroupGormRepository) FindByID(ctx context.Context, id int64) (model.NatureGroup, error) {
	var g model.NatureGroup
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return model.NatureGroup{}, notFoundOr(err)
	}
	return g, nil
}

func (r *NatureGroupGormRepository) List(ctx context.Context) ([]model.NatureGroup, error) {
	var gs []model.NatureGroup
	if err := r.db.WithContext(ctx).Order("name asc").Find(&gs).Error; err != nil {
		return []model.NatureGroup{}, err
	}
	return gs, nil
}

func (r *NatureGroupGormRepository) Update(ctx context.Context, g model.NatureGroup) error {
	return affected(r.db.WithContext(ctx).Model(&model.NatureGroup{}).Where("id = ?", g.ID).Update("name", g.Name))
}

func (r *NatureGroupGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.NatureGroup{}, id))
}

type MainGroupGormRepository struct {
	db *gorm.DB
}

func NewMainGroupGormRepository(db *gorm.DB) *MainGroupGormRepository {
	return &MainGroupGormRepository{db: db}
}

func (r *MainGroupGormRepository) Create(ctx context.Context, g *model.MainGroup) error {
	return r.db.WithContext(ctx).Omit("NatureGroup").Create(g).Error
}

func (r *MainGroupGormRepository) FindByID(ctx context.Context, id int64) (model.MainGroup, error) {
	var g model.MainGroup
	if err := r.db.WithContext(ctx).Preload("NatureGroup").First(&g, id).Error; err != nil {
		return model.MainGroup{}, notFoundOr(err)
	}
	return g, nil
}

func (r *MainGroupGormRepository) List(ctx context.Context) ([]model.MainGroup, error) {
	var gs []model.MainGroup
	if err := r.db.WithContext(ctx).Preload("NatureGroup").Order("name asc").Find(&gs).Error; err != nil {
		return []model.MainGroup{}, err
	}
	return gs, nil
}

func (r *MainGroupGormRepository) Update(ctx context.Context, g model.MainGroup) error {
	return affected(r.db.WithContext(ctx).Model(&model.MainGroup{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
		"name":            g.Name,
		"nature_group_id": g.NatureGroupID,
	}))
}

func (r *MainGroupGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.MainGroup{}, id))
}

type LedgerGormRepository struct {
	db *gorm.DB
}

func NewLedgerGormRepository(db *gorm.DB) *LedgerGormRepository {
	return &LedgerGormRepository{db: db}
}

func (r *LedgerGormRepository) Create(ctx context.Context, l *model.Ledger) error {
	return r.db.WithContext(ctx).Omit("Group").Create(l).Error
}

func (r *LedgerGormRepository) FindByID(ctx context.Context, id int64) (model.Ledger, error) {
	var l model.Ledger
	if err := r.db.WithContext(ctx).Preload("Group.NatureGroup").First(&l, id).Error; err != nil {
		return model.Ledger{}, notFoundOr(err)
	}
	return l, nil
}

func (r *LedgerGormRepository) FindByName(ctx context.Context, name string) (model.Ledger, error) {
	var l model.Ledger
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&l).Error; err != nil {
		return model.Ledger{}, notFoundOr(err)
	}
	return l, nil
}

func (r *LedgerGormRepository) List(ctx context.Context) ([]model.Ledger, error) {
	var ls []model.Ledger
	if err := r.db.WithContext(ctx).Preload("Group.NatureGroup").Order("name asc").Find(&ls).Error; err != nil {
		return []model.Ledger{}, err
	}
	return ls, nil
}

func (r *LedgerGormRepository) Update(ctx context.Context, l model.Ledger) error {
	return affected(r.db.WithContext(ctx).Model(&model.Ledger{}).Where("id = ?", l.ID).Updates(map[string]interface{}{
		"name":            l.Name,
		"mobile_no":       l.MobileNo,
		"opening_balance": l.OpeningBalance,
		"group_id":        l.GroupID,
		"debit_credit":    l.DebitCredit,
	}))
}

// 仕訳・損益・貸借の行も消す
func (r *LedgerGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&model.LedgerTransaction{}, &model.IncomeStatement{}, &model.BalanceSheet{}} {
			if err := tx.Where("ledger_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return affected(tx.Delete(&model.Ledger{}, id))
	})
}

type LedgerTransactionGormRepository struct {
	db *gorm.DB
}

func NewLedgerTransactionGormRepository(db *gorm.DB) *LedgerTransactionGormRepository {
	return &LedgerTransactionGormRepository{db: db}
}

func (r *LedgerTransactionGormRepository) Create(ctx context.Context, t *model.LedgerTransaction) error {
	return r.db.WithContext(ctx).Omit("Ledger").Create(t).Error
}

func (r *LedgerTransactionGormRepository) FindByID(ctx context.Context, id int64) (model.LedgerTransaction, error) {
	var t model.LedgerTransaction
	if err := r.db.WithContext(ctx).Preload("Ledger").First(&t, id).Error; err != nil {
		return model.LedgerTransaction{}, notFoundOr(err)
	}
	return t, nil
}

func (r *LedgerTransactionGormRepository) List(ctx context.Context, f repo.LedgerTransactionFilter) ([]model.LedgerTransaction, error) {
	q := r.db.WithContext(ctx).Preload("Ledger")
	if f.LedgerID != nil {
		q = q.Where("ledger_id = ?", *f.LedgerID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	var ts []model.LedgerTransaction
	if err := q.Order("date asc, id asc").Find(&ts).Error; err != nil {
		return []model.LedgerTransaction{}, err
	}
	return ts, nil
}

func (r *LedgerTransactionGormRepository) Update(ctx context.Context, t model.LedgerTransaction) error {
	return affected(r.db.WithContext(ctx).Model(&model.LedgerTransaction{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
		"ledger_id":        t.LedgerID,
		"date":             t.Date,
		"transaction_type": t.TransactionType,
		"debit_amount":     t.DebitAmount,
		"credit_amount":    t.CreditAmount,
		"remarks":          t.Remarks,
	}))
}

func (r *LedgerTransactionGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.LedgerTransaction{}, id))
}

type IncomeStatementGormRepository struct {
	db *gorm.DB
}

func NewIncomeStatementGormRepository(db *gorm.DB) *IncomeStatementGormRepository {
	return &IncomeStatementGormRepository{db: db}
}

func (r *IncomeStatementGormRepository) Create(ctx context.Context, s *model.IncomeStatement) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *IncomeStatementGormRepository) FindByID(ctx context.Context, id int64) (model.IncomeStatement, error) {
	var s model.IncomeStatement
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return model.IncomeStatement{}, notFoundOr(err)
	}
	return s, nil
}

func (r *IncomeStatementGormRepository) List(ctx context.Context) ([]model.IncomeStatement, error) {
	var ss []model.IncomeStatement
	if err := r.db.WithContext(ctx).Order("id asc").Find(&ss).Error; err != nil {
		return []model.IncomeStatement{}, err
	}
	return ss, nil
}

func (r *IncomeStatementGormRepository) Update(ctx context.Context, s model.IncomeStatement) error {
	return affected(r.db.WithContext(ctx).Model(&model.IncomeStatement{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"ledger_id":   s.LedgerID,
		"income_type": s.IncomeType,
		"amount":      s.Amount,
	}))
}

func (r *IncomeStatementGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.IncomeStatement{}, id))
}

type BalanceSheetGormRepository struct {
	db *gorm.DB
}

func NewBalanceSheetGormRepository(db *gorm.DB) *BalanceSheetGormRepository {
	return &BalanceSheetGormRepository{db: db}
}

func (r *BalanceSheetGormRepository) Create(ctx context.Context, s *model.BalanceSheet) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *BalanceSheetGormRepository) FindByID(ctx context.Context, id int64) (model.BalanceSheet, error) {
	var s model.BalanceSheet
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return model.BalanceSheet{}, notFoundOr(err)
	}
	return s, nil
}

func (r *BalanceSheetGormRepository) List(ctx context.Context) ([]model.BalanceSheet, error) {
	var ss []model.BalanceSheet
	if err := r.db.WithContext(ctx).Order("id asc").Find(&ss).Error; err != nil {
		return []model.BalanceSheet{}, err
	}
	return ss, nil
}

func (r *BalanceSheetGormRepository) Update(ctx context.Context, s model.BalanceSheet) error {
	return affected(r.db.WithContext(ctx).Model(&model.BalanceSheet{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"ledger_id":    s.LedgerID,
		"balance_type": s.BalanceType,
		"amount":       s.Amount,
	}))
}

func (r *BalanceSheetGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.BalanceSheet{}, id))
}
