package repository

import (
	"context"
	"time"

	"restaurant/internal/domain/model"
)

type NatureGroupRepository interface {
	Create(ctx context.Context, g *model.NatureGroup) error
	FindByID(ctx context.Context, id int64) (model.NatureGroup, error)
	List(ctx context.Context) ([]model.NatureGroup, error)
	Update(ctx context.Context, g model.NatureGroup) error
	Delete(ctx context.Context, id int64) error
}

type MainGroupRepository interface {
	Create(ctx context.Context, g *model.MainGroup) error
	//NatureGroupをpreloadして返す
	FindByID(ctx context.Context, id int64) (model.MainGroup, error)
	List(ctx context.Context) ([]model.MainGroup, error)
	Update(ctx context.Context, g model.MainGroup) error
	Delete(ctx context.Context, id int64) error
}

type LedgerRepository interface {
	Create(ctx context.Context, l *model.Ledger) error
	//Group.NatureGroupまでpreloadして返す
	FindByID(ctx context.Context, id int64) (model.Ledger, error)
	FindByName(ctx context.Context, name string) (model.Ledger, error)
	List(ctx context.Context) ([]model.Ledger, error)
	Update(ctx context.Context, l model.Ledger) error
	Delete(ctx context.Context, id int64) error
}

type LedgerTransactionFilter struct {
	LedgerID *int64
	From     *time.Time
	To       *time.Time
}

type LedgerTransactionRepository interface {
	Create(ctx context.Context, t *model.LedgerTransaction) error
	FindByID(ctx context.Context, id int64) (model.LedgerTransaction, error)
	//日付の昇順
	List(ctx context.Context, f LedgerTransactionFilter) ([]model.LedgerTransaction, error)
	Update(ctx context.Context, t model.LedgerTransaction) error
	Delete(ctx context.Context, id int64) error
}

type IncomeStatementRepository interface {
	Create(ctx context.Context, s *model.IncomeStatement) error
	FindByID(ctx context.Context, id int64) (model.IncomeStatement, error)
	List(ctx context.Context) ([]model.IncomeStatement, error)
	Update(ctx context.Context, s model.IncomeStatement) error
	Delete(ctx context.Context, id int64) error
}

type BalanceSheetRepository interface {
	Create(ctx context.Context, s *model.BalanceSheet) error
	FindByID(ctx context.Context, id int64) (model.BalanceSheet, error)
	List(ctx context.Context) ([]model.BalanceSheet, error)
	Update(ctx context.Context, s model.BalanceSheet) error
	Delete(ctx context.Context, id int64) error
}
