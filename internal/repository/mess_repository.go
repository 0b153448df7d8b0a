package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/model"
)

type MessTypeRepository interface {
	Create(ctx context.Context, t *model.MessType) error
	FindByID(ctx context.Context, id int64) (model.MessType, error)
	FindByName(ctx context.Context, name model.MessTypeName) (model.MessType, error)
	List(ctx context.Context) ([]model.MessType, error)
	Delete(ctx context.Context, id int64) error
}

type MenuListFilter struct {
	MessTypeID *int64
	IsCustom   *bool
	CreatedBy  string
	Search     string
}

type MenuRepository interface {
	Create(ctx context.Context, m *model.Menu) error
	//MenuItems.Dish と MessType をpreloadして返す
	FindByID(ctx context.Context, id int64) (model.Menu, error)
	FindByIDForUpdate(ctx context.Context, id int64) (model.Menu, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Menu, error)
	List(ctx context.Context, f MenuListFilter) ([]model.Menu, error)
	Update(ctx context.Context, m model.Menu) error
	SetSubTotal(ctx context.Context, id int64, subTotal decimal.Decimal) error
	//明細と契約との紐付けも消す
	Delete(ctx context.Context, id int64) error

	AddItem(ctx context.Context, item *model.MenuItem) error
	FindItem(ctx context.Context, itemID int64) (model.MenuItem, error)
	DeleteItem(ctx context.Context, itemID int64) error
	//このメニューを含む契約のID
	MessIDsUsing(ctx context.Context, menuID int64) ([]int64, error)
}

type MessReportFilter struct {
	From          *time.Time
	To            *time.Time
	PaymentMethod string
	PendingOnly   bool
	MessTypeID    *int64
}

type MessRepository interface {
	Create(ctx context.Context, m *model.Mess) error
	//MessType と Menus をpreloadして返す
	FindByID(ctx context.Context, id int64) (model.Mess, error)
	FindByIDForUpdate(ctx context.Context, id int64) (model.Mess, error)
	FindByCustomerAndType(ctx context.Context, customerName string, messTypeID int64) (model.Mess, error)
	List(ctx context.Context, f MessReportFilter) ([]model.Mess, error)
	//契約項目と金額を保存する
	Update(ctx context.Context, m model.Mess) error
	ReplaceMenus(ctx context.Context, messID int64, menuIDs []int64) error
	//入金の反映。paidとpendingを同時に動かす
	AddPayment(ctx context.Context, id int64, received, cash, bank decimal.Decimal) error
	//入金履歴ごと消す
	Delete(ctx context.Context, id int64) error
}

type MessTransactionRepository interface {
	Create(ctx context.Context, t *model.MessTransaction) error
	FindByID(ctx context.Context, id int64) (model.MessTransaction, error)
	List(ctx context.Context, messID *int64) ([]model.MessTransaction, error)
	UpdateStatus(ctx context.Context, id int64, status model.MessTransactionStatus) error
}
