package repository

import (
	"context"

	"gorm.io/gorm"

	repo "restaurant/internal/repository"
)

type txReposGorm struct {
	orders             repo.OrderRepository
	orderItems         repo.OrderItemRepository
	dishes             repo.DishRepository
	bills              repo.BillRepository
	deliveryDrivers    repo.DeliveryDriverRepository
	deliveryOrders     repo.DeliveryOrderRepository
	creditUsers        repo.CreditUserRepository
	creditOrders       repo.CreditOrderRepository
	creditTransactions repo.CreditTransactionRepository
	coupons            repo.CouponRepository
	auditLogs          repo.AuditLogRepository
	chairs             repo.ChairRepository
	chairBookings      repo.ChairBookingRepository
	menus              repo.MenuRepository
	messes             repo.MessRepository
	messTransactions   repo.MessTransactionRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository                 { return r.orderItems }
func (r *txReposGorm) Dishes() repo.DishRepository                          { return r.dishes }
func (r *txReposGorm) Bills() repo.BillRepository                           { return r.bills }
func (r *txReposGorm) DeliveryDrivers() repo.DeliveryDriverRepository       { return r.deliveryDrivers }
func (r *txReposGorm) DeliveryOrders() repo.DeliveryOrderRepository         { return r.deliveryOrders }
func (r *txReposGorm) CreditUsers() repo.CreditUserRepository               { return r.creditUsers }
func (r *txReposGorm) CreditOrders() repo.CreditOrderRepository             { return r.creditOrders }
func (r *txReposGorm) CreditTransactions() repo.CreditTransactionRepository { return r.creditTransactions }
func (r *txReposGorm) Coupons() repo.CouponRepository                       { return r.coupons }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository                   { return r.auditLogs }
func (r *txReposGorm) Chairs() repo.ChairRepository                         { return r.chairs }
func (r *txReposGorm) ChairBookings() repo.ChairBookingRepository           { return r.chairBookings }
func (r *txReposGorm) Menus() repo.MenuRepository                           { return r.menus }
func (r *txReposGorm) Messes() repo.MessRepository                          { return r.messes }
func (r *txReposGorm) MessTransactions() repo.MessTransactionRepository     { return r.messTransactions }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:             NewOrderGormRepository(tx),
			orderItems:         NewOrderItemGormRepository(tx),
			dishes:             NewDishGormRepository(tx),
			bills:              NewBillGormRepository(tx),
			deliveryDrivers:    NewDeliveryDriverGormRepository(tx),
			deliveryOrders:     NewDeliveryOrderGormRepository(tx),
			creditUsers:        NewCreditUserGormRepository(tx),
			creditOrders:       NewCreditOrderGormRepository(tx),
			creditTransactions: NewCreditTransactionGormRepository(tx),
			coupons:            NewCouponGormRepository(tx),
			auditLogs:          NewAuditLogGormRepository(tx),
			chairs:             NewChairGormRepository(tx),
			chairBookings:      NewChairBookingGormRepository(tx),
			menus:              NewMenuGormRepository(tx),
			messes:             NewMessGormRepository(tx),
			messTransactions:   NewMessTransactionGormRepository(tx),
		}
		return fn(r)
	})
}
