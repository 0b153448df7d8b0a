package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Dishes() DishRepository
	Bills() BillRepository
	DeliveryDrivers() DeliveryDriverRepository
	DeliveryOrders() DeliveryOrderRepository
	CreditUsers() CreditUserRepository
	CreditOrders() CreditOrderRepository
	CreditTransactions() CreditTransactionRepository
	Coupons() CouponRepository
	AuditLogs() AuditLogRepository
	Chairs() ChairRepository
	ChairBookings() ChairBookingRepository
	Menus() MenuRepository
	Messes() MessRepository
	MessTransactions() MessTransactionRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
