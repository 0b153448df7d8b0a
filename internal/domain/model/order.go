package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusDelivered OrderStatus = "delivered"
)

type OrderType string

const (
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDining   OrderType = "dining"
	OrderTypeDelivery OrderType = "delivery"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentBank     PaymentMethod = "bank"
	PaymentCashBank PaymentMethod = "cash-bank"
	PaymentCredit   PaymentMethod = "credit"
)

// 許可される遷移。同じステータスへの更新は呼び出し側でno-op扱い。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:  {OrderStatusApproved, OrderStatusCancelled, OrderStatusDelivered},
	OrderStatusApproved: {OrderStatusCancelled, OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusCancelled, OrderStatusDelivered:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeTakeaway, OrderTypeDining, OrderTypeDelivery:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentBank, PaymentCashBank, PaymentCredit:
		return true
	}
	return false
}

type Order struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID              int64           `gorm:"not null;index" json:"user_id"`
	OrderType           OrderType       `gorm:"type:varchar(20);not null;default:'dining'" json:"order_type"`
	Status              OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalAmount         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	PaymentMethod       PaymentMethod   `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	CashAmount          decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"cash_amount"`
	BankAmount          decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"bank_amount"`
	CreditAmount        decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"credit_amount"`
	DeliveryCharge      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"delivery_charge"`
	DiscountAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"discount_amount"`
	InvoiceNumber       string          `gorm:"type:varchar(20);not null;default:''" json:"invoice_number"`
	Address             string          `gorm:"type:text" json:"address"`
	CustomerName        string          `gorm:"type:varchar(100)" json:"customer_name"`
	CustomerPhoneNumber string          `gorm:"type:varchar(15);index" json:"customer_phone_number"`
	DeliveryDriverID    *int64          `gorm:"index" json:"delivery_driver_id"`
	CreditUserID        *int64          `gorm:"index" json:"credit_user_id"`
	CouponID            *int64          `json:"coupon_id"`
	BillGenerated       bool            `gorm:"not null;default:false" json:"bill_generated"`
	Paid                bool            `gorm:"not null;default:false" json:"paid"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (o Order) IsDelivery() bool {
	return o.OrderType == OrderTypeDelivery
}

// 請求書番号はIDの4桁ゼロ埋め。一度だけ採番する。
func InvoiceNumberFor(orderID int64) string {
	return fmt.Sprintf("%04d", orderID)
}
