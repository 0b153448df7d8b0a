// Package event は注文・請求のライフサイクルで発生するイベント。
// ユースケースはトランザクション中にイベントを集め、コミット後に通知へ渡す。
package event

import "github.com/shopspring/decimal"

type Event interface {
	Type() string
}

type OrderCreated struct {
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (e OrderCreated) Type() string { return "OrderCreated" }

type OrderStatusChanged struct {
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

func (e OrderStatusChanged) Type() string { return "OrderStatusChanged" }

type OrderDeleted struct {
	OrderID int64 `json:"order_id"`
}

func (e OrderDeleted) Type() string { return "OrderDeleted" }

type BillCreated struct {
	BillID  int64 `json:"bill_id"`
	OrderID int64 `json:"order_id"`
}

func (e BillCreated) Type() string { return "BillCreated" }

type CreditAccrued struct {
	CreditUserID int64           `json:"credit_user_id"`
	OrderID      int64           `json:"order_id"`
	Amount       decimal.Decimal `json:"amount"`
}

func (e CreditAccrued) Type() string { return "CreditAccrued" }

type DeliveryStatusChanged struct {
	DeliveryOrderID int64  `json:"delivery_order_id"`
	OrderID         int64  `json:"order_id"`
	From            string `json:"from"`
	To              string `json:"to"`
}

func (e DeliveryStatusChanged) Type() string { return "DeliveryStatusChanged" }
