package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 掛け売り客。TotalDueは掛け注文で増え、入金で減る。
type CreditUser struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"type:varchar(100);not null" json:"name"`
	MobileNumber    string          `gorm:"type:varchar(15);not null;uniqueIndex" json:"mobile_number"`
	Address         string          `gorm:"type:text" json:"address"`
	TotalDue        decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"total_due"`
	LimitAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"limit_amount"`
	LastPaymentDate *time.Time      `json:"last_payment_date"`
	DueDate         *time.Time      `json:"due_date"`
	IsActive        bool            `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 注文と掛け客の紐付け。注文1件につき1件。
// Amountはこの注文分として掛け客のtotal_dueに載っている金額。
type CreditOrder struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64           `gorm:"not null;uniqueIndex" json:"order_id"`
	CreditUserID int64           `gorm:"not null;index" json:"credit_user_id"`
	Amount       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"amount"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`

	Order Order `gorm:"foreignKey:OrderID" json:"order"`
}

type CreditTransactionKind string

const (
	CreditTransactionCharge  CreditTransactionKind = "charge"
	CreditTransactionPayment CreditTransactionKind = "payment"
	//明細の追加・削除で注文金額が変わったときの差額（符号付き）
	CreditTransactionAdjustment CreditTransactionKind = "adjustment"
	//キャンセル・削除・支払方法変更・掛け客変更で計上を取り消した
	CreditTransactionReversal CreditTransactionKind = "reversal"
)

// 掛け残高の増減履歴
type CreditTransaction struct {
	ID           int64                 `gorm:"primaryKey;autoIncrement" json:"id"`
	CreditUserID int64                 `gorm:"not null;index" json:"credit_user_id"`
	OrderID      *int64                `gorm:"index" json:"order_id"`
	Kind         CreditTransactionKind `gorm:"type:varchar(10);not null" json:"kind"`
	Amount       decimal.Decimal       `gorm:"type:numeric(10,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal       `gorm:"type:numeric(10,2);not null" json:"balance_after"`
	Description  string                `gorm:"type:varchar(255)" json:"description"`
	CreatedAt    time.Time             `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
