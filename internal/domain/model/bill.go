package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文の確定記録。作成後は更新しない。
type Bill struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"not null;index" json:"order_id"`
	UserID      int64           `gorm:"not null;index" json:"user_id"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Paid        bool            `gorm:"not null;default:false" json:"paid"`
	BilledAt    time.Time       `gorm:"not null;index" json:"billed_at"`
}
