package model

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	ID                 int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Code               string           `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Description        string           `gorm:"type:text" json:"description"`
	DiscountAmount     decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0" json:"discount_amount"`
	DiscountPercentage *decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount_percentage"`
	MinPurchaseAmount  *decimal.Decimal `gorm:"type:numeric(10,2)" json:"min_purchase_amount"`
	IsActive           bool             `gorm:"not null" json:"is_active"`
	StartDate          time.Time        `gorm:"not null" json:"start_date"`
	EndDate            time.Time        `gorm:"not null" json:"end_date"`
	UsageLimit         *int64           `json:"usage_limit"`
	UsageCount         int64            `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt          time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 有効・期間内・利用上限未満
func (c Coupon) IsValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return false
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return false
	}
	return true
}

func (c Coupon) MeetsMinimum(amount decimal.Decimal) bool {
	if c.MinPurchaseAmount == nil {
		return true
	}
	return amount.GreaterThanOrEqual(*c.MinPurchaseAmount)
}

// 割合指定が優先。定額は下限を設けない。
func (c Coupon) ApplyDiscount(amount decimal.Decimal) decimal.Decimal {
	if c.DiscountPercentage != nil && !c.DiscountPercentage.IsZero() {
		off := amount.Mul(*c.DiscountPercentage).Div(hundred)
		return amount.Sub(off).Round(2)
	}
	if !c.DiscountAmount.IsZero() {
		return amount.Sub(c.DiscountAmount)
	}
	return amount
}
