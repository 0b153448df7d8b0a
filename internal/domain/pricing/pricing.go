// Package pricing は注文金額の計算をまとめる。金額はすべてdecimalで扱う。
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"restaurant/internal/domain/model"
)

var (
	ErrSplitMismatch = errors.New("cash and bank amounts must add up to the total")
	ErrUnknownMethod = errors.New("unknown payment method")
)

// 1明細分（単価×数量）
type Line struct {
	Price    decimal.Decimal
	Quantity int64
}

func LineTotal(price decimal.Decimal, qty int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(qty))
}

// 明細合計。明細が無ければ0。
func RecalculateTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.Price, l.Quantity))
	}
	return total.Round(2)
}

// 明細合計にクーポンを適用し、配達料を足す
func OrderTotal(lines []Line, coupon *model.Coupon, deliveryCharge decimal.Decimal) (total, discount decimal.Decimal) {
	subtotal := RecalculateTotal(lines)
	discounted := subtotal
	if coupon != nil {
		discounted = coupon.ApplyDiscount(subtotal)
	}
	discount = subtotal.Sub(discounted)
	return discounted.Add(deliveryCharge).Round(2), discount.Round(2)
}

// 支払方法ごとの内訳
type Split struct {
	Cash   decimal.Decimal
	Bank   decimal.Decimal
	Credit decimal.Decimal
}

// cash-bank の場合のみ入力の内訳を使い、合計一致を確認する
func SettleSplit(method model.PaymentMethod, total, cash, bank decimal.Decimal) (Split, error) {
	switch method {
	case model.PaymentCash:
		return Split{Cash: total, Bank: decimal.Zero, Credit: decimal.Zero}, nil
	case model.PaymentBank:
		return Split{Cash: decimal.Zero, Bank: total, Credit: decimal.Zero}, nil
	case model.PaymentCredit:
		return Split{Cash: decimal.Zero, Bank: decimal.Zero, Credit: total}, nil
	case model.PaymentCashBank:
		if !cash.Add(bank).Equal(total) {
			return Split{}, ErrSplitMismatch
		}
		return Split{Cash: cash, Bank: bank, Credit: decimal.Zero}, nil
	}
	return Split{}, ErrUnknownMethod
}

// 合計が変わったcash-bank注文の内訳を合わせ直す。
// 銀行分は入力どおり（合計を超える分は切り詰め）、差額は現金で吸収する。
func RebalanceSplit(total, cash, bank decimal.Decimal) Split {
	if cash.Add(bank).Equal(total) {
		return Split{Cash: cash, Bank: bank, Credit: decimal.Zero}
	}
	if bank.GreaterThan(total) {
		bank = total
	}
	if bank.IsNegative() {
		bank = decimal.Zero
	}
	return Split{Cash: total.Sub(bank), Bank: bank, Credit: decimal.Zero}
}
