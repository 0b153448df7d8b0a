package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 食事プランの組み合わせ
type MessTypeName string

const (
	MessBreakfastLunchDinner MessTypeName = "breakfast_lunch_dinner"
	MessBreakfastLunch       MessTypeName = "breakfast_lunch"
	MessBreakfastDinner      MessTypeName = "breakfast_dinner"
	MessLunchDinner          MessTypeName = "lunch_dinner"
)

func (n MessTypeName) Valid() bool {
	switch n {
	case MessBreakfastLunchDinner, MessBreakfastLunch, MessBreakfastDinner, MessLunchDinner:
		return true
	}
	return false
}

// プラン名に含まれる食事か
func (n MessTypeName) Includes(meal MealType) bool {
	for _, part := range strings.Split(string(n), "_") {
		if part == string(meal) {
			return true
		}
	}
	return false
}

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

func (m MealType) Valid() bool {
	return m == MealBreakfast || m == MealLunch || m == MealDinner
}

type DayOfWeek string

func (d DayOfWeek) Valid() bool {
	switch d {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}

type MessType struct {
	ID   int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name MessTypeName `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
}

// 店側の定番メニューはcreated_by="admin"、客ごとのカスタムはis_custom
type Menu struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	DayOfWeek  *DayOfWeek      `gorm:"type:varchar(9)" json:"day_of_week"`
	SubTotal   decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0" json:"sub_total"`
	IsCustom   bool            `gorm:"not null;default:false" json:"is_custom"`
	MessTypeID *int64          `gorm:"index" json:"mess_type_id"`
	CreatedBy  string          `gorm:"type:varchar(255);default:'admin'" json:"created_by"`

	MessType  *MessType  `gorm:"foreignKey:MessTypeID" json:"mess_type,omitempty"`
	MenuItems []MenuItem `gorm:"foreignKey:MenuID" json:"menu_items"`
}

type MenuItem struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MealType *MealType `gorm:"type:varchar(20)" json:"meal_type"`
	MenuID   int64     `gorm:"not null;index" json:"menu_id"`
	DishID   int64     `gorm:"not null;index" json:"dish_id"`

	Dish Dish `gorm:"foreignKey:DishID" json:"dish"`
}

// 食事の定期契約。total = 選んだメニューのsub_total合計、pending = total - paid。
type Mess struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_mess_customer_type" json:"customer_name"`
	MobileNumber  string          `gorm:"type:varchar(15)" json:"mobile_number"`
	StartDate     time.Time       `gorm:"type:date;not null;index" json:"start_date"`
	EndDate       time.Time       `gorm:"type:date;not null;index" json:"end_date"`
	MessTypeID    int64           `gorm:"not null;uniqueIndex:idx_mess_customer_type" json:"mess_type_id"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"paid_amount"`
	PendingAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"pending_amount"`
	CashAmount    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"cash_amount"`
	BankAmount    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"bank_amount"`

	MessType MessType `gorm:"foreignKey:MessTypeID" json:"mess_type"`
	Menus    []Menu   `gorm:"many2many:mess_menus" json:"menus"`
}

// 契約期間内か（日付単位）
func (m Mess) IsValidOn(day time.Time) bool {
	d := day.Format("2006-01-02")
	return m.StartDate.Format("2006-01-02") <= d && d <= m.EndDate.Format("2006-01-02")
}

// cash/bank/cash-bankのみ。掛けは使わない
func MessPaymentMethodValid(m PaymentMethod) bool {
	return m == PaymentCash || m == PaymentBank || m == PaymentCashBank
}

type MessTransactionStatus string

const (
	MessTransactionCompleted MessTransactionStatus = "completed"
	MessTransactionCancelled MessTransactionStatus = "cancelled"
)

// 契約への入金
type MessTransaction struct {
	ID             int64                 `gorm:"primaryKey;autoIncrement" json:"id"`
	MessID         int64                 `gorm:"not null;index" json:"mess_id"`
	ReceivedAmount decimal.Decimal       `gorm:"type:numeric(10,2);not null" json:"received_amount"`
	CashAmount     decimal.Decimal       `gorm:"type:numeric(10,2);not null;default:0" json:"cash_amount"`
	BankAmount     decimal.Decimal       `gorm:"type:numeric(10,2);not null;default:0" json:"bank_amount"`
	PaymentMethod  PaymentMethod         `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status         MessTransactionStatus `gorm:"type:varchar(10);not null;default:'completed'" json:"status"`
	Date           time.Time             `gorm:"not null;index" json:"date"`
}
