package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Floor struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

// 営業時間は "HH:MM"。00:00-00:00 は終日。
type DiningTable struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TableName  string `gorm:"type:varchar(50);not null" json:"table_name"`
	StartTime  string `gorm:"type:varchar(5);not null;default:'00:00'" json:"start_time"`
	EndTime    string `gorm:"type:varchar(5);not null;default:'00:00'" json:"end_time"`
	SeatsCount int    `gorm:"not null" json:"seats_count"`
	Capacity   int    `gorm:"not null" json:"capacity"`
	FloorID    int64  `gorm:"not null;index" json:"floor_id"`
	IsReady    bool   `gorm:"not null;default:true" json:"is_ready"`

	Floor Floor `gorm:"foreignKey:FloorID" json:"floor"`
}

// 時間貸しの席
type Chair struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ChairName string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"chair_name"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"amount"`
	IsActive  bool            `gorm:"not null;default:true" json:"is_active"`
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// 予約。重なり判定の対象はconfirmedのみ。
type ChairBooking struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ChairID      int64           `gorm:"not null;index:idx_chair_booking_window,priority:1" json:"chair_id"`
	CustomerName string          `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerMob  string          `gorm:"type:varchar(15)" json:"customer_mob"`
	StartTime    time.Time       `gorm:"not null;index:idx_chair_booking_window,priority:2" json:"start_time"`
	EndTime      time.Time       `gorm:"not null" json:"end_time"`
	Amount       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"amount"`
	Status       BookingStatus   `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`
	OrderID      *int64          `gorm:"index" json:"order_id"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`

	Chair Chair `gorm:"foreignKey:ChairID" json:"chair"`
}

// 利用時間
func (b ChairBooking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// [start, end) 同士の重なり
func (b ChairBooking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
