package model

import "time"

type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusAccepted   DeliveryStatus = "accepted"
	DeliveryStatusInProgress DeliveryStatus = "in_progress"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
	DeliveryStatusCancelled  DeliveryStatus = "cancelled"
)

var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:    {DeliveryStatusAccepted, DeliveryStatusCancelled},
	DeliveryStatusAccepted:   {DeliveryStatusInProgress, DeliveryStatusCancelled},
	DeliveryStatusInProgress: {DeliveryStatusDelivered, DeliveryStatusCancelled},
}

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusAccepted, DeliveryStatusInProgress,
		DeliveryStatusDelivered, DeliveryStatusCancelled:
		return true
	}
	return false
}

// delivered / cancelled は終端
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, to := range deliveryTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

type DeliveryDriver struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	IsAvailable bool      `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// 配達注文は注文1件につき最大1件
type DeliveryOrder struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64          `gorm:"not null;uniqueIndex" json:"order_id"`
	DriverID  *int64         `gorm:"index" json:"driver_id"`
	Status    DeliveryStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Details   string         `gorm:"column:order_details;type:text" json:"order_details"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
