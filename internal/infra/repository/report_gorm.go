package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type ReportGormRepository struct {
	db *gorm.DB
}

func NewReportGormRepository(db *gorm.DB) *ReportGormRepository {
	return &ReportGormRepository{db: db}
}

// [from, to) の注文
func (r *ReportGormRepository) OrdersBetween(ctx context.Context, from, to time.Time, f repo.OrderListFilter) ([]model.Order, error) {
	f.From, f.To = nil, nil
	q := applyOrderFilter(r.db.WithContext(ctx).Model(&model.Order{}), f).
		Where("created_at >= ? AND created_at < ?", from, to)

	var orders []model.Order
	if err := q.Order("created_at asc").Order("id asc").Find(&orders).Error; err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

func (r *ReportGormRepository) ItemsForOrders(ctx context.Context, orderIDs []int64) ([]repo.ItemSalesRow, error) {
	if len(orderIDs) == 0 {
		return []repo.ItemSalesRow{}, nil
	}
	var rows []repo.ItemSalesRow
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.order_id, oi.dish_id, d.name AS dish_name, COALESCE(c.name, '') AS category_name, d.price, oi.quantity").
		Joins("JOIN dishes d ON d.id = oi.dish_id").
		Joins("LEFT JOIN categories c ON c.id = d.category_id").
		Where("oi.order_id IN ?", orderIDs).
		Order("oi.id asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.ItemSalesRow{}, err
	}
	return rows, nil
}

func (r *ReportGormRepository) DriverOrdersBetween(ctx context.Context, from, to time.Time, driverID *int64) ([]repo.DriverOrderRow, error) {
	q := r.db.WithContext(ctx).
		Model(&model.DeliveryOrder{}).
		Select("delivery_orders.*").
		Joins("JOIN orders ON orders.id = delivery_orders.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to)
	if driverID != nil {
		q = q.Where("delivery_orders.driver_id = ?", *driverID)
	}

	var dos []model.DeliveryOrder
	if err := q.Order("delivery_orders.id asc").Find(&dos).Error; err != nil {
		return []repo.DriverOrderRow{}, err
	}
	if len(dos) == 0 {
		return []repo.DriverOrderRow{}, nil
	}

	ids := make([]int64, 0, len(dos))
	for _, d := range dos {
		ids = append(ids, d.OrderID)
	}
	var orders []model.Order
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&orders).Error; err != nil {
		return []repo.DriverOrderRow{}, err
	}
	byID := make(map[int64]model.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}

	rows := make([]repo.DriverOrderRow, 0, len(dos))
	for _, d := range dos {
		rows = append(rows, repo.DriverOrderRow{
			DeliveryOrderID: d.ID,
			DriverID:        d.DriverID,
			DeliveryStatus:  d.Status,
			Order:           byID[d.OrderID],
		})
	}
	return rows, nil
}
