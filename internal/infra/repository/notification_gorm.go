package repository

import (
	"context"

	"gorm.io/gorm"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type NotificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

func (r *NotificationGormRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

//新しい順
func (r *NotificationGormRepository) List(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{})
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var ns []model.Notification
	if err := q.Order("created_at desc").Order("id desc").Find(&ns).Error; err != nil {
		return []model.Notification{}, err
	}
	return ns, nil
}

func (r *NotificationGormRepository) MarkAsRead(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *NotificationGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
