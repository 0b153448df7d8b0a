package usecase

import (
	"context"
	"errors"
	"net/http"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type NotificationUsecase struct {
	notifications repo.NotificationRepository
}

func NewNotificationUsecase(notifications repo.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notifications: notifications}
}

func (u *NotificationUsecase) List(ctx context.Context) ([]model.Notification, error) {
	return u.list(ctx, false)
}

// 未読のみ
func (u *NotificationUsecase) Unread(ctx context.Context) ([]model.Notification, error) {
	return u.list(ctx, true)
}

func (u *NotificationUsecase) list(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	ns, err := u.notifications.List(ctx, unreadOnly)
	if err != nil {
		return nil, dbError()
	}
	if ns == nil {
		ns = []model.Notification{}
	}
	return ns, nil
}

func (u *NotificationUsecase) MarkAsRead(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.notifications.MarkAsRead(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("notification")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

func (u *NotificationUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.notifications.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("notification")
	}
	if err != nil {
		return dbError()
	}
	return nil
}
