package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
	"restaurant/internal/usecase"
)

func TestNotificationUsecase_Unread(t *testing.T) {
	notifications := new(NotificationRepoMock)
	notifications.On("List", mock.Anything, true).Return(nil, nil)

	out, err := usecase.NewNotificationUsecase(notifications).Unread(context.Background())
	require.NoError(t, err)
	// nilではなく空配列
	assert.NotNil(t, out)
	assert.Empty(t, out)
	notifications.AssertExpectations(t)
}

func TestNotificationUsecase_List(t *testing.T) {
	notifications := new(NotificationRepoMock)
	notifications.On("List", mock.Anything, false).Return([]model.Notification{{ID: 1, Message: "New order #0001"}}, nil)

	out, err := usecase.NewNotificationUsecase(notifications).List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "New order #0001", out[0].Message)
}

func TestNotificationUsecase_MarkAsRead(t *testing.T) {
	notifications := new(NotificationRepoMock)
	notifications.On("MarkAsRead", mock.Anything, int64(1)).Return(nil)
	notifications.On("MarkAsRead", mock.Anything, int64(2)).Return(repo.ErrNotFound)
	notifications.On("MarkAsRead", mock.Anything, int64(3)).Return(errors.New("boom"))
	uc := usecase.NewNotificationUsecase(notifications)

	require.NoError(t, uc.MarkAsRead(context.Background(), 1))
	requireKind(t, uc.MarkAsRead(context.Background(), 2), usecase.ErrNotFound, http.StatusNotFound)
	requireHTTPStatus(t, uc.MarkAsRead(context.Background(), 3), http.StatusInternalServerError)
	requireHTTPStatus(t, uc.MarkAsRead(context.Background(), 0), http.StatusBadRequest)
}

func TestNotificationUsecase_Delete(t *testing.T) {
	notifications := new(NotificationRepoMock)
	notifications.On("Delete", mock.Anything, int64(5)).Return(repo.ErrNotFound)

	err := usecase.NewNotificationUsecase(notifications).Delete(context.Background(), 5)
	requireKind(t, err, usecase.ErrNotFound, http.StatusNotFound)
}
