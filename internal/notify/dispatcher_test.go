package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"restaurant/internal/domain/event"
	"restaurant/internal/domain/model"
	"restaurant/internal/logger"
	"restaurant/internal/notify"
)

type NotificationRepoMock struct{ mock.Mock }

func (m *NotificationRepoMock) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *NotificationRepoMock) List(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	panic("not used in dispatcher tests")
}
func (m *NotificationRepoMock) MarkAsRead(ctx context.Context, id int64) error {
	panic("not used in dispatcher tests")
}
func (m *NotificationRepoMock) Delete(ctx context.Context, id int64) error {
	panic("not used in dispatcher tests")
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, eventType string, payload interface{}) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}
func (m *PublisherMock) Close() error { return nil }

func TestMessage(t *testing.T) {
	msg, ok := notify.Message(event.OrderCreated{OrderID: 12, TotalAmount: decimal.RequireFromString("120")})
	assert.True(t, ok)
	assert.Equal(t, "New order created: Order #12 with a total amount of $120.00", msg)

	msg, ok = notify.Message(event.BillCreated{BillID: 3, OrderID: 12})
	assert.True(t, ok)
	assert.Equal(t, "New bill #3 generated for Order #12", msg)

	_, ok = notify.Message(event.OrderStatusChanged{OrderID: 1})
	assert.False(t, ok)
}

func TestDispatch_StoresAndPublishes(t *testing.T) {
	ctx := context.Background()
	nr := new(NotificationRepoMock)
	pub := new(PublisherMock)

	ev := event.BillCreated{BillID: 1, OrderID: 2}
	nr.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
		return n.Message == "New bill #1 generated for Order #2" && !n.IsRead
	})).Return(nil).Once()
	pub.On("Publish", ctx, "BillCreated", ev).Return(nil).Once()

	d := notify.NewDispatcher(nr, pub, nil, logger.Discard())
	d.Dispatch(ctx, ev)

	nr.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestDispatch_FailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	nr := new(NotificationRepoMock)
	pub := new(PublisherMock)

	nr.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()
	pub.On("Publish", ctx, mock.Anything, mock.Anything).Return(errors.New("broker down")).Twice()

	d := notify.NewDispatcher(nr, pub, nil, logger.Discard())
	assert.NotPanics(t, func() {
		d.Dispatch(ctx,
			event.OrderCreated{OrderID: 1, TotalAmount: decimal.NewFromInt(10)},
			event.OrderStatusChanged{OrderID: 1, From: "pending", To: "approved"},
		)
	})

	nr.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestDispatch_WithoutPublisher(t *testing.T) {
	ctx := context.Background()
	nr := new(NotificationRepoMock)
	nr.On("Create", ctx, mock.Anything).Return(nil).Once()

	d := notify.NewDispatcher(nr, nil, nil, logger.Discard())
	d.Dispatch(ctx, event.OrderCreated{OrderID: 5, TotalAmount: decimal.NewFromInt(1)})

	nr.AssertExpectations(t)
}
