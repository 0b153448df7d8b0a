// Package notify はライフサイクルイベントを通知として配信する。
// 失敗はログに残すだけで、呼び出し元の処理には影響させない。
package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"restaurant/internal/domain/event"
	"restaurant/internal/domain/model"
	"restaurant/internal/infra/broker"
	"restaurant/internal/metrics"
	repo "restaurant/internal/repository"
)

type Dispatcher struct {
	notifications repo.NotificationRepository
	publisher     broker.Publisher
	metrics       *metrics.Metrics
	log           *logrus.Logger
}

// publisherはnil可（RabbitMQ未設定）
func NewDispatcher(notifications repo.NotificationRepository, publisher broker.Publisher, m *metrics.Metrics, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{notifications: notifications, publisher: publisher, metrics: m, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, events ...event.Event) {
	for _, ev := range events {
		if msg, ok := Message(ev); ok {
			n := &model.Notification{Message: msg}
			if err := d.notifications.Create(ctx, n); err != nil {
				d.metrics.NotificationResult("failed")
				d.log.WithFields(logrus.Fields{"event": ev.Type(), "error": err}).Warn("notification not stored")
			} else {
				d.metrics.NotificationResult("stored")
			}
		}

		if d.publisher == nil {
			continue
		}
		if err := d.publisher.Publish(ctx, ev.Type(), ev); err != nil {
			d.metrics.NotificationResult("publish_failed")
			d.log.WithFields(logrus.Fields{"event": ev.Type(), "error": err}).Warn("event not published")
			continue
		}
		d.metrics.NotificationResult("published")
	}
}

// 通知メッセージを持つのは注文作成と請求作成だけ
func Message(ev event.Event) (string, bool) {
	switch e := ev.(type) {
	case event.OrderCreated:
		return fmt.Sprintf("New order created: Order #%d with a total amount of $%s", e.OrderID, e.TotalAmount.StringFixed(2)), true
	case event.BillCreated:
		return fmt.Sprintf("New bill #%d generated for Order #%d", e.BillID, e.OrderID), true
	}
	return "", false
}
