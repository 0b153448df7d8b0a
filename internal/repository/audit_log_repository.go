package repository

import (
	"context"
	"time"

	"restaurant/internal/domain/model"
)

// 注文や掛け客ごとの操作履歴を引くための条件。ゼロ値は無条件。
type AuditLogFilter struct {
	ResourceType model.AuditResourceType
	ResourceID   int64
	ActorUserID  int64
	Actions      []model.AuditAction
	Since        time.Time
	Until        time.Time
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	// 1件追記。更新・削除はしない
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
