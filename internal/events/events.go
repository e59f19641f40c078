// Package events 导入与计算完成后的事件通知
package events

import (
	"context"
	"errors"
	"time"
)

// 事件类型
const (
	TypeImportCompleted      = "import.completed"
	TypeCalculationCompleted = "calculation.completed"
	TypeTenantDataDeleted    = "tenant.data_deleted"
)

// Event 一次操作完成的通知
type Event struct {
	Type           string         `json:"type"`
	OrganizationID string         `json:"organization_id"`
	OccurredAt     time.Time      `json:"occurred_at"`
	Payload        map[string]any `json:"payload,omitempty"`
}

// New 创建事件（时间取当前 UTC）
func New(eventType, orgID string, payload map[string]any) Event {
	return Event{Type: eventType, OrganizationID: orgID, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher 事件发布
// 发布失败由调用方记录日志，不影响已完成的操作
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi 依次发布到多个 Publisher，汇总全部错误
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop 不发布任何事件
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
