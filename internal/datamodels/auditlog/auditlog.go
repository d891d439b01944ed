package auditlog

import (
	"context"
	"time"
)

// Log 操作日志（订单状态变更、后台商品维护等）
type Log struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Actor     string    `gorm:"size:64;index" json:"actor"`
	Action    string    `gorm:"size:64;index;not null" json:"action"` // 例如 order.complete / book.update
	Target    string    `gorm:"size:64;index" json:"target"`
	Detail    string    `gorm:"size:1024" json:"detail"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Repository 日志仓储接口
type Repository interface {
	Create(ctx context.Context, l *Log) error
	List(ctx context.Context, action string, limit int) ([]*Log, error)
}
