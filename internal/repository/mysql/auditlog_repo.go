package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/bookstore/internal/datamodels/auditlog"
)

type auditLogRepo struct {
	db *gorm.DB
}

// NewAuditLogRepository 创建操作日志仓储
func NewAuditLogRepository(db *gorm.DB) auditlog.Repository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, l *auditlog.Log) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *auditLogRepo) List(ctx context.Context, action string, limit int) ([]*auditlog.Log, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var list []*auditlog.Log
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
