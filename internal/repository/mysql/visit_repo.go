package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/bookstore/internal/datamodels/visit"
)

type visitRepo struct {
	db *gorm.DB
}

// NewVisitRepository 创建访问量仓储
func NewVisitRepository(db *gorm.DB) visit.Repository {
	return &visitRepo{db: db}
}

func (r *visitRepo) Incr(ctx context.Context, day string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count": gorm.Expr("count + 1"),
		}),
	}).Create(&visit.Visit{Day: day, Count: 1}).Error
}

func (r *visitRepo) ListSince(ctx context.Context, day string) ([]*visit.Visit, error) {
	var list []*visit.Visit
	if err := r.db.WithContext(ctx).
		Where("day >= ?", day).
		Order("day ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
