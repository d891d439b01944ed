package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/bookstore/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]*cart.Item, error) {
	var list []*cart.Item
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *cartRepo) Get(ctx context.Context, userID, bookID int64) (*cart.Item, error) {
	var it cart.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *cartRepo) Add(ctx context.Context, userID, bookID, qty int64) error {
	it := cart.Item{UserID: userID, BookID: bookID, Quantity: qty}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", qty),
		}),
	}).Create(&it).Error
}

func (r *cartRepo) SetQuantity(ctx context.Context, userID, bookID, qty int64) error {
	it := cart.Item{UserID: userID, BookID: bookID, Quantity: qty}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
	}).Create(&it).Error
}

func (r *cartRepo) Remove(ctx context.Context, userID, bookID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&cart.Item{}).Error
}

func (r *cartRepo) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&cart.Item{}).Error
}
