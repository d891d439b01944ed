package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/bookstore/internal/datamodels/wishlist"
)

type wishlistRepo struct {
	db *gorm.DB
}

// NewWishlistRepository 创建收藏夹仓储
func NewWishlistRepository(db *gorm.DB) wishlist.Repository {
	return &wishlistRepo{db: db}
}

func (r *wishlistRepo) ListByUser(ctx context.Context, userID int64) ([]*wishlist.Item, error) {
	var list []*wishlist.Item
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Add 重复收藏不报错
func (r *wishlistRepo) Add(ctx context.Context, userID, bookID int64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoNothing: true,
	}).Create(&wishlist.Item{UserID: userID, BookID: bookID}).Error
}

func (r *wishlistRepo) Remove(ctx context.Context, userID, bookID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&wishlist.Item{}).Error
}
