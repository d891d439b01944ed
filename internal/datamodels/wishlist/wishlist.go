package wishlist

import (
	"context"
	"time"

	"github.com/example/bookstore/internal/datamodels/book"
)

// Item 收藏夹条目
type Item struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"uniqueIndex:idx_wishlist_user_book;not null" json:"user_id"`
	BookID    int64      `gorm:"uniqueIndex:idx_wishlist_user_book;not null" json:"book_id"`
	Book      *book.Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName 固定表名
func (Item) TableName() string {
	return "wishlist_items"
}

// Repository 收藏夹仓储接口
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*Item, error)
	Add(ctx context.Context, userID, bookID int64) error
	Remove(ctx context.Context, userID, bookID int64) error
}
