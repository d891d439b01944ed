package cart

import (
	"context"
	"time"

	"github.com/example/bookstore/internal/datamodels/book"
)

// Item 购物车条目，同一用户同一本书只有一行
type Item struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"uniqueIndex:idx_cart_user_book;not null" json:"user_id"`
	BookID    int64      `gorm:"uniqueIndex:idx_cart_user_book;not null" json:"book_id"`
	Quantity  int64      `gorm:"not null" json:"quantity"`
	Book      *book.Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName 固定表名
func (Item) TableName() string {
	return "cart_items"
}

// Repository 购物车仓储接口
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*Item, error)
	Get(ctx context.Context, userID, bookID int64) (*Item, error)
	// Add 不存在则新建，存在则累加数量
	Add(ctx context.Context, userID, bookID, qty int64) error
	SetQuantity(ctx context.Context, userID, bookID, qty int64) error
	Remove(ctx context.Context, userID, bookID int64) error
	Clear(ctx context.Context, userID int64) error
}
