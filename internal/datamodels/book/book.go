package book

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Book 图书模型
type Book struct {
	ID          int64               `gorm:"primaryKey" json:"id"`
	Title       string              `gorm:"size:255;not null;index" json:"title"`
	Author      string              `gorm:"size:255;not null;index" json:"author"`
	Description string              `gorm:"type:text" json:"description"`
	Categories  []string            `gorm:"serializer:json;type:text" json:"categories"`
	OldPrice    decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"old_price"`
	NewPrice    decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"new_price"` // 折后价，可为空
	Stock       int64               `gorm:"not null;default:0" json:"stock"`
	Sold        int64               `gorm:"not null;default:0;index" json:"sold"`
	CoverImage  string              `gorm:"size:512" json:"cover_image"`
	AgeGroups   []string            `gorm:"serializer:json;type:text" json:"age_groups"`
	Languages   []string            `gorm:"serializer:json;type:text" json:"languages"`
	Trending    bool                `gorm:"index" json:"trending"`
	CreatedAt   time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// EffectivePrice 实际售价：有折后价时取折后价
func (b *Book) EffectivePrice() decimal.Decimal {
	if b.NewPrice.Valid && b.NewPrice.Decimal.IsPositive() {
		return b.NewPrice.Decimal
	}
	return b.OldPrice
}

// 排序方式
const (
	SortNewest      = "newest"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortBestSelling = "best_selling"
)

// Filter 列表查询条件
type Filter struct {
	Category string
	Keyword  string // 按标题/作者模糊匹配
	Language string
	AgeGroup string
	Trending *bool
	Sort     string
	Page     int // 从 1 开始
	PageSize int
}

// Normalize 补齐分页默认值
func (f *Filter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 12
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// Repository 图书仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Book, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*Book, error)
	List(ctx context.Context, f Filter) ([]*Book, int64, error)
	ListLowStock(ctx context.Context, threshold int64) ([]*Book, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
}
