package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order 订单模型
type Order struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	OrderNo   string          `gorm:"size:36;uniqueIndex;not null" json:"order_no"`
	UserID    int64           `gorm:"index;not null" json:"user_id"`
	Items     []Item          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status    Status          `gorm:"size:16;index;not null" json:"status"`
	Address   string          `gorm:"size:512" json:"address"`
	Phone     string          `gorm:"size:32" json:"phone"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Item 订单行，价格为下单时快照
type Item struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	OrderID   int64           `gorm:"index;not null" json:"order_id"`
	BookID    int64           `gorm:"index;not null" json:"book_id"`
	Title     string          `gorm:"size:255" json:"title"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

// TableName 固定表名
func (Item) TableName() string {
	return "order_items"
}

// Subtotal 行小计
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// ComputeTotal 根据订单行计算总价
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Quantities 汇总每本书的购买数量，同一本书出现多行时累加
func (o *Order) Quantities() map[int64]int64 {
	q := make(map[int64]int64, len(o.Items))
	for _, it := range o.Items {
		q[it.BookID] += it.Quantity
	}
	return q
}

// Query 后台订单查询条件
type Query struct {
	Status Status // 为空表示不过滤
	UserID int64
	Limit  int
}

// BookSales 单本书的销售汇总
type BookSales struct {
	BookID  int64           `json:"book_id"`
	Title   string          `json:"title"`
	Units   int64           `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	List(ctx context.Context, q Query) ([]*Order, error)
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*Order, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	// CompletedTotals 已完成订单的总收入与总销量
	CompletedTotals(ctx context.Context) (decimal.Decimal, int64, error)
	SalesByBook(ctx context.Context, limit int) ([]BookSales, error)
}
