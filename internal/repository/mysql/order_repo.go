package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/bookstore/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

// Create 订单与订单行一起写入
func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) List(ctx context.Context, q order.Query) ([]*order.Order, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	tx := r.db.WithContext(ctx).Preload("Items")
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.UserID > 0 {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	var list []*order.Order
	if err := tx.Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND created_at >= ? AND created_at < ?", order.StatusComplete, from, to).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context) (map[order.Status]int64, error) {
	var rows []struct {
		Status order.Status
		N      int64
	}
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[order.Status]int64, len(order.Statuses))
	for _, s := range order.Statuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *orderRepo) CompletedTotals(ctx context.Context) (decimal.Decimal, int64, error) {
	var sum struct {
		Revenue decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue").
		Where("status = ?", order.StatusComplete).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, 0, err
	}

	var units int64
	if err := r.db.WithContext(ctx).
		Table("order_items").
		Joins("INNER JOIN orders ON orders.id = order_items.order_id").
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Where("orders.status = ?", order.StatusComplete).
		Scan(&units).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return sum.Revenue, units, nil
}

func (r *orderRepo) SalesByBook(ctx context.Context, limit int) ([]order.BookSales, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []order.BookSales
	if err := r.db.WithContext(ctx).
		Table("order_items").
		Joins("INNER JOIN orders ON orders.id = order_items.order_id").
		Select("order_items.book_id AS book_id, MAX(order_items.title) AS title, " +
			"SUM(order_items.quantity) AS units, SUM(order_items.quantity * order_items.unit_price) AS revenue").
		Where("orders.status = ?", order.StatusComplete).
		Group("order_items.book_id").
		Order("units DESC").
		Order("book_id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
