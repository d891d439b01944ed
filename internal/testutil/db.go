// Package testutil 测试辅助：基于 sqlite 的临时数据库与种子数据。
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/datamodels/order"
	"github.com/example/bookstore/internal/datamodels/user"
	"github.com/example/bookstore/internal/repository/mysql"
)

// NewDB 在临时目录创建 sqlite 库并迁移表结构。
// 单连接保证并发事务在测试里串行执行。
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "bookstore.db") + "?_busy_timeout=5000"
	cfg := mysql.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// MustBook 写入一本书
func MustBook(t testing.TB, db *gorm.DB, title string, price string, stock, sold int64) *book.Book {
	t.Helper()
	b := &book.Book{
		Title:      title,
		Author:     "Anon",
		Categories: []string{"fiction"},
		OldPrice:   decimal.RequireFromString(price),
		Stock:      stock,
		Sold:       sold,
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}
	return b
}

// MustUser 写入一个用户，密码字段不做哈希
func MustUser(t testing.TB, db *gorm.DB, username, role string) *user.User {
	t.Helper()
	u := &user.User{Username: username, Email: username + "@example.com", Password: "x", Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Line 订单行简写
type Line struct {
	Book *book.Book
	Qty  int64
}

// MustOrder 直接写入一个指定状态的订单
func MustOrder(t testing.TB, db *gorm.DB, userID int64, status order.Status, lines ...Line) *order.Order {
	t.Helper()
	o := &order.Order{
		OrderNo: randomNo(),
		UserID:  userID,
		Status:  status,
	}
	for _, l := range lines {
		o.Items = append(o.Items, order.Item{
			BookID:    l.Book.ID,
			Title:     l.Book.Title,
			Quantity:  l.Qty,
			UnitPrice: l.Book.EffectivePrice(),
		})
	}
	o.Total = o.ComputeTotal()
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

// ReloadBook 重新读取图书
func ReloadBook(t testing.TB, db *gorm.DB, id int64) *book.Book {
	t.Helper()
	var b book.Book
	if err := db.First(&b, id).Error; err != nil {
		t.Fatalf("reload book %d: %v", id, err)
	}
	return &b
}

// ReloadOrder 重新读取订单
func ReloadOrder(t testing.TB, db *gorm.DB, id int64) *order.Order {
	t.Helper()
	var o order.Order
	if err := db.Preload("Items").First(&o, id).Error; err != nil {
		t.Fatalf("reload order %d: %v", id, err)
	}
	return &o
}
