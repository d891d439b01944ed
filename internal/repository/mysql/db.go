package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/example/bookstore/internal/config"
	"github.com/example/bookstore/internal/datamodels/auditlog"
	"github.com/example/bookstore/internal/datamodels/book"
	"github.com/example/bookstore/internal/datamodels/cart"
	"github.com/example/bookstore/internal/datamodels/order"
	"github.com/example/bookstore/internal/datamodels/user"
	"github.com/example/bookstore/internal/datamodels/visit"
	"github.com/example/bookstore/internal/datamodels/wishlist"
)

var (
	db   *gorm.DB
	once sync.Once
)

// GormConfig 各入口共用的 GORM 配置
func GormConfig() *gorm.Config {
	return &gorm.Config{
		// 关联由仓储层维护，不在库里建外键
		DisableForeignKeyConstraintWhenMigrating: true,
		// 唯一键冲突统一转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}
}

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), GormConfig())
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}
		if cfg.MaxOpenConns > 0 {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
			}
		}

		if err = Migrate(db); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// Migrate 迁移全部表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&book.Book{},
		&order.Order{},
		&order.Item{},
		&cart.Item{},
		&wishlist.Item{},
		&visit.Visit{},
		&auditlog.Log{},
	)
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
