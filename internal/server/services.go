package server

import (
	"time"

	radix "github.com/mediocregopher/radix/v3"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/example/bookstore/internal/auth"
	"github.com/example/bookstore/internal/config"
	"github.com/example/bookstore/internal/infra/mq"
	"github.com/example/bookstore/internal/monitoring"
	"github.com/example/bookstore/internal/repository/mysql"
	"github.com/example/bookstore/internal/service"
)

// Services 两个 HTTP 入口共用的服务集合
type Services struct {
	JWT        *config.JWTConfig
	TokenCache *auth.TokenCache
	Metrics    *prometheus.Registry

	Users    *service.UserService
	Books    *service.BookService
	Cart     *service.CartService
	Wishlist *service.WishlistService
	Orders   *service.OrderService
	Reports  *service.ReportService
	Visits   *service.VisitService
	Logs     *service.LogService
}

// NewServices 组装仓储与服务；redis 可为 nil，publisher 为 nil 时不发送事件
func NewServices(cfg *config.Config, db *gorm.DB, redisClient radix.Client, publisher mq.Publisher) *Services {
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	logs := service.NewLogService(mysql.NewAuditLogRepository(db))
	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	ttl := time.Duration(cfg.Auth.TokenCacheTTLSeconds) * time.Second

	return &Services{
		JWT:        &cfg.JWT,
		TokenCache: auth.NewTokenCache(redisClient, ring, ttl),
		Metrics:    monitoring.NewRegistry(service.GetMonitor()),
		Users:      service.NewUserService(userRepo, &cfg.JWT, logs),
		Books:      service.NewBookService(bookRepo, logs),
		Cart:       service.NewCartService(mysql.NewCartRepository(db), bookRepo),
		Wishlist:   service.NewWishlistService(mysql.NewWishlistRepository(db), bookRepo),
		Orders:     service.NewOrderService(db, orderRepo, publisher),
		Reports:    service.NewReportService(bookRepo, userRepo, orderRepo),
		Visits:     service.NewVisitService(mysql.NewVisitRepository(db), redisClient),
		Logs:       logs,
	}
}
