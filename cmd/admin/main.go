package main

import (
	"context"
	"flag"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/bookstore/internal/config"
	"github.com/example/bookstore/internal/infra/mq"
	"github.com/example/bookstore/internal/infra/redis"
	"github.com/example/bookstore/internal/logger"
	"github.com/example/bookstore/internal/repository/mysql"
	"github.com/example/bookstore/internal/server"
)

func main() {
	configPath := flag.String("config", "./config", "配置文件或所在目录")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	log := logger.MustInit(&cfg.Log)
	defer log.Sync()

	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	// 后台改订单状态同样需要发事件
	publisher, err := mq.NewPublisher(&cfg.MQ)
	if err != nil {
		log.Fatal("init publisher failed", zap.Error(err))
	}
	defer publisher.Close()

	app := iris.New()
	server.RegisterAdminRoutes(app, server.NewServices(cfg, db, redisClient, publisher))

	iris.RegisterOnInterrupt(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Shutdown(ctx)
	})

	addr := cfg.AdminServer.Addr()
	log.Info("admin server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr), iris.WithoutInterruptHandler, iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		log.Fatal("admin server stopped", zap.Error(err))
	}
}
