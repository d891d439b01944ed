package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/example/bookstore/internal/config"
	"github.com/example/bookstore/internal/infra/mq"
	"github.com/example/bookstore/internal/logger"
	"github.com/example/bookstore/internal/monitoring"
	"github.com/example/bookstore/internal/repository/mysql"
	"github.com/example/bookstore/internal/service"
)

// order-worker 消费订单状态事件，写入审计日志
func main() {
	configPath := flag.String("config", "./config", "配置文件或所在目录")
	metricsAddr := flag.String("metrics-addr", ":9102", "Prometheus 指标监听地址，为空则不启动")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	log := logger.MustInit(&cfg.Log)
	defer log.Sync()

	db := mysql.Init(&cfg.MySQL)
	logSvc := service.NewLogService(mysql.NewAuditLogRepository(db))

	sub, err := mq.NewSubscriber(&cfg.MQ)
	if err != nil {
		log.Fatal("init subscriber failed", zap.Error(err))
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(monitoring.NewRegistry(service.GetMonitor()), promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	log.Info("order worker started, waiting for messages...",
		zap.String("driver", cfg.MQ.Driver),
		zap.String("queue", cfg.MQ.Queue))

	if err := sub.Consume(ctx, counted(logSvc.HandleOrderEvent)); err != nil {
		log.Fatal("consume stopped", zap.Error(err))
	}
	log.Info("order worker stopped", zap.Any("stats", service.GetMonitor().GetStats()))
}

// counted 在处理结果上记录 worker 计数
func counted(h mq.Handler) mq.Handler {
	return func(ctx context.Context, body []byte) error {
		err := h(ctx, body)
		if err != nil {
			service.GetMonitor().RecordWorkerFailed()
			return err
		}
		service.GetMonitor().RecordWorkerProcessed()
		return nil
	}
}
