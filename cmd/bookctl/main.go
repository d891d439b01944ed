package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/bookstore/internal/config"
	"github.com/example/bookstore/internal/logger"
	"github.com/example/bookstore/internal/repository/mysql"
	"github.com/example/bookstore/internal/server"
)

// env 各子命令共享的运行环境，在 PersistentPreRunE 中初始化
type env struct {
	configPath string
	sqlitePath string

	cfg  *config.Config
	db   *gorm.DB
	svcs *server.Services
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:          "bookctl",
		Short:        "书店运维命令：迁移、初始化数据、报表与库存审计",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init()
		},
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "./config", "配置文件或所在目录")
	root.PersistentFlags().StringVar(&e.sqlitePath, "sqlite", "", "使用本地 SQLite 文件代替 MySQL")

	root.AddCommand(
		newMigrateCmd(e),
		newSeedCmd(e),
		newPromoteCmd(e),
		newCreateAdminCmd(e),
		newReportCmd(e),
		newStockAuditCmd(e),
	)
	return root
}

func (e *env) init() error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	if _, err := logger.Init(&cfg.Log); err != nil {
		return err
	}
	e.cfg = cfg

	if e.sqlitePath != "" {
		db, err := gorm.Open(sqlite.Open(e.sqlitePath), mysql.GormConfig())
		if err != nil {
			return fmt.Errorf("open sqlite %s: %w", e.sqlitePath, err)
		}
		if err := mysql.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		e.db = db
	} else {
		e.db = mysql.Init(&cfg.MySQL)
	}

	// 运维命令不发事件也不需要 token 缓存
	e.svcs = server.NewServices(cfg, e.db, nil, nil)
	zap.L().Debug("bookctl ready", zap.Bool("sqlite", e.sqlitePath != ""))
	return nil
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "迁移全部表结构",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mysql.Migrate(e.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrate done")
			return nil
		},
	}
}
