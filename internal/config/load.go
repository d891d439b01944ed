package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load 从目录或文件加载配置，缺省字段使用 DefaultConfig，环境变量（BOOKSTORE_ 前缀）优先级最高。
// path 为空时只读取默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("BOOKSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".toml") {
			v.SetConfigFile(path)
		} else {
			v.SetConfigName("config")
			v.AddConfigPath(path)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// MustLoad 加载失败直接 panic，供 main 使用
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// setDefaults 逐项注册默认值，AutomaticEnv 只对已知 key 生效
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("adminserver.host", d.AdminServer.Host)
	v.SetDefault("adminserver.port", d.AdminServer.Port)
	v.SetDefault("mysql.dsn", d.MySQL.DSN)
	v.SetDefault("mysql.maxopenconns", d.MySQL.MaxOpenConns)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.poolsize", d.Redis.PoolSize)
	v.SetDefault("mq.driver", d.MQ.Driver)
	v.SetDefault("mq.url", d.MQ.URL)
	v.SetDefault("mq.brokers", d.MQ.Brokers)
	v.SetDefault("mq.queue", d.MQ.Queue)
	v.SetDefault("mq.groupid", d.MQ.GroupID)
	v.SetDefault("auth.nodes", d.Auth.Nodes)
	v.SetDefault("auth.hashreplicas", d.Auth.HashReplicas)
	v.SetDefault("auth.tokencachettlseconds", d.Auth.TokenCacheTTLSeconds)
	v.SetDefault("jwt.secret", d.JWT.Secret)
	v.SetDefault("jwt.expireminutes", d.JWT.ExpireMinutes)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
}
