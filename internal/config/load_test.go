package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	d := DefaultConfig()
	assert.Equal(t, d.Server.Port, cfg.Server.Port)
	assert.Equal(t, d.AdminServer.Port, cfg.AdminServer.Port)
	assert.Equal(t, d.MQ.Queue, cfg.MQ.Queue)
	assert.Equal(t, d.Auth.Nodes, cfg.Auth.Nodes)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	body := []byte("server:\n  port: 9090\nmq:\n  driver: kafka\njwt:\n  secret: from-file\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0o644))

	t.Setenv("BOOKSTORE_JWT_SECRET", "from-env")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "kafka", cfg.MQ.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	// 文件未覆盖的字段保持默认值
	assert.Equal(t, 8081, cfg.AdminServer.Port)
}

func TestLoadMissingDirFallsBack(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().MySQL.DSN, cfg.MySQL.DSN)
}

func TestServerAddrEmptyHost(t *testing.T) {
	s := ServerConfig{Port: 1234}
	assert.Equal(t, "0.0.0.0:1234", s.Addr())
}
