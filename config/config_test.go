package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 9090
database:
  driver: sqlite
  dsn: ":memory:"
auth:
  jwt_secret: 0123456789abcdef0123456789abcdef
  token_ttl: 2h
  admin_principals: ["alice"]
tools:
  default_excel_orientation: portrait
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.IsAdminPrincipal("alice"))
	assert.False(t, cfg.Auth.IsAdminPrincipal("bob"))
	assert.Equal(t, "portrait", cfg.Tools.DefaultExcelOrientation)
	// 未配置的项使用默认值
	assert.Equal(t, int64(100*1024*1024), cfg.File.MaxFileSize)
	assert.Equal(t, []string{"*"}, cfg.File.AllowedExtensions)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PDFTOOLKIT_SERVER_HTTP_PORT", "7070")
	t.Setenv("PDFTOOLKIT_DATABASE_DRIVER", "postgres")
	t.Setenv("PDFTOOLKIT_DATABASE_DSN", "host=localhost user=pdf dbname=pdf")
	t.Setenv("PDFTOOLKIT_AUTH_JWT_SECRET", "env-secret-env-secret-env-secret-0")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.HTTPPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "env-secret-env-secret-env-secret-0", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite", DSN: "x.db"},
			File:     FileConfig{MaxFileSize: 1},
			Auth:     AuthConfig{JWTSecret: strings.Repeat("k", MinJWTSecretLength), TokenTTL: time.Hour},
			Tools:    ToolsConfig{MaxUploadSize: 1, MaxFiles: 1, DefaultExcelOrientation: "landscape"},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"未知驱动":    func(c *Config) { c.Database.Driver = "mysql" },
		"空密钥":     func(c *Config) { c.Auth.JWTSecret = "" },
		"占位密钥":    func(c *Config) { c.Auth.JWTSecret = "change-me" },
		"短密钥":     func(c *Config) { c.Auth.JWTSecret = "short-secret" },
		"调试模式空密钥": func(c *Config) { c.Server.Mode = "debug"; c.Auth.JWTSecret = "" },
		"非法方向":    func(c *Config) { c.Tools.DefaultExcelOrientation = "diagonal" },
		"HTTPS无证书": func(c *Config) { c.Server.EnableHTTPS = true },
		"文件大小为零":  func(c *Config) { c.File.MaxFileSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestJWTSecretPolicy(t *testing.T) {
	t.Run("默认配置没有可用密钥", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: release\n"), 0o644))
		_, err := LoadFrom(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.jwt_secret")
	})

	t.Run("发布模式拒绝占位密钥", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: change-me\n"), 0o644))
		_, err := LoadFrom(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "placeholder")
	})

	t.Run("调试和测试模式允许短密钥", func(t *testing.T) {
		for _, mode := range []string{"debug", "test"} {
			path := filepath.Join(t.TempDir(), "config.yaml")
			content := "server:\n  mode: " + mode + "\nauth:\n  jwt_secret: change-me\n"
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			cfg, err := LoadFrom(path)
			require.NoError(t, err, mode)
			assert.Equal(t, "change-me", cfg.Auth.JWTSecret)
		}
	})
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
