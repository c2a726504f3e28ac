// Package config 负责加载应用配置
// 配置来源依次为默认值、配置文件和 PDFTOOLKIT_ 前缀的环境变量
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
)

// EnvPrefix 环境变量前缀，例如 PDFTOOLKIT_SERVER_HTTP_PORT
const EnvPrefix = "PDFTOOLKIT"

// Config 应用全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	File     FileConfig     `mapstructure:"file" yaml:"file"`
	Log      logger.Config  `mapstructure:"log" yaml:"log"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Tools    ToolsConfig    `mapstructure:"tools" yaml:"tools"`
	I18n     I18nConfig     `mapstructure:"i18n" yaml:"i18n"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	HTTPPort     int    `mapstructure:"http_port" yaml:"http_port"`         // HTTP端口
	HTTPSPort    int    `mapstructure:"https_port" yaml:"https_port"`       // HTTPS端口
	EnableHTTPS  bool   `mapstructure:"enable_https" yaml:"enable_https"`   // 是否启用HTTPS
	EnableHTTP2  bool   `mapstructure:"enable_http2" yaml:"enable_http2"`   // 是否启用HTTP/2（仅HTTPS下生效）
	TLSCertFile  string `mapstructure:"tls_cert_file" yaml:"tls_cert_file"` // 证书文件路径
	TLSKeyFile   string `mapstructure:"tls_key_file" yaml:"tls_key_file"`   // 私钥文件路径
	ReadTimeout  int    `mapstructure:"read_timeout" yaml:"read_timeout"`   // 读超时（秒）
	WriteTimeout int    `mapstructure:"write_timeout" yaml:"write_timeout"` // 写超时（秒）
	Mode         string `mapstructure:"mode" yaml:"mode"`                   // gin运行模式：debug、release、test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" yaml:"driver"`                       // sqlite 或 postgres
	DSN             string `mapstructure:"dsn" yaml:"dsn"`                             // 数据源
	MaxIdleConns    int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`       // 最大空闲连接数
	MaxOpenConns    int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`       // 最大打开连接数
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"` // 连接最大存活时间（秒）
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`                 // gorm日志级别：silent、error、warn、info
}

// FileConfig 用户文件存储配置
type FileConfig struct {
	StoragePath       string   `mapstructure:"storage_path" yaml:"storage_path"`             // 本地存储根目录
	MaxFileSize       int64    `mapstructure:"max_file_size" yaml:"max_file_size"`           // 单文件最大字节数
	AllowedExtensions []string `mapstructure:"allowed_extensions" yaml:"allowed_extensions"` // 允许的扩展名，"*" 表示不限
}

// AuthConfig 身份令牌配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	AdminPrincipals []string      `mapstructure:"admin_principals" yaml:"admin_principals"` // 固定管理员身份列表
}

// ToolsConfig 转换工具限制
type ToolsConfig struct {
	MaxUploadSize           int64   `mapstructure:"max_upload_size" yaml:"max_upload_size"` // 单次请求上传总字节数上限
	MaxFiles                int     `mapstructure:"max_files" yaml:"max_files"`             // 单次请求最多文件数
	DefaultExcelOrientation string  `mapstructure:"default_excel_orientation" yaml:"default_excel_orientation"`
	DefaultImageMarginMM    float64 `mapstructure:"default_image_margin_mm" yaml:"default_image_margin_mm"`
}

// I18nConfig 多语言配置
type I18nConfig struct {
	DefaultLanguage string `mapstructure:"default_language" yaml:"default_language"`
}

// setDefaults 注册所有配置项的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.https_port", 8443)
	v.SetDefault("server.enable_https", false)
	v.SetDefault("server.enable_http2", true)
	v.SetDefault("server.tls_cert_file", "certs/server.crt")
	v.SetDefault("server.tls_key_file", "certs/server.key")
	v.SetDefault("server.read_timeout", 60)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/pdftoolkit.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("file.storage_path", "data/files")
	v.SetDefault("file.max_file_size", 100*1024*1024)
	v.SetDefault("file.allowed_extensions", []string{"*"})

	d := logger.DefaultConfig()
	v.SetDefault("log.level", d.Level)
	v.SetDefault("log.format", d.Format)
	v.SetDefault("log.output", d.Output)
	v.SetDefault("log.file_path", d.FilePath)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.admin_principals", []string{})

	v.SetDefault("tools.max_upload_size", 200*1024*1024)
	v.SetDefault("tools.max_files", 50)
	v.SetDefault("tools.default_excel_orientation", "landscape")
	v.SetDefault("tools.default_image_margin_mm", 10.0)

	v.SetDefault("i18n.default_language", "en-US")
}

// newViper 创建带默认值和环境变量绑定的viper实例
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load 从默认搜索路径加载配置
// 未找到配置文件时仅使用默认值和环境变量
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pdftoolkit"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

// LoadFrom 从指定文件加载配置
func LoadFrom(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MinJWTSecretLength debug、test 之外的模式要求的最短签名密钥
const MinJWTSecretLength = 32

// 示例配置中出现过的占位密钥，任何非调试模式都拒绝
var placeholderSecrets = map[string]bool{
	"change-me": true,
	"changeme":  true,
	"secret":    true,
}

func (c *Config) validateJWTSecret() error {
	secret := c.Auth.JWTSecret
	if secret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty (set it in the config file or via %s_AUTH_JWT_SECRET)", EnvPrefix)
	}
	switch c.Server.Mode {
	case "debug", "test":
		return nil
	}
	if placeholderSecrets[strings.ToLower(secret)] {
		return fmt.Errorf("auth.jwt_secret uses a placeholder value, generate a random secret")
	}
	if len(secret) < MinJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes outside debug/test mode", MinJWTSecretLength)
	}
	return nil
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.File.MaxFileSize <= 0 {
		return fmt.Errorf("file.max_file_size must be positive")
	}
	if c.Tools.MaxUploadSize <= 0 || c.Tools.MaxFiles <= 0 {
		return fmt.Errorf("tools limits must be positive")
	}
	switch c.Tools.DefaultExcelOrientation {
	case "portrait", "landscape":
	default:
		return fmt.Errorf("tools.default_excel_orientation must be portrait or landscape")
	}
	if c.Server.EnableHTTPS && (c.Server.TLSCertFile == "" || c.Server.TLSKeyFile == "") {
		return fmt.Errorf("tls_cert_file and tls_key_file are required when https is enabled")
	}
	return nil
}

// IsAdminPrincipal 判断身份是否在固定管理员列表中
func (c AuthConfig) IsAdminPrincipal(principal string) bool {
	for _, p := range c.AdminPrincipals {
		if p == principal {
			return true
		}
	}
	return false
}
