package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"heritage_tree/internal/layout"
	"heritage_tree/internal/repository"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "HERITAGE"

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 端口
	Mode string `mapstructure:"mode"` // gin 模式：debug / release / test
}

// StorageConfig 存储配置
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`         // memory / file / sqlite / postgres / mysql / redis / badger
	Path          string `mapstructure:"path"`           // 文件、sqlite、badger 路径
	DSN           string `mapstructure:"dsn"`            // postgres / mysql 连接串
	RedisAddr     string `mapstructure:"redis_addr"`     // Redis 地址
	RedisPassword string `mapstructure:"redis_password"` // Redis 密码
	RedisDB       int    `mapstructure:"redis_db"`       // Redis 库号
}

// AuthSection 认证配置
type AuthSection struct {
	JWTSecret string        `mapstructure:"jwt_secret"` // JWT密钥
	AdminKey  string        `mapstructure:"admin_key"`  // 管理密钥
	TokenTTL  time.Duration `mapstructure:"token_ttl"`  // Token有效期
}

// AISection AI 配置
type AISection struct {
	APIKey      string  `mapstructure:"api_key"`     // API 密钥
	BaseURL     string  `mapstructure:"base_url"`    // 接口地址
	Model       string  `mapstructure:"model"`       // 模型
	Temperature float32 `mapstructure:"temperature"` // 温度
	TopP        float32 `mapstructure:"top_p"`       // top_p
}

// ViewSection 视图配置
type ViewSection struct {
	MinScale     float64 `mapstructure:"min_scale"`     // 最小缩放
	MaxScale     float64 `mapstructure:"max_scale"`     // 最大缩放
	InitialScale float64 `mapstructure:"initial_scale"` // 初始缩放
	TopOffset    float64 `mapstructure:"top_offset"`    // 根节点距顶部距离
}

// UploadSection 上传配置
type UploadSection struct {
	Dir           string `mapstructure:"dir"`             // 上传目录
	MaxSize       int64  `mapstructure:"max_size"`        // 单个文件最大字节数
	MaxImportSize int64  `mapstructure:"max_import_size"` // 导入请求体最大字节数
}

// RateLimitSection 限流配置
type RateLimitSection struct {
	RPS   float64 `mapstructure:"rps"`   // 每秒请求数
	Burst int     `mapstructure:"burst"` // 突发容量
}

// LogSection 日志配置
type LogSection struct {
	Level  string `mapstructure:"level"`  // 日志级别
	Format string `mapstructure:"format"` // text / json
	File   string `mapstructure:"file"`   // 日志文件，为空时只输出到标准输出
}

// Config 全部运行配置。
// 来源依次为 heritage.yaml、HERITAGE_* 环境变量和命令行参数。
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Auth      AuthSection      `mapstructure:"auth"`
	AI        AISection        `mapstructure:"ai"`
	Publish   PublishTarget    `mapstructure:"publish"`
	View      ViewSection      `mapstructure:"view"`
	Upload    UploadSection    `mapstructure:"upload"`
	RateLimit RateLimitSection `mapstructure:"rate_limit"`
	Log       LogSection       `mapstructure:"log"`
}

// SetDefaults 写入默认值
func SetDefaults(v *viper.Viper) {
	view := layout.DefaultViewConfig()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("storage.driver", repository.DriverFile)
	v.SetDefault("storage.path", "data/heritage_people.json")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_key", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.top_p", 0.9)
	v.SetDefault("publish.host", "")
	v.SetDefault("publish.owner", "")
	v.SetDefault("publish.repo", "")
	v.SetDefault("publish.branch", "main")
	v.SetDefault("publish.path", "data/heritage_people.json")
	v.SetDefault("publish.token", "")
	v.SetDefault("view.min_scale", view.MinScale)
	v.SetDefault("view.max_scale", view.MaxScale)
	v.SetDefault("view.initial_scale", view.InitialScale)
	v.SetDefault("view.top_offset", view.TopOffset)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size", 5<<20)
	v.SetDefault("upload.max_import_size", 10<<20)
	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 3)
	v.SetDefault("log.level", string(LogLevelInfo))
	v.SetDefault("log.format", string(LogFormatText))
	v.SetDefault("log.file", "")
}

// BindEnv 绑定 HERITAGE_* 环境变量，嵌套键用下划线连接
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadConfig 读取配置并填充默认值
func LoadConfig(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	BindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewError(ErrConfig, "failed to decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewError(ErrConfig, fmt.Sprintf("invalid server port %d", c.Server.Port), nil)
	}
	if c.View.MinScale <= 0 || c.View.MinScale > c.View.MaxScale {
		return NewError(ErrConfig, fmt.Sprintf("invalid zoom range [%g, %g]", c.View.MinScale, c.View.MaxScale), nil)
	}
	switch c.Storage.Driver {
	case repository.DriverMemory, repository.DriverFile, repository.DriverSQLite, repository.DriverBadger, repository.DriverRedis:
	case repository.DriverPostgres, repository.DriverMySQL:
		if c.Storage.DSN == "" {
			return NewError(ErrConfig, "storage.dsn is required for "+c.Storage.Driver, nil)
		}
	default:
		return NewError(ErrConfig, "unsupported storage driver: "+c.Storage.Driver, nil)
	}
	return nil
}

// StorageOptions 存储选项
func (c *Config) StorageOptions() repository.Options {
	return repository.Options{
		Driver:        c.Storage.Driver,
		Path:          c.Storage.Path,
		DSN:           c.Storage.DSN,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
		Debug:         LogLevel(c.Log.Level) == LogLevelDebug,
	}
}

// LoggerConfig 日志配置
func (c *Config) LoggerConfig() *LoggerConfig {
	cfg := DefaultLoggerConfig()
	cfg.Level = LogLevel(c.Log.Level)
	cfg.Format = LogFormat(c.Log.Format)
	if c.Log.File != "" {
		cfg.FilePath = c.Log.File
		cfg.Output = append(cfg.Output, "file")
	}
	return cfg
}

// AuthConfig 认证配置
func (c *Config) AuthConfig() *AuthConfig {
	return &AuthConfig{
		SecretKey:     c.Auth.JWTSecret,
		TokenDuration: c.Auth.TokenTTL,
		AdminKey:      c.Auth.AdminKey,
	}
}

// AIConfig AI 配置
func (c *Config) AIConfig() *AIConfig {
	return &AIConfig{
		APIKey:      c.AI.APIKey,
		BaseURL:     c.AI.BaseURL,
		Model:       c.AI.Model,
		Temperature: c.AI.Temperature,
		TopP:        c.AI.TopP,
	}
}

// ViewConfig 视图配置
func (c *Config) ViewConfig() layout.ViewConfig {
	return layout.ViewConfig{
		MinScale:     c.View.MinScale,
		MaxScale:     c.View.MaxScale,
		InitialScale: c.View.InitialScale,
		TopOffset:    c.View.TopOffset,
	}
}
