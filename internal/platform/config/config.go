package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode        string     `mapstructure:"mode"`
	Address     string     `mapstructure:"address"`
	Cors        CorsConfig `mapstructure:"cors"`
	MediaRoot   string     `mapstructure:"mediaRoot"`
	MediaURL    string     `mapstructure:"mediaURL"`
	MaxUploadMB int64      `mapstructure:"maxUploadMB"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Sqlite   SqliteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// SqliteConfig 定义了SQLite的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig 定义了PostgreSQL的配置
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 定义了Redis的配置
// Redis 只服务于AI调用配额，未启用时配额检查直接放行。
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 定义了JWT签发相关的配置
type AuthConfig struct {
	SecretKey  string        `mapstructure:"secretKey"`
	AccessTTL  time.Duration `mapstructure:"accessTTL"`
	RefreshTTL time.Duration `mapstructure:"refreshTTL"`
}

// AgentConfig 定义了外部AI代理的配置
type AgentConfig struct {
	Provider       string        `mapstructure:"provider"`
	BaseURL        string        `mapstructure:"baseURL"`
	APIKey         string        `mapstructure:"apiKey"`
	Model          string        `mapstructure:"model"`
	RPM            int           `mapstructure:"rpm"`
	Burst          int           `mapstructure:"burst"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Country        string        `mapstructure:"country"`
	RegulationHint string        `mapstructure:"regulationHint"`
}

// QuotaConfig 定义了每个用户的AI调用配额
type QuotaConfig struct {
	AgentCallsPerHour int `mapstructure:"agentCallsPerHour"`
}

// LogConfig 定义了日志相关的配置
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	ProviderOpenAI   = "openai"
	ProviderDisabled = "disabled"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.mediaRoot", "./media")
	v.SetDefault("server.mediaURL", "/media")
	v.SetDefault("server.maxUploadMB", 10)

	v.SetDefault("database.driver", DriverSqlite)
	v.SetDefault("database.sqlite.path", "plantify.db")
	v.SetDefault("database.redis.enabled", false)
	v.SetDefault("database.redis.address", "localhost:6379")

	v.SetDefault("auth.accessTTL", time.Hour)
	v.SetDefault("auth.refreshTTL", 7*24*time.Hour)

	v.SetDefault("agent.provider", ProviderDisabled)
	v.SetDefault("agent.baseURL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("agent.model", "gemini-2.0-flash")
	v.SetDefault("agent.rpm", 30)
	v.SetDefault("agent.burst", 2)
	v.SetDefault("agent.timeout", 90*time.Second)
	v.SetDefault("agent.country", "Indonesia")
	v.SetDefault("agent.regulationHint", "Ikuti regulasi Kementan setempat.")

	v.SetDefault("quota.agentCallsPerHour", 20)

	v.SetDefault("log.level", "info")
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件，找不到时只使用默认值和环境变量
func LoadConfig(paths ...string) (*Config, error) {
	// .env 只是可选的便利手段
	if err := godotenv.Load(); err != nil {
		logrus.Debug("未找到 .env 文件，使用系统环境变量")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=:9090
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal 只认识显式绑定过的键，这里把嵌套键都绑定一次
	for _, key := range []string{
		"server.mode", "server.address", "server.mediaRoot", "server.mediaURL",
		"database.driver", "database.sqlite.path", "database.postgres.dsn",
		"database.redis.enabled", "database.redis.address", "database.redis.password",
		"auth.secretKey", "agent.provider", "agent.model", "agent.baseURL",
		"log.level", "log.file",
	} {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("agent.apiKey", "AGENT_APIKEY", "GEMINI_API_KEY")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}

// Validate 检查互相依赖的配置项
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSqlite:
	case DriverPostgres:
		if c.Database.Postgres.DSN == "" {
			return errors.New("database.driver=postgres 需要 database.postgres.dsn")
		}
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}

	switch c.Agent.Provider {
	case ProviderDisabled:
	case ProviderOpenAI:
		if c.Agent.APIKey == "" {
			return errors.New("agent.provider=openai 需要 agent.apiKey (或 GEMINI_API_KEY)")
		}
	default:
		return fmt.Errorf("不支持的AI代理: %s", c.Agent.Provider)
	}

	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("auth.accessTTL 和 auth.refreshTTL 必须为正数")
	}
	return nil
}
