package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"guestlink/pkg/logging"
)

// EnvPrefix 环境变量前缀，例如 GUESTLINK_DB_DSN
const EnvPrefix = "GUESTLINK"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	App       AppConfig       `mapstructure:"app"`
	DB        DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       logging.Config  `mapstructure:"log"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Shortener ShortenerConfig `mapstructure:"shortener"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	I18n      I18nConfig      `mapstructure:"i18n"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"` // gin 模式：debug、release、test
}

type AppConfig struct {
	// BaseURL 拼接 shortLink 用，为空时返回相对路径
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"` // 为空则不启用跳转缓存
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	MaxIdle     int           `mapstructure:"max_idle"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	NegativeTTL time.Duration `mapstructure:"negative_ttl"`
}

type MetadataConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	UserAgent    string        `mapstructure:"user_agent"`
}

type ShortenerConfig struct {
	MaxCodeAttempts int `mapstructure:"max_code_attempts"`
}

type JobsConfig struct {
	MetadataBackfill BackfillConfig `mapstructure:"metadata_backfill"`
}

type BackfillConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Spec      string `mapstructure:"spec"`
	BatchSize int    `mapstructure:"batch_size"`
}

type I18nConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.mode", "release")

	v.SetDefault("app.base_url", "")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "data/guestlink.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_idle", 10)
	v.SetDefault("redis.idle_timeout", 240*time.Second)
	v.SetDefault("redis.cache_ttl", time.Hour)
	v.SetDefault("redis.negative_ttl", 5*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/guestlink.log")
	v.SetDefault("log.console", true)

	v.SetDefault("metadata.timeout", 5*time.Second)
	v.SetDefault("metadata.max_body_bytes", 2<<20)
	v.SetDefault("metadata.user_agent", "guestlink-metadata/1.0")

	v.SetDefault("shortener.max_code_attempts", 5)

	v.SetDefault("jobs.metadata_backfill.enabled", false)
	v.SetDefault("jobs.metadata_backfill.spec", "*/10 * * * *")
	v.SetDefault("jobs.metadata_backfill.batch_size", 50)

	v.SetDefault("i18n.default_language", "en")
}

// Load 读取配置：path 可以是文件，也可以是包含 config.yaml 的目录
// 目录里找不到配置文件不算错误，仍使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if path == "" {
			path = "."
		}
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate 启动时校验配置，避免运行时才出错
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported db.driver %q (must be mysql or sqlite)", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn cannot be empty")
	}
	if c.Shortener.MaxCodeAttempts < 1 {
		return fmt.Errorf("shortener.max_code_attempts must be >= 1, got %d", c.Shortener.MaxCodeAttempts)
	}
	if c.Metadata.Timeout <= 0 {
		return errors.New("metadata.timeout must be positive")
	}
	if c.Jobs.MetadataBackfill.Enabled && c.Jobs.MetadataBackfill.BatchSize < 1 {
		return errors.New("jobs.metadata_backfill.batch_size must be positive")
	}
	c.App.BaseURL = strings.TrimRight(c.App.BaseURL, "/")
	return nil
}
