package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the reference datasets on disk.
type DataConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	NullSentinel string `yaml:"null_sentinel" mapstructure:"null_sentinel"`
	Concurrency  int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins  []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS    float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	SessionTTLMins  int      `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// SessionTTL returns the session lifetime as a duration.
func (c ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMins) * time.Minute
}

// CacheConfig configures the aggregation result cache.
type CacheConfig struct {
	TTLSecs    int `yaml:"ttl_secs" mapstructure:"ttl_secs"`
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// TTL returns the cache lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// FetchConfig configures the dataset downloader.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GFC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.null_sentinel", ".")
	v.SetDefault("data.concurrency", 4)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 0)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("server.session_ttl_mins", 30)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("cache.ttl_secs", 600)
	v.SetDefault("cache.max_entries", 256)
	v.SetDefault("fetch.user_agent", "gfc-explorer/1.0")
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.max_retries", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields required by the given mode ("serve", "load",
// or "fetch") and reports every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimitRPS < 0 {
			problems = append(problems, "server.rate_limit_rps must be >= 0")
		}
		fallthrough
	case "load":
		if c.Data.Dir == "" {
			problems = append(problems, "data.dir is required")
		}
		if c.Data.Concurrency < 1 || c.Data.Concurrency > 16 {
			problems = append(problems, "data.concurrency must be between 1 and 16")
		}
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
		if c.Cache.TTLSecs < 0 {
			problems = append(problems, "cache.ttl_secs must be >= 0")
		}
	case "fetch":
		if c.Data.Dir == "" {
			problems = append(problems, "data.dir is required")
		}
		if c.Fetch.MaxRetries < 0 {
			problems = append(problems, "fetch.max_retries must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
