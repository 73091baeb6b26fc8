package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	ABS    ABSConfig    `yaml:"abs" mapstructure:"abs"`
	Geo    GeoConfig    `yaml:"geo" mapstructure:"geo"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ABSConfig configures the ABS Data API client.
type ABSConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst   int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// GeoConfig configures the geography datasets and their disk cache.
type GeoConfig struct {
	// DataDir overrides the embedded baseline datasets with files on disk.
	// Empty means use the snapshot compiled into the binary.
	DataDir         string `yaml:"data_dir" mapstructure:"data_dir"`
	CacheDir        string `yaml:"cache_dir" mapstructure:"cache_dir"`
	MaxAgeDays      int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	ConcordanceFile string `yaml:"concordance_file" mapstructure:"concordance_file"`
	BoundaryFile    string `yaml:"boundary_file" mapstructure:"boundary_file"`
}

// ServerConfig configures the tool server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("ABS_INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("abs.base_url", "https://data.api.abs.gov.au/rest")
	v.SetDefault("abs.user_agent", "abs-insights/1.0")
	v.SetDefault("abs.timeout_secs", 30)
	v.SetDefault("abs.max_retries", 3)
	v.SetDefault("abs.rate_per_sec", 5)
	v.SetDefault("abs.rate_burst", 5)
	v.SetDefault("geo.data_dir", "")
	v.SetDefault("geo.cache_dir", "")
	v.SetDefault("geo.max_age_days", 30)
	v.SetDefault("geo.concordance_file", "postcode_sa2.csv")
	v.SetDefault("geo.boundary_file", "sa2_boundaries.geojson")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
