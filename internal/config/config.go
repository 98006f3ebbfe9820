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
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures workbook discovery and download.
type FetchConfig struct {
	PageURL     string `yaml:"page_url" mapstructure:"page_url"`
	DefaultURL  string `yaml:"default_url" mapstructure:"default_url"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// ExtractConfig configures workbook-to-snapshot extraction.
type ExtractConfig struct {
	SheetName string `yaml:"sheet_name" mapstructure:"sheet_name"`
	HeaderRow int    `yaml:"header_row" mapstructure:"header_row"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// GeocodeConfig configures the geocoding stage. UserAgent is the identifying
// string sent with every lookup, required by the Nominatim usage policy.
// When MapboxToken is set the Mapbox provider is used instead of Nominatim.
type GeocodeConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	MapboxToken string  `yaml:"mapbox_access_token" mapstructure:"mapbox_access_token"`
	DelaySecs   float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RenderConfig configures map rendering.
type RenderConfig struct {
	Output string `yaml:"output" mapstructure:"output"`
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
	v.SetEnvPrefix("ICEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("fetch.page_url", "https://www.ice.gov/detain/detention-management")
	v.SetDefault("fetch.default_url", "https://www.ice.gov/doclib/detention/FY25_detentionStats06202025.xlsx")
	v.SetDefault("fetch.output_dir", "data")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("extract.sheet_name", "Facilities FY25")
	v.SetDefault("extract.header_row", 7)
	v.SetDefault("extract.output_dir", "data")
	v.SetDefault("geocode.delay_secs", 2)
	v.SetDefault("geocode.timeout_secs", 15)
	v.SetDefault("render.output", "docs/index.html")
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
