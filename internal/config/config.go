package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/marketmap-geocode/pkg/geocode"
)

// Config holds the full application configuration.
type Config struct {
	Census    CensusConfig    `yaml:"census" mapstructure:"census"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CensusConfig configures the Census batch geocoder.
type CensusConfig struct {
	BatchURL   string        `yaml:"batch_url" mapstructure:"batch_url"`
	Benchmark  string        `yaml:"benchmark" mapstructure:"benchmark"`
	ReturnType string        `yaml:"return_type" mapstructure:"return_type"`
	Delay      time.Duration `yaml:"delay" mapstructure:"delay"`
}

// NominatimConfig configures the Nominatim search fallback.
type NominatimConfig struct {
	SearchURL string        `yaml:"search_url" mapstructure:"search_url"`
	Delay     time.Duration `yaml:"delay" mapstructure:"delay"`
}

// HTTPConfig holds settings shared by both geocoding services.
type HTTPConfig struct {
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
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
	v.SetEnvPrefix("MARKETMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	def := geocode.DefaultConfig()
	v.SetDefault("census.batch_url", def.BatchURL)
	v.SetDefault("census.benchmark", def.Benchmark)
	v.SetDefault("census.return_type", def.ReturnType)
	v.SetDefault("census.delay", def.BatchDelay)
	v.SetDefault("nominatim.search_url", def.SearchURL)
	v.SetDefault("nominatim.delay", def.SearchDelay)
	v.SetDefault("http.user_agent", def.UserAgent)
	v.SetDefault("http.timeout", 5*time.Minute)
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

// Validate checks that the geocoding settings are usable.
func (c *Config) Validate() error {
	if c.Census.BatchURL == "" {
		return eris.New("config: census.batch_url is required")
	}
	if c.Nominatim.SearchURL == "" {
		return eris.New("config: nominatim.search_url is required")
	}
	if c.Census.Delay < 0 || c.Nominatim.Delay < 0 {
		return eris.Errorf("config: delays must not be negative (census=%s, nominatim=%s)", c.Census.Delay, c.Nominatim.Delay)
	}
	if c.HTTP.Timeout <= 0 {
		return eris.Errorf("config: http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	return nil
}

// Geocode projects the service settings onto a geocode.Config.
func (c *Config) Geocode() geocode.Config {
	return geocode.Config{
		BatchURL:    c.Census.BatchURL,
		Benchmark:   c.Census.Benchmark,
		ReturnType:  c.Census.ReturnType,
		BatchDelay:  c.Census.Delay,
		SearchURL:   c.Nominatim.SearchURL,
		SearchDelay: c.Nominatim.Delay,
		UserAgent:   c.HTTP.UserAgent,
	}
}

// HTTPClient returns the client used for all geocoding requests.
func (c *Config) HTTPClient() *http.Client {
	return &http.Client{Timeout: c.HTTP.Timeout}
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
