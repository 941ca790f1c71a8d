package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/heritage-cli/internal/arcgis"
	"github.com/sells-group/heritage-cli/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	ArcGIS  ArcGISConfig  `yaml:"arcgis" mapstructure:"arcgis"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SearchConfig bounds a single search.
type SearchConfig struct {
	DefaultRadiusKm float64 `yaml:"default_radius_km" mapstructure:"default_radius_km"`
	MaxRadiusKm     float64 `yaml:"max_radius_km" mapstructure:"max_radius_km"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Concurrency     int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// Timeout returns the overall search deadline.
func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ArcGISConfig configures the endpoint client.
type ArcGISConfig struct {
	MaxRecords    int              `yaml:"max_records" mapstructure:"max_records"`
	TimeoutSecs   int              `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimitRPS  float64          `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	UserAgent     string           `yaml:"user_agent" mapstructure:"user_agent"`
	Endpoints     []EndpointConfig `yaml:"endpoints" mapstructure:"endpoints"`
	EndpointsFile string           `yaml:"endpoints_file" mapstructure:"endpoints_file"`
	Retry         RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Circuit       CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
}

// EndpointConfig is one configured endpoint.
type EndpointConfig struct {
	Name         string `yaml:"name" mapstructure:"name"`
	URL          string `yaml:"url" mapstructure:"url"`
	CategoryHint string `yaml:"category_hint" mapstructure:"category_hint"`
}

// RetryConfig configures retries of failed endpoint queries.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CircuitConfig configures per-endpoint circuit breakers. A zero
// failure threshold disables them.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// GeocodeConfig configures the postcode geocoder.
type GeocodeConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
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
	v.SetEnvPrefix("HERITAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("search.default_radius_km", 20.0)
	v.SetDefault("search.max_radius_km", 50.0)
	v.SetDefault("search.timeout_secs", 30)
	v.SetDefault("search.concurrency", 5)
	v.SetDefault("arcgis.max_records", arcgis.DefaultMaxRecords)
	v.SetDefault("arcgis.timeout_secs", 20)
	v.SetDefault("arcgis.rate_limit_rps", 10.0)
	v.SetDefault("arcgis.user_agent", "heritage-cli/1.0")
	v.SetDefault("arcgis.endpoints_file", "")
	v.SetDefault("arcgis.retry.max_attempts", 1)
	v.SetDefault("arcgis.retry.initial_backoff_ms", 500)
	v.SetDefault("arcgis.retry.max_backoff_ms", 5000)
	v.SetDefault("arcgis.circuit.failure_threshold", 0)
	v.SetDefault("arcgis.circuit.reset_timeout_secs", 60)
	v.SetDefault("geocode.base_url", "https://api.postcodes.io/postcodes")
	v.SetDefault("geocode.rate_limit_rps", 10.0)
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

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

// Validate checks the settings required by the given command mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	s := c.Search
	if s.MaxRadiusKm <= 0 {
		problems = append(problems, "search.max_radius_km must be > 0")
	}
	if s.DefaultRadiusKm <= 0 || s.DefaultRadiusKm > s.MaxRadiusKm {
		problems = append(problems, "search.default_radius_km must be > 0 and <= search.max_radius_km")
	}
	if s.TimeoutSecs <= 0 {
		problems = append(problems, "search.timeout_secs must be > 0")
	}
	if s.Concurrency < 1 || s.Concurrency > 20 {
		problems = append(problems, "search.concurrency must be between 1 and 20")
	}
	if c.ArcGIS.MaxRecords < 1 || c.ArcGIS.MaxRecords > arcgis.DefaultMaxRecords {
		problems = append(problems, "arcgis.max_records must be between 1 and 2000")
	}
	if c.ArcGIS.Retry.MaxAttempts < 1 {
		problems = append(problems, "arcgis.retry.max_attempts must be >= 1")
	}

	switch mode {
	case "search", "assess", "endpoints":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// ResolveEndpoints returns the endpoint set: the endpoints file when set,
// else the inline list, else the Historic England defaults.
func (c ArcGISConfig) ResolveEndpoints() ([]arcgis.Endpoint, error) {
	if c.EndpointsFile != "" {
		return arcgis.LoadEndpoints(c.EndpointsFile)
	}
	if len(c.Endpoints) == 0 {
		return arcgis.DefaultEndpoints(), nil
	}
	eps := make([]arcgis.Endpoint, 0, len(c.Endpoints))
	for _, e := range c.Endpoints {
		eps = append(eps, arcgis.Endpoint{Name: e.Name, URL: e.URL, CategoryHint: e.CategoryHint})
	}
	if err := arcgis.ValidateEndpoints(eps); err != nil {
		return nil, eris.Wrap(err, "config: arcgis.endpoints")
	}
	return eps, nil
}

// ClientOptions translates the settings into arcgis client options,
// excluding the transport.
func (c ArcGISConfig) ClientOptions() []arcgis.Option {
	opts := []arcgis.Option{arcgis.WithMaxRecords(c.MaxRecords)}
	if c.Retry.MaxAttempts > 1 {
		opts = append(opts, arcgis.WithRetry(resilience.FromRetryConfig(
			c.Retry.MaxAttempts, c.Retry.InitialBackoffMs, c.Retry.MaxBackoffMs,
		)))
	}
	if cb, ok := resilience.FromCircuitConfig(c.Circuit.FailureThreshold, c.Circuit.ResetTimeoutSecs); ok {
		opts = append(opts, arcgis.WithCircuitBreaker(cb))
	}
	return opts
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
