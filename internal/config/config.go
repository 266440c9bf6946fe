package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Version is reported by the health endpoint and the page footer.
const Version = "2.0.0"

// FileEnv names the environment variable holding an optional YAML config
// file. Values in the file override the environment.
const FileEnv = "CONFIG_FILE"

type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Logger    LoggerConfig    `yaml:"logger" envconfig:"LOG"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Tracing   TracingConfig   `yaml:"tracing" envconfig:"TRACING"`
	Metrics   MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
	GRPC      GRPCConfig      `yaml:"grpc" envconfig:"GRPC"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"localhost"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8084" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

type DataConfig struct {
	CSVFile        string `yaml:"csv_file" envconfig:"CSV_FILE" default:"ventas_data.csv" validate:"required"`
	ReloadOnChange bool   `yaml:"reload_on_change" envconfig:"RELOAD_ON_CHANGE" default:"false"`
	ParseWorkers   int    `yaml:"parse_workers" envconfig:"PARSE_WORKERS" default:"10" validate:"min=1,max=256"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `yaml:"rate_limit_enabled" envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS    int      `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int      `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"10"`
	AllowedOrigins  []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8084"`
	TrustedProxies  []string `yaml:"trusted_proxies" envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Exporter    string  `yaml:"exporter" envconfig:"EXPORTER" default:"stdout" validate:"oneof=stdout none"`
	ServiceName string  `yaml:"service_name" envconfig:"SERVICE_NAME" default:"sales-dashboard" validate:"required"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1" validate:"gte=0,lte=1"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	Path    string `yaml:"path" envconfig:"PATH" default:"/metrics" validate:"startswith=/"`
}

type GRPCConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Port    int  `yaml:"port" envconfig:"PORT" default:"9094" validate:"min=1,max=65535"`
}

type DashboardConfig struct {
	Title            string `yaml:"title" envconfig:"TITLE" default:"Sales Analytics Pro" validate:"required"`
	Subtitle         string `yaml:"subtitle" envconfig:"SUBTITLE" default:"Business Intelligence Dashboard"`
	TableRows        int    `yaml:"table_rows" envconfig:"TABLE_ROWS" default:"50" validate:"min=1,max=1000"`
	AchievementLimit int    `yaml:"achievement_limit" envconfig:"ACHIEVEMENT_LIMIT" default:"3" validate:"min=0,max=50"`
}

// Load reads defaults and environment variables, then the YAML file named by
// CONFIG_FILE when set.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("load config from file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, c)
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if strings.TrimSpace(c.Data.CSVFile) == "" {
		return fmt.Errorf("CSV file path cannot be empty")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.GRPC.Enabled && c.GRPC.Port == c.Server.Port {
		return fmt.Errorf("grpc port %d collides with the http port", c.GRPC.Port)
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.GRPC.Port)
}
