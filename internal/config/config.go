package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName            string `mapstructure:"app_name"`
	Env                string `mapstructure:"app_env"`
	LogLevel           string `mapstructure:"log_level"`
	HTTPAddr           string `mapstructure:"http_addr"`
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	SourcesFile        string `mapstructure:"sources_file"`
	PublishersFile     string `mapstructure:"publishers_file"`
	UserAgent          string `mapstructure:"user_agent"`
	MaxMarkupBytes     int64  `mapstructure:"max_markup_bytes"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`
	DatabaseURL string `mapstructure:"database_url"`

	RequestTimeoutMs       int64 `mapstructure:"request_timeout_ms"`
	ScrapeTimeoutMs        int64 `mapstructure:"scrape_timeout_ms"`
	SynthTimeoutMs         int64 `mapstructure:"synth_timeout_ms"`
	FetchHTTPTimeoutMs     int64 `mapstructure:"fetch_http_timeout_ms"`
	ShutdownTimeoutSeconds int64 `mapstructure:"shutdown_timeout_seconds"`

	RequestTimeout   time.Duration `mapstructure:"-"`
	ScrapeTimeout    time.Duration `mapstructure:"-"`
	SynthTimeout     time.Duration `mapstructure:"-"`
	FetchHTTPTimeout time.Duration `mapstructure:"-"`
	ShutdownTimeout  time.Duration `mapstructure:"-"`
}

// DefaultUserAgent is the browser-like client signature sent with article requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "samvad-wiki-quiz")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("sources_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("max_markup_bytes", int64(10<<20))
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/quiz.db")
	v.SetDefault("database_url", "")
	v.SetDefault("request_timeout_ms", 8000)
	v.SetDefault("scrape_timeout_ms", 6000)
	v.SetDefault("synth_timeout_ms", 2000)
	v.SetDefault("fetch_http_timeout_ms", 5000)
	v.SetDefault("shutdown_timeout_seconds", 10)
}

// finalize validates raw values and derives the duration fields.
func (c *Config) finalize() error {
	positive := []struct {
		name string
		val  int64
	}{
		{"request_timeout_ms", c.RequestTimeoutMs},
		{"scrape_timeout_ms", c.ScrapeTimeoutMs},
		{"synth_timeout_ms", c.SynthTimeoutMs},
		{"fetch_http_timeout_ms", c.FetchHTTPTimeoutMs},
		{"shutdown_timeout_seconds", c.ShutdownTimeoutSeconds},
		{"max_markup_bytes", c.MaxMarkupBytes},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return fmt.Errorf("invalid %s (must be positive)", p.name)
		}
	}
	if c.ScrapeTimeoutMs >= c.RequestTimeoutMs {
		return fmt.Errorf("invalid scrape_timeout_ms (must be shorter than request_timeout_ms)")
	}

	c.RequestTimeout = time.Duration(c.RequestTimeoutMs) * time.Millisecond
	c.ScrapeTimeout = time.Duration(c.ScrapeTimeoutMs) * time.Millisecond
	c.SynthTimeout = time.Duration(c.SynthTimeoutMs) * time.Millisecond
	c.FetchHTTPTimeout = time.Duration(c.FetchHTTPTimeoutMs) * time.Millisecond
	c.ShutdownTimeout = time.Duration(c.ShutdownTimeoutSeconds) * time.Second

	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = DefaultUserAgent
	}
	return nil
}

// AllowedOrigins splits the comma separated CORS origin list.
func (c *Config) AllowedOrigins() []string {
	if c == nil {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
