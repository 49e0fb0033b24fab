package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DirectionPlaceholder is replaced by the configured direction in EndpointTemplate.
const DirectionPlaceholder = "{direction}"

// Config holds the application configuration loaded from files, environment
// variables and command-line flags.
type Config struct {
	AppName          string        `mapstructure:"app_name"`
	LogLevel         string        `mapstructure:"log_level"`
	APIBaseURL       string        `mapstructure:"api_base_url"`
	APIToken         string        `mapstructure:"api_token" json:"-"`
	Direction        string        `mapstructure:"direction"`
	EndpointTemplate string        `mapstructure:"endpoint_template"`
	LayoutFile       string        `mapstructure:"layout_file"`
	PublishersFile   string        `mapstructure:"publishers_file"`
	HTTPAddr         string        `mapstructure:"http_addr"`
	PollSeconds      int64         `mapstructure:"poll_interval"`
	TimeoutSeconds   int64         `mapstructure:"request_timeout"`
	PollInterval     time.Duration `mapstructure:"-"`
	RequestTimeout   time.Duration `mapstructure:"-"`

	StorageType           string        `mapstructure:"storage_type"`
	BBoltPath             string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds     int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL            time.Duration `mapstructure:"-"`
	StorageCleanup        time.Duration `mapstructure:"-"`
}

// Endpoint renders EndpointTemplate for the configured direction.
func (c *Config) Endpoint() string {
	return strings.ReplaceAll(c.EndpointTemplate, DirectionPlaceholder, c.Direction)
}

// Defaults registers default values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("app_name", "departure-board")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "http://localhost:3005/api")
	v.SetDefault("api_token", "")
	v.SetDefault("direction", "gullmarsplan")
	v.SetDefault("endpoint_template", "/traffic/"+DirectionPlaceholder)
	v.SetDefault("layout_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("http_addr", "")
	v.SetDefault("poll_interval", 30)   // seconds
	v.SetDefault("request_timeout", 10) // seconds
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/board.db")
	v.SetDefault("storage_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64(time.Hour/time.Second))
}

// Load reads configuration from configs/.env, environment variables and the
// given flag set (nil for none). Flags use dashes, keys use underscores:
// --poll-interval binds to poll_interval / POLL_INTERVAL.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	Defaults(v)
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates a populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIBaseURL = strings.TrimSpace(cfg.APIBaseURL)
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("api_base_url is required")
	}
	if strings.TrimSpace(cfg.EndpointTemplate) == "" {
		return nil, fmt.Errorf("endpoint_template is required")
	}

	if cfg.PollSeconds <= 0 {
		return nil, fmt.Errorf("invalid poll_interval (must be positive seconds)")
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout (must be positive seconds)")
	}
	cfg.PollInterval = time.Duration(cfg.PollSeconds) * time.Second
	cfg.RequestTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanup = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
