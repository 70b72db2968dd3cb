// Package config loads the dashboard client configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Errors returned by the config package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("config: invalid configuration")
	// ErrConfigNotFound is returned when an explicitly named config file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")
)

// EnvPrefix is the prefix for environment overrides, e.g. DASHBOARD_API_BASE_URL.
const EnvPrefix = "DASHBOARD"

// Auth types understood by the client.
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthLogin  = "login"
)

// Config holds all dashboard configuration
type Config struct {
	API     APIConfig
	Auth    AuthConfig
	Log     LogConfig
	Loader  LoaderConfig
	Metrics MetricsConfig
	Watch   WatchConfig
}

// APIConfig describes the merchant API the dashboard talks to.
type APIConfig struct {
	BaseURL        string            `validate:"required,url"`
	Timeout        time.Duration     `validate:"gt=0"`
	TLSSkipVerify  bool              // testing only
	UserAgent      string            `validate:"required"`
	Headers        map[string]string // extra headers sent on every request
	RateLimitQPS   float64           `validate:"gte=0"` // 0 disables client-side rate limiting
	RateLimitBurst int               `validate:"gte=0"`
}

// AuthConfig holds credential settings.
type AuthConfig struct {
	Type  string `validate:"oneof=none bearer login"`
	Token string // static token for bearer auth
	Login LoginConfig
}

// LoginConfig configures login-based authentication with token refresh.
type LoginConfig struct {
	Endpoint        string
	RefreshEndpoint string
	Username        string
	Password        string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"`
	Format string `validate:"oneof=json console"`
	Output string
}

// LoaderConfig tunes the hierarchy loader.
type LoaderConfig struct {
	MaxConcurrency int `validate:"gte=0"` // 0 = unbounded fan-out
	PageSize       int `validate:"gte=0"` // 0 = let the backend decide
}

// MetricsConfig configures the Prometheus endpoint served by long-running commands.
type MetricsConfig struct {
	Port      int    `validate:"gte=0,lte=65535"`
	Path      string `validate:"startswith=/"`
	Namespace string
}

// WatchConfig configures the periodic hierarchy refresh.
type WatchConfig struct {
	Interval time.Duration `validate:"gt=0"`
}

// Load reads configuration from path (or dashboard.{toml,yaml,json} in the
// working directory when path is empty) and DASHBOARD_* environment variables.
// Priority (highest to lowest): environment, file, built-in defaults.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dashboard")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/quickcrate")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// defaults and env only
		case path != "" && errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		default:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return build(v)
}

// LoadFromBytes parses configuration of the given format ("toml", "yaml", "json").
// Environment overrides still apply.
func LoadFromBytes(data []byte, format string) (*Config, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL:        v.GetString("api.base_url"),
			Timeout:        v.GetDuration("api.timeout"),
			TLSSkipVerify:  v.GetBool("api.tls_skip_verify"),
			UserAgent:      v.GetString("api.user_agent"),
			Headers:        v.GetStringMapString("api.headers"),
			RateLimitQPS:   v.GetFloat64("api.rate_limit_qps"),
			RateLimitBurst: v.GetInt("api.rate_limit_burst"),
		},
		Auth: AuthConfig{
			Type:  v.GetString("auth.type"),
			Token: v.GetString("auth.token"),
			Login: LoginConfig{
				Endpoint:        v.GetString("auth.login.endpoint"),
				RefreshEndpoint: v.GetString("auth.login.refresh_endpoint"),
				Username:        v.GetString("auth.login.username"),
				Password:        v.GetString("auth.login.password"),
			},
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Loader: LoaderConfig{
			MaxConcurrency: v.GetInt("loader.max_concurrency"),
			PageSize:       v.GetInt("loader.page_size"),
		},
		Metrics: MetricsConfig{
			Port:      v.GetInt("metrics.port"),
			Path:      v.GetString("metrics.path"),
			Namespace: v.GetString("metrics.namespace"),
		},
		Watch: WatchConfig{
			Interval: v.GetDuration("watch.interval"),
		},
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults sets default values for any empty config fields
func (c *Config) ApplyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:5000/api"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = "Quickcrate-Dashboard/1.0"
	}
	if c.API.RateLimitQPS > 0 && c.API.RateLimitBurst == 0 {
		c.API.RateLimitBurst = 1
	}
	if c.Auth.Type == "" {
		if c.Auth.Token != "" {
			c.Auth.Type = AuthBearer
		} else {
			c.Auth.Type = AuthNone
		}
	}
	if c.Auth.Type == AuthLogin && c.Auth.Login.Endpoint == "" {
		c.Auth.Login.Endpoint = "/Auth/login"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stderr"
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = 9090
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "dashboard"
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = time.Minute
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the cross-field auth rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q check (value %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Auth.Type {
	case AuthBearer:
		if c.Auth.Token == "" {
			return fmt.Errorf("%w: auth.token is required for bearer auth", ErrInvalidConfig)
		}
	case AuthLogin:
		if c.Auth.Login.Username == "" {
			return fmt.Errorf("%w: auth.login.username is required for login auth", ErrInvalidConfig)
		}
	}
	return nil
}
