package config

import (
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type MonitorConfig struct {
	ServicesFile        string `mapstructure:"services_file"`
	CheckInterval       string `mapstructure:"check_interval"`
	SummaryInterval     string `mapstructure:"summary_interval"`
	ProbeTimeout        string `mapstructure:"probe_timeout"`
	ReminderEvery       int    `mapstructure:"reminder_every"`
	MaxConcurrentProbes int    `mapstructure:"max_concurrent_probes"`
	CheckOnStart        bool   `mapstructure:"check_on_start"`
}

type NotificationsConfig struct {
	IntegrationName   string `mapstructure:"integration_name"`
	DiscordWebhookURL string `mapstructure:"discord_webhook_url"`
	TeamsWebhookURL   string `mapstructure:"teams_webhook_url"`
	Timezone          string `mapstructure:"timezone"`
	SendTimeout       string `mapstructure:"send_timeout"`
}

type ShutdownConfig struct {
	Grace string `mapstructure:"grace"`
}

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Monitor       MonitorConfig       `mapstructure:"monitor"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Shutdown      ShutdownConfig      `mapstructure:"shutdown"`
}

// Load reads config.yaml from ./config or the working directory, overlays
// environment variables (a .env file is honoured first) and validates the
// result. A missing config file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment file", slog.String("file", ".env"))
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Warn("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if port := v.GetString("port"); port != "" {
		cfg.Server.Address = ":" + port
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", ":3000")
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("monitor.services_file", "integrations/config.json")
	v.SetDefault("monitor.check_interval", "3m")
	v.SetDefault("monitor.summary_interval", "4h")
	v.SetDefault("monitor.probe_timeout", "10s")
	v.SetDefault("monitor.reminder_every", 5)
	v.SetDefault("monitor.max_concurrent_probes", 8)
	v.SetDefault("monitor.check_on_start", false)
	v.SetDefault("notifications.integration_name", "Health Monitor")
	v.SetDefault("notifications.discord_webhook_url", "")
	v.SetDefault("notifications.teams_webhook_url", "")
	v.SetDefault("notifications.timezone", "Australia/Sydney")
	v.SetDefault("notifications.send_timeout", "10s")
	v.SetDefault("shutdown.grace", "5s")
}

// bindLegacyEnv keeps the plain variable names deployments already set.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"port":                              "PORT",
		"notifications.discord_webhook_url": "DISCORD_WEBHOOK_URL",
		"notifications.teams_webhook_url":   "TEAMS_WEBHOOK_URL",
		"notifications.integration_name":    "INTEGRATION_NAME",
	}
	for key, env := range bindings {
		upper := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, upper, env); err != nil {
			return err
		}
	}
	return nil
}

// CheckInterval returns the parsed health-check cadence.
func (c *Config) CheckInterval() time.Duration {
	return mustDuration(c.Monitor.CheckInterval)
}

// SummaryInterval returns the parsed summary cadence.
func (c *Config) SummaryInterval() time.Duration {
	return mustDuration(c.Monitor.SummaryInterval)
}

// ProbeTimeout returns the parsed per-probe timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return mustDuration(c.Monitor.ProbeTimeout)
}

// SendTimeout returns the parsed per-channel delivery timeout.
func (c *Config) SendTimeout() time.Duration {
	return mustDuration(c.Notifications.SendTimeout)
}

// ShutdownGrace returns the parsed shutdown grace period.
func (c *Config) ShutdownGrace() time.Duration {
	return mustDuration(c.Shutdown.Grace)
}

// Location returns the zone used to render timestamps in notifications,
// falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Notifications.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// mustDuration is only called on validated values.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Monitor,
			validation.Required,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MonitorConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MonitorConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.ServicesFile, validation.Required),
					validation.Field(&mc.CheckInterval, validation.Required, validation.By(validatePositiveDuration)),
					validation.Field(&mc.SummaryInterval, validation.Required, validation.By(validatePositiveDuration)),
					validation.Field(&mc.ProbeTimeout, validation.Required, validation.By(validatePositiveDuration)),
					validation.Field(&mc.ReminderEvery, validation.Required, validation.Min(1)),
					validation.Field(&mc.MaxConcurrentProbes, validation.Required, validation.Min(1)),
				)
			}),
		),
		validation.Field(&c.Notifications,
			validation.Required,
			validation.By(func(value interface{}) error {
				nc, ok := value.(NotificationsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a NotificationsConfig")
				}
				return validation.ValidateStruct(&nc,
					validation.Field(&nc.IntegrationName, validation.Required),
					validation.Field(&nc.DiscordWebhookURL, validation.By(validateWebhookURL)),
					validation.Field(&nc.TeamsWebhookURL, validation.By(validateWebhookURL)),
					validation.Field(&nc.Timezone, validation.Required, validation.By(validateTimezone)),
					validation.Field(&nc.SendTimeout, validation.Required, validation.By(validatePositiveDuration)),
				)
			}),
		),
		validation.Field(&c.Shutdown,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ShutdownConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ShutdownConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Grace, validation.Required, validation.By(validatePositiveDuration)),
				)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validatePositiveDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 10s, 3m, 4h)")
	}

	if d <= 0 {
		return validation.NewError("validation_non_positive_duration", "must be greater than zero")
	}

	return nil
}

func validateTimezone(value interface{}) error {
	tz, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.LoadLocation(tz); err != nil {
		return validation.NewError("validation_invalid_timezone", "must be an IANA time zone name")
	}

	return nil
}

// validateWebhookURL accepts an empty value or a placeholder (channel
// disabled) and otherwise requires an absolute http(s) URL.
func validateWebhookURL(value interface{}) error {
	webhookURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if webhookURL == "" || IsPlaceholder(webhookURL) {
		return nil
	}

	parsedURL, err := url.Parse(webhookURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

// IsPlaceholder reports whether a webhook value is one of the
// YOUR_..._HERE templates shipped in sample env files.
func IsPlaceholder(value string) bool {
	return strings.HasPrefix(value, "YOUR_") && strings.HasSuffix(value, "_HERE")
}
