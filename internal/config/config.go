package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/wb-go/wbf/retry"
)

// Config holds the main configuration for the application.
type Config struct {
	Server   Server
	Database Database
	RabbitMQ RabbitMQ
	Outreach Outreach
	WhatsApp WhatsApp
	Retry    retry.Strategy
}

// Server holds HTTP server-related configuration.
type Server struct {
	Port string
}

// Database selects the driver and its connection parameters.
type Database struct {
	Driver     string // "postgres" or "sqlite"
	URL        string
	User       string
	Password   string
	Host       string
	Port       string
	Name       string
	SQLitePath string
}

// RabbitMQ is optional; an empty URL keeps outreach events in-process.
type RabbitMQ struct {
	URL   string
	Queue string
}

// Outreach holds the bulk-send defaults an operator can rely on.
type Outreach struct {
	MaxSelection    int
	Delay           time.Duration
	MinDelay        time.Duration
	MaxDelay        time.Duration
	Strategy        string // "deeplink" or "api"
	MessageTemplate string
	CountryCode     string
	NationalDigits  int
	AdminContact    string // fallback when no admin profile carries a number
}

// Randomized reports whether both delay bounds are set.
func (o Outreach) Randomized() bool {
	return o.MinDelay > 0 && o.MaxDelay > 0
}

// WhatsApp holds the Cloud API and deep-link settings.
type WhatsApp struct {
	APIBase       string
	TemplateName  string
	LanguageCode  string
	Token         string
	PhoneNumberID string
	DeepLinkBase  string
	HTTPTimeout   time.Duration
}

const (
	StrategyDeepLink = "deeplink"
	StrategyAPI      = "api"
)

func defaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("database_url", "")
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "donorlink")
	v.SetDefault("sqlite_path", "./donors.db")

	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("outreach_events_queue", "outreach_events")

	v.SetDefault("outreach_max_selection", 15)
	v.SetDefault("outreach_delay", 2*time.Second)
	v.SetDefault("outreach_min_delay", time.Duration(0))
	v.SetDefault("outreach_max_delay", time.Duration(0))
	v.SetDefault("outreach_strategy", StrategyDeepLink)
	v.SetDefault("outreach_message_template", "Need blood donation. Please contact {admin_contact} if available.")
	v.SetDefault("outreach_admin_contact", "")
	v.SetDefault("phone_country_code", "")
	v.SetDefault("phone_national_digits", 10)

	v.SetDefault("whatsapp_api_base", "https://graph.facebook.com/v17.0")
	v.SetDefault("whatsapp_template_name", "hello_world")
	v.SetDefault("whatsapp_language_code", "en_US")
	v.SetDefault("whatsapp_api_token", "")
	v.SetDefault("whatsapp_phone_number_id", "")
	v.SetDefault("whatsapp_deeplink_base", "https://api.whatsapp.com")
	v.SetDefault("whatsapp_http_timeout", 10*time.Second)

	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_delay", 200*time.Millisecond)
	v.SetDefault("retry_backoff", 2.0)
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: Server{Port: v.GetString("server_port")},
		Database: Database{
			Driver:     strings.ToLower(v.GetString("db_driver")),
			URL:        v.GetString("database_url"),
			User:       v.GetString("db_user"),
			Password:   v.GetString("db_password"),
			Host:       v.GetString("db_host"),
			Port:       v.GetString("db_port"),
			Name:       v.GetString("db_name"),
			SQLitePath: v.GetString("sqlite_path"),
		},
		RabbitMQ: RabbitMQ{
			URL:   v.GetString("rabbitmq_url"),
			Queue: v.GetString("outreach_events_queue"),
		},
		Outreach: Outreach{
			MaxSelection:    v.GetInt("outreach_max_selection"),
			Delay:           v.GetDuration("outreach_delay"),
			MinDelay:        v.GetDuration("outreach_min_delay"),
			MaxDelay:        v.GetDuration("outreach_max_delay"),
			Strategy:        strings.ToLower(v.GetString("outreach_strategy")),
			MessageTemplate: v.GetString("outreach_message_template"),
			CountryCode:     v.GetString("phone_country_code"),
			NationalDigits:  v.GetInt("phone_national_digits"),
			AdminContact:    v.GetString("outreach_admin_contact"),
		},
		WhatsApp: WhatsApp{
			APIBase:       strings.TrimRight(v.GetString("whatsapp_api_base"), "/"),
			TemplateName:  v.GetString("whatsapp_template_name"),
			LanguageCode:  v.GetString("whatsapp_language_code"),
			Token:         v.GetString("whatsapp_api_token"),
			PhoneNumberID: v.GetString("whatsapp_phone_number_id"),
			DeepLinkBase:  strings.TrimRight(v.GetString("whatsapp_deeplink_base"), "/"),
			HTTPTimeout:   v.GetDuration("whatsapp_http_timeout"),
		},
		Retry: retry.Strategy{
			Attempts: v.GetInt("retry_attempts"),
			Delay:    v.GetDuration("retry_delay"),
			Backoff:  v.GetFloat64("retry_backoff"),
		},
	}

	return cfg, nil
}

// DSN returns the postgres connection string, preferring DATABASE_URL.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return &ConfigError{Field: "DB_DRIVER", Message: "must be 'postgres' or 'sqlite'"}
	}
	if c.Database.Driver == "sqlite" && c.Database.SQLitePath == "" {
		return &ConfigError{Field: "SQLITE_PATH", Message: "required when DB_DRIVER is 'sqlite'"}
	}
	if c.Outreach.MaxSelection < 1 {
		return &ConfigError{Field: "OUTREACH_MAX_SELECTION", Message: "must be at least 1"}
	}
	if c.Outreach.Randomized() {
		if c.Outreach.MinDelay > c.Outreach.MaxDelay {
			return &ConfigError{Field: "OUTREACH_MIN_DELAY", Message: "must not exceed OUTREACH_MAX_DELAY"}
		}
	} else if c.Outreach.Delay < time.Second {
		return &ConfigError{Field: "OUTREACH_DELAY", Message: "must be at least 1s"}
	}
	if c.Outreach.Strategy != StrategyDeepLink && c.Outreach.Strategy != StrategyAPI {
		return &ConfigError{Field: "OUTREACH_STRATEGY", Message: "must be 'deeplink' or 'api'"}
	}
	if c.Outreach.NationalDigits < 0 {
		return &ConfigError{Field: "PHONE_NATIONAL_DIGITS", Message: "must not be negative"}
	}
	if strings.Trim(c.Outreach.CountryCode, "0123456789") != "" {
		return &ConfigError{Field: "PHONE_COUNTRY_CODE", Message: "digits only"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
