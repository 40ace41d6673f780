package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Session SessionConfig `mapstructure:"session"`
	OIDC    OIDCConfig    `mapstructure:"oidc"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Trial   TrialConfig   `mapstructure:"trial"`
	Site    SiteConfig    `mapstructure:"site"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	TLS            TLSConfig     `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
// Driver is "mysql" in production; tests use "sqlite3".
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SessionConfig holds cookie session configuration.
type SessionConfig struct {
	Lifetime int `mapstructure:"lifetime"` // hours
}

// OIDCConfig holds the Google OIDC client configuration.
type OIDCConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// CacheConfig holds configuration for the SQLite payload cache.
type CacheConfig struct {
	FilePath string        `mapstructure:"file_path"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// TrialConfig controls the trial window granted at registration.
type TrialConfig struct {
	Days int `mapstructure:"days"`
}

// SiteConfig holds public-facing site settings.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.request_timeout", 15*time.Second)
	viper.SetDefault("db.driver", "mysql")
	viper.SetDefault("db.dsn", "linklyst:linklyst@tcp(localhost:3306)/linklyst?parseTime=true")
	viper.SetDefault("session.lifetime", 24)
	viper.SetDefault("oidc.issuer_url", "https://accounts.google.com")
	viper.SetDefault("cache.file_path", "cache.db")
	viper.SetDefault("cache.ttl", time.Minute)
	viper.SetDefault("trial.days", 7)
	viper.SetDefault("site.base_url", "http://localhost:8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/linklyst/")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced.
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars.
	}

	viper.SetEnvPrefix("LINKLYST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
