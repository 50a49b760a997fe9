package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDriverPocketBase = "pocketbase"
	StoreDriverPostgres   = "postgres"
)

type DBConfig struct {
	Username string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

type ServerConfig struct {
	Port           string
	Handler        http.Handler
	MaxHeaderBytes int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type StoreConfig struct {
	Driver  string
	URL     string
	Timeout time.Duration
}

type AppConfig struct {
	Env          string
	Port         string
	ClientOrigin string
	Store        StoreConfig
	FeedPageSize int
	SessionTTL   time.Duration
	PostCacheTTL time.Duration
	AccessSecret string
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("client.origin", "http://localhost:3000")
	viper.SetDefault("store.driver", StoreDriverPocketBase)
	viper.SetDefault("store.url", "http://127.0.0.1:8090")
	viper.SetDefault("store.timeout", 10*time.Second)
	viper.SetDefault("feed.page-size", 50)
	viper.SetDefault("session.ttl", 7*24*time.Hour)
	viper.SetDefault("cache.post-ttl", time.Hour)
}

// Load reads the yaml config named app from the working directory. The file
// is optional; defaults cover every key.
func Load() (*AppConfig, error) {
	setDefaults()

	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.SetConfigName("app")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read app config: %w", err)
		}
	}

	cfg := &AppConfig{
		Env:          viper.GetString("app.env"),
		Port:         viper.GetString("app.port"),
		ClientOrigin: viper.GetString("client.origin"),
		Store: StoreConfig{
			Driver:  strings.ToLower(viper.GetString("store.driver")),
			URL:     viper.GetString("store.url"),
			Timeout: viper.GetDuration("store.timeout"),
		},
		FeedPageSize: viper.GetInt("feed.page-size"),
		SessionTTL:   viper.GetDuration("session.ttl"),
		PostCacheTTL: viper.GetDuration("cache.post-ttl"),
		AccessSecret: os.Getenv("ACCESS_SECRET"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Port == "" {
		return errors.New("app.port is required")
	}
	if c.AccessSecret == "" {
		return errors.New("ACCESS_SECRET is required")
	}
	if c.Env == "production" && len(c.AccessSecret) < 32 {
		return errors.New("ACCESS_SECRET must be at least 32 characters in production")
	}

	switch c.Store.Driver {
	case StoreDriverPocketBase:
		if c.Store.URL == "" {
			return errors.New("store.url is required for the pocketbase driver")
		}
	case StoreDriverPostgres:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	if c.FeedPageSize <= 0 {
		return errors.New("feed.page-size must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session.ttl must be positive")
	}

	return nil
}

func LoadDBConfig() DBConfig {
	return DBConfig{
		Username: os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     os.Getenv("POSTGRES_PORT"),
		DBName:   os.Getenv("POSTGRES_DATABASE"),
		SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
	}
}
