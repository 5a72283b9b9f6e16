package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Auth     AuthProviderConfig
	Notify   NotifyConfig
	Policy   PolicyConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// AuthProviderConfig selects the identity backend. Provider "local" stores
// bcrypt credentials in this database; "http" defers to a hosted auth admin
// API (authoritative for login).
type AuthProviderConfig struct {
	Provider string // local | http
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

type NotifyConfig struct {
	Sender     string // log | http
	GatewayURL string
	APIKey     string
	Timeout    time.Duration
}

// PolicyConfig carries the credential-lifecycle and draw policy knobs.
type PolicyConfig struct {
	MaxAccessAttempts  int
	LockoutWindow      time.Duration
	ExpirationDays     int
	TempPasswordLength int
	MinReveals         int
	PreRegPerHour      int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8080"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "confraria:confraria@tcp(localhost:3306)/confraria?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "confraria",
		},
		Auth: AuthProviderConfig{
			Provider: envOr("AUTH_PROVIDER", "local"),
			BaseURL:  os.Getenv("AUTH_PROVIDER_URL"),
			APIKey:   os.Getenv("AUTH_PROVIDER_KEY"),
			Timeout:  10 * time.Second,
		},
		Notify: NotifyConfig{
			Sender:     envOr("NOTIFY_SENDER", "log"),
			GatewayURL: os.Getenv("NOTIFY_GATEWAY_URL"),
			APIKey:     os.Getenv("NOTIFY_GATEWAY_KEY"),
			Timeout:    10 * time.Second,
		},
		Policy: PolicyConfig{
			MaxAccessAttempts:  envOrInt("MAX_ACCESS_ATTEMPTS", 5),
			LockoutWindow:      15 * time.Minute,
			ExpirationDays:     envOrInt("PREREG_EXPIRATION_DAYS", 30),
			TempPasswordLength: 12,
			MinReveals:         envOrInt("DRAW_MIN_REVEALS", 1),
			PreRegPerHour:      envOrInt("PREREG_PER_HOUR", 10),
		},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
