package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Logger LoggerConfig `mapstructure:"logger"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Quotes QuotesConfig `mapstructure:"quotes"`
	WS     WSConfig     `mapstructure:"ws"`
	Sync   SyncConfig   `mapstructure:"sync"`
}

type AppConfig struct {
	Port        string `mapstructure:"port"`
	Env         string `mapstructure:"env"` // e.g., "local", "prod"
	FrontendURL string `mapstructure:"frontend_url"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	GoogleClientID     string        `mapstructure:"google_client_id"`
	GoogleClientSecret string        `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string        `mapstructure:"google_redirect_url"`
	GoogleAuthURL      string        `mapstructure:"google_auth_url"`
	GoogleTokenURL     string        `mapstructure:"google_token_url"`
	GoogleUserInfoURL  string        `mapstructure:"google_userinfo_url"`
}

type QuotesConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Suffix  string        `mapstructure:"suffix"` // exchange suffix, e.g. ".NS"
	Timeout time.Duration `mapstructure:"timeout"`
}

type WSConfig struct {
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	JitterBound     float64       `mapstructure:"jitter_bound"`
}

type SyncConfig struct {
	Symbols   []string `mapstructure:"symbols"`
	At        string   `mapstructure:"at"` // daily run time, HH:MM
	StartDate string   `mapstructure:"start_date"`
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Load .env file into System Environment (if it exists)
	// This ensures variables like APP_PORT are available as real env vars
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	// 2. Set Defaults (12-Factor App: Dev/Prod Parity)
	v.SetDefault("app.port", ":5000")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.frontend_url", "http://localhost:5173")

	v.SetDefault("logger.level", "info")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "supersecret")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.google_client_id", "")
	v.SetDefault("auth.google_client_secret", "")
	v.SetDefault("auth.google_redirect_url", "http://localhost:5000/auth/google/callback")
	v.SetDefault("auth.google_auth_url", "https://accounts.google.com/o/oauth2/v2/auth")
	v.SetDefault("auth.google_token_url", "https://oauth2.googleapis.com/token")
	v.SetDefault("auth.google_userinfo_url", "https://www.googleapis.com/oauth2/v2/userinfo")

	v.SetDefault("quotes.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("quotes.suffix", ".NS")
	v.SetDefault("quotes.timeout", 5*time.Second)

	v.SetDefault("ws.tick_interval", 2*time.Second)
	v.SetDefault("ws.refresh_interval", 2*time.Hour)
	v.SetDefault("ws.jitter_bound", 0.0005)

	v.SetDefault("sync.symbols", []string{
		"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS",
		"ICICIBANK.NS", "HINDUNILVR.NS", "SBIN.NS", "BAJFINANCE.NS",
	})
	v.SetDefault("sync.at", "20:00")
	v.SetDefault("sync.start_date", "2023-01-01")

	// 3. Configure Viper to read Environment Variables
	// This maps dot-notation to underscores (e.g., "app.port" -> "APP_PORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Explicitly Bind Env Vars to Keys
	// This is crucial for Viper to map flat Env Vars (APP_PORT) to nested structs (App.Port)
	bindEnv(v, "app.port", "app.env", "app.frontend_url")
	bindEnv(v, "logger.level")
	bindEnv(v, "redis.addr", "redis.password", "redis.db")
	bindEnv(v, "auth.jwt_secret", "auth.token_ttl",
		"auth.google_client_id", "auth.google_client_secret", "auth.google_redirect_url",
		"auth.google_auth_url", "auth.google_token_url", "auth.google_userinfo_url")
	bindEnv(v, "quotes.base_url", "quotes.suffix", "quotes.timeout")
	bindEnv(v, "ws.tick_interval", "ws.refresh_interval", "ws.jitter_bound")
	bindEnv(v, "sync.symbols", "sync.at", "sync.start_date")

	// 5. Unmarshal into Struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %v", err)
	}

	// 6. Basic Validation
	if cfg.WS.TickInterval <= 0 {
		return nil, fmt.Errorf("ws tick interval must be positive")
	}
	if cfg.WS.JitterBound < 0 || cfg.WS.JitterBound >= 1 {
		return nil, fmt.Errorf("ws jitter bound must be in [0, 1)")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwt secret cannot be empty")
	}

	return &cfg, nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
