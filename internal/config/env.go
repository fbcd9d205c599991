package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fumotion/internal/utils"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "super-secret-key-change-me"

type Env struct {
	AppAddr string
	AppEnv  string
	GinMode string

	DBDriver       string
	DBDSN          string
	DBMaxOpenConns int

	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	AuthRateLimit int

	BookingCancelCutoff time.Duration
}

// IsProduction hides internal error details and switches logging to JSON.
func (e Env) IsProduction() bool {
	return strings.EqualFold(e.AppEnv, "production")
}

func LoadEnv() Env {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// .env is optional, real environment wins
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("GIN_MODE", "")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "file:fumotion.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate&_time_format=sqlite")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("BOOKING_CANCEL_CUTOFF", "2h")

	return Env{
		AppAddr:             strings.TrimSpace(v.GetString("APP_ADDR")),
		AppEnv:              strings.TrimSpace(v.GetString("APP_ENV")),
		GinMode:             strings.TrimSpace(v.GetString("GIN_MODE")),
		DBDriver:            strings.TrimSpace(v.GetString("DB_DRIVER")),
		DBDSN:               strings.TrimSpace(v.GetString("DB_DSN")),
		DBMaxOpenConns:      v.GetInt("DB_MAX_OPEN_CONNS"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTTTL:              v.GetDuration("JWT_TTL"),
		CORSAllowedOrigins:  utils.SplitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RedisAddr:           strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		AuthRateLimit:       v.GetInt("AUTH_RATE_LIMIT"),
		BookingCancelCutoff: v.GetDuration("BOOKING_CANCEL_CUTOFF"),
	}
}

func (e Env) Validate() error {
	switch strings.ToLower(e.DBDriver) {
	case "mysql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", e.DBDriver)
	}
	if e.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	if e.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if e.BookingCancelCutoff < 0 {
		return errors.New("BOOKING_CANCEL_CUTOFF cannot be negative")
	}
	if e.IsProduction() && (e.JWTSecret == "" || e.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}
