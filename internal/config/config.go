package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const devJWTSecret = "default_super_secret_key"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Log       LogConfig
	Payroll   PayrollConfig
	Seed      SeedConfig
	Scheduler SchedulerConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the postgres connection URL.
func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

type AuthConfig struct {
	JWTSecret  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// SecureCookies switches auth cookies to SameSite=None; Secure.
	SecureCookies bool
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

type PayrollConfig struct {
	// DefaultAllowance applies when neither the request nor the position rate table supplies one.
	DefaultAllowance decimal.Decimal
}

type SeedConfig struct {
	OnStartup bool
}

type SchedulerConfig struct {
	Enabled      bool
	LowStockCron string
}

type CacheConfig struct {
	PermissionTTL time.Duration
}

// Load reads configs/.env and .env when present, then the process environment.
func Load() (*Config, error) {
	for _, path := range []string{"configs/.env", ".env"} {
		if err := godotenv.Load(path); err == nil {
			log.Printf("Loaded %s", path)
		}
	}

	ginMode := getEnv("GIN_MODE", "debug")

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		if ginMode == "release" {
			return nil, fmt.Errorf("JWT_SECRET is required when GIN_MODE=release")
		}
		secret = devJWTSecret
	}

	allowance, err := decimal.NewFromString(getEnv("PAYROLL_DEFAULT_ALLOWANCE", "35000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_DEFAULT_ALLOWANCE: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			GinMode:     ginMode,
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:     []byte(secret),
			AccessTTL:     getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
			RefreshTTL:    getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			SecureCookies: ginMode == "release",
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Payroll: PayrollConfig{
			DefaultAllowance: allowance,
		},
		Seed: SeedConfig{
			OnStartup: getBool("SEED_ON_STARTUP", true),
		},
		Scheduler: SchedulerConfig{
			Enabled:      getBool("SCHEDULER_ENABLED", true),
			LowStockCron: getEnv("LOW_STOCK_CRON", "0 7 * * *"),
		},
		Cache: CacheConfig{
			PermissionTTL: getDuration("PERMISSION_CACHE_TTL", 5*time.Minute),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
