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
	Payout   PayoutConfig
	Cron     CronConfig
	Provider ProviderConfig
	Admin    AdminConfig
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

// PayoutConfig tunes the settlement core: eligibility threshold and retry policy.
type PayoutConfig struct {
	MinPayoutCents    int64
	Currency          string
	MaxRetries        int
	RetryDelayMinutes int
}

func (p PayoutConfig) RetryDelay() time.Duration {
	return time.Duration(p.RetryDelayMinutes) * time.Minute
}

// CronConfig guards scheduler-triggered jobs. Each job has its own enable flag;
// an unset flag is a kill switch for that piece of financial automation.
type CronConfig struct {
	Secret      string
	EnabledJobs map[string]bool
}

func (c CronConfig) Enabled(job string) bool {
	return c.EnabledJobs[job]
}

// ProviderConfig for the external transfer API (TheLiberec Card API B2C).
type ProviderConfig struct {
	BaseURL  string
	Email    string
	Password string
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envStr("PORT", "8090"),
			Env:          envStr("ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envStr("DATABASE_DSN", "giveflow:giveflow@tcp(localhost:3306)/giveflow?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envStr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envStr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "giveflow",
		},
		Payout: PayoutConfig{
			MinPayoutCents:    envInt64("MIN_PAYOUT_CENTS", 10000),
			Currency:          envStr("PAYOUT_CURRENCY", "KES"),
			MaxRetries:        envInt("PAYOUT_MAX_RETRIES", 3),
			RetryDelayMinutes: envInt("PAYOUT_RETRY_DELAY_MINUTES", 60),
		},
		Cron: CronConfig{
			Secret: envStr("CRON_SECRET", ""),
			EnabledJobs: map[string]bool{
				"campaign-lifecycle": envBool("CRON_CAMPAIGN_LIFECYCLE_ENABLED", false),
				"charity-payouts":    envBool("CRON_CHARITY_PAYOUTS_ENABLED", false),
			},
		},
		Provider: ProviderConfig{
			BaseURL:  envStr("PROVIDER_BASE_URL", "https://card-api.theliberec.com"),
			Email:    envStr("PROVIDER_EMAIL", ""),
			Password: envStr("PROVIDER_PASSWORD", ""),
		},
		Admin: AdminConfig{
			Email:    envStr("ADMIN_EMAIL", "admin@giveflow.local"),
			Password: envStr("ADMIN_PASSWORD", ""),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
