package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Argon2        Argon2Config
	OIDC          OIDCConfig
	RateLimit     RateLimitConfig
	Secure        SecureConfig
	Admin         AdminConfig
	Matching      MatchingConfig
	Lockout       LockoutConfig
	Webhook       WebhookConfig
	PasswordReset PasswordResetConfig
	Cache         CacheConfig
}

type ServerConfig struct {
	Port        string
	APIVersion  string
	CORSOrigins []string
}

// DatabaseConfig selects the document store. An empty URL runs on the in-memory store.
type DatabaseConfig struct {
	URL string
}

// RedisConfig enables the task queue, the profile cache and shared token revocation.
type RedisConfig struct {
	URL               string
	WorkerConcurrency int
}

type JWTConfig struct {
	// PrivateKeyPath may be empty in development; an ephemeral key is generated.
	PrivateKeyPath string
	Issuer         string
	Audience       string
	AccessExpiry   int64 // seconds
}

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

// OIDCConfig accepts bearer tokens from an outside identity issuer as well.
type OIDCConfig struct {
	IssuerURL string
	ClientID  string
}

type RateLimitConfig struct {
	RatePerIP   string // "100-M"
	RatePerUser string // applied to match searches
}

type SecureConfig struct {
	IsDevelopment bool
	HSTSSeconds   int64
	AllowedHosts  []string
}

type AdminConfig struct {
	Secret string
}

type MatchingConfig struct {
	WindowDays  int
	FanOutLimit int
}

type LockoutConfig struct {
	MaxAttempts     int
	CooldownSeconds int
}

type WebhookConfig struct {
	URL    string
	Secret string
}

type PasswordResetConfig struct {
	BaseURL string
	Expiry  time.Duration
}

type CacheConfig struct {
	ProfileTTL time.Duration
}

func Load() (*Config, error) {
	viper.AutomaticEnv()
	setDefaults()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		viper.SetConfigFile(p)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("PORT"),
			APIVersion:  viper.GetString("API_VERSION"),
			CORSOrigins: splitList(viper.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{URL: viper.GetString("DATABASE_URL")},
		Redis: RedisConfig{
			URL:               viper.GetString("REDIS_URL"),
			WorkerConcurrency: viper.GetInt("WORKER_CONCURRENCY"),
		},
		JWT: JWTConfig{
			PrivateKeyPath: viper.GetString("JWT_PRIVATE_KEY_PATH"),
			Issuer:         viper.GetString("JWT_ISSUER"),
			Audience:       viper.GetString("JWT_AUDIENCE"),
			AccessExpiry:   viper.GetInt64("JWT_ACCESS_EXPIRY"),
		},
		Argon2: Argon2Config{
			Memory:      uint32(viper.GetInt("ARGON2_MEMORY")),
			Iterations:  uint32(viper.GetInt("ARGON2_ITERATIONS")),
			Parallelism: uint8(viper.GetInt("ARGON2_PARALLELISM")),
		},
		OIDC: OIDCConfig{
			IssuerURL: viper.GetString("OIDC_ISSUER_URL"),
			ClientID:  viper.GetString("OIDC_CLIENT_ID"),
		},
		RateLimit: RateLimitConfig{
			RatePerIP:   viper.GetString("RATE_LIMIT_PER_IP"),
			RatePerUser: viper.GetString("RATE_LIMIT_PER_USER"),
		},
		Secure: SecureConfig{
			IsDevelopment: viper.GetBool("DEVELOPMENT"),
			HSTSSeconds:   viper.GetInt64("HSTS_SECONDS"),
			AllowedHosts:  splitList(viper.GetString("ALLOWED_HOSTS")),
		},
		Admin: AdminConfig{Secret: viper.GetString("ADMIN_SECRET")},
		Matching: MatchingConfig{
			WindowDays:  viper.GetInt("MATCH_WINDOW_DAYS"),
			FanOutLimit: viper.GetInt("MATCH_FANOUT_LIMIT"),
		},
		Lockout: LockoutConfig{
			MaxAttempts:     viper.GetInt("LOCKOUT_MAX_ATTEMPTS"),
			CooldownSeconds: viper.GetInt("LOCKOUT_COOLDOWN_SECONDS"),
		},
		Webhook: WebhookConfig{
			URL:    viper.GetString("WEBHOOK_URL"),
			Secret: viper.GetString("WEBHOOK_SECRET"),
		},
		PasswordReset: PasswordResetConfig{
			BaseURL: viper.GetString("PASSWORD_RESET_URL"),
			Expiry:  viper.GetDuration("PASSWORD_RESET_EXPIRY"),
		},
		Cache: CacheConfig{ProfileTTL: viper.GetDuration("PROFILE_CACHE_TTL")},
	}
	return cfg, cfg.validate()
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("API_VERSION", "1")
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("JWT_ISSUER", "crewrelief")
	viper.SetDefault("JWT_AUDIENCE", "crewrelief-api")
	viper.SetDefault("JWT_ACCESS_EXPIRY", 900)
	viper.SetDefault("ARGON2_MEMORY", 64*1024)
	viper.SetDefault("ARGON2_ITERATIONS", 3)
	viper.SetDefault("ARGON2_PARALLELISM", 2)
	viper.SetDefault("RATE_LIMIT_PER_IP", "100-M")
	viper.SetDefault("RATE_LIMIT_PER_USER", "30-M")
	viper.SetDefault("MATCH_WINDOW_DAYS", 15)
	viper.SetDefault("MATCH_FANOUT_LIMIT", 16)
	viper.SetDefault("LOCKOUT_MAX_ATTEMPTS", 5)
	viper.SetDefault("LOCKOUT_COOLDOWN_SECONDS", 900)
	viper.SetDefault("PASSWORD_RESET_URL", "http://localhost:3000/reset-password")
	viper.SetDefault("PASSWORD_RESET_EXPIRY", time.Hour)
	viper.SetDefault("PROFILE_CACHE_TTL", 5*time.Minute)
}

func (c *Config) validate() error {
	if c.Matching.WindowDays <= 0 {
		return fmt.Errorf("MATCH_WINDOW_DAYS must be positive, got %d", c.Matching.WindowDays)
	}
	if c.Matching.FanOutLimit <= 0 {
		return fmt.Errorf("MATCH_FANOUT_LIMIT must be positive, got %d", c.Matching.FanOutLimit)
	}
	if c.JWT.AccessExpiry <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRY must be positive, got %d", c.JWT.AccessExpiry)
	}
	if c.Webhook.Secret != "" && c.Webhook.URL == "" {
		return fmt.Errorf("WEBHOOK_SECRET is set but WEBHOOK_URL is empty")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
