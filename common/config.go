package common

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const MinJWTSecretLength = 32

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://folio.db"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	SiteURL     string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	JWTSecret        string        `env:"JWT_SECRET,required"`
	JWTExpiresIn     time.Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`
	RefreshTokenDays int           `env:"REFRESH_TOKEN_DAYS" envDefault:"7"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"12"`
	SessionSecret    string        `env:"SESSION_SECRET"`

	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" envDefault:"1"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" envDefault:"5"`

	SessionCleanupSchedule string `env:"SESSION_CLEANUP_SCHEDULE" envDefault:"@hourly"`

	UploadBackend  string `env:"UPLOAD_BACKEND" envDefault:"local"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	UploadBaseURL  string `env:"UPLOAD_BASE_URL" envDefault:"/uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	RedisURL    string        `env:"REDIS_URL"`
	CachePrefix string        `env:"CACHE_PREFIX" envDefault:"folio:"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
}

// RefreshTokenTTL is the lifetime of a session created at login.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

func (c *Config) UseS3() bool {
	return c.UploadBackend == "s3"
}

// SecureCookies reports whether the site is served over https, in which
// case the session cookie must not travel over plain http.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(strings.ToLower(c.SiteURL), "https://")
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println("Error loading .env file:", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes long, got %d", MinJWTSecretLength, len(cfg.JWTSecret))
	}
	if cfg.RefreshTokenDays < 1 {
		return nil, fmt.Errorf("REFRESH_TOKEN_DAYS must be positive, got %d", cfg.RefreshTokenDays)
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = cfg.JWTSecret
	}
	if cfg.UseS3() && cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET is required when UPLOAD_BACKEND=s3")
	}

	return cfg, nil
}
