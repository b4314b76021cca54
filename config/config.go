// Package config loads server settings from the environment.
//
// Values come from process env, optionally seeded from a .env file.
// JWT_SECRET is the only required variable.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Upload   UploadConfig
	Email    EmailConfig
	Log      LogConfig
	App      AppConfig
	Shipping ShippingConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Path string
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // days
}

type UploadConfig struct {
	Dir     string
	MaxSize int64
}

// EmailConfig enables Resend delivery when APIKey and From are both set.
type EmailConfig struct {
	APIKey string
	From   string
}

func (c EmailConfig) Enabled() bool { return c.APIKey != "" && c.From != "" }

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	URL            string
	Timezone       *time.Location
	AllowedOrigins []string
	EncryptionKey  string
}

type ShippingConfig struct {
	DefaultZoneID     int64
	VolumetricDivisor float64
	ExtraKgRate       float64
	CODFee            float64
}

type JobsConfig struct {
	ExpiryInterval time.Duration
}

// Load reads the configuration. Invalid numbers are reported together.
func Load() (*Config, error) {
	_ = godotenv.Load()

	p := &parser{}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	tzName := getEnv("APP_TIMEZONE", "Europe/Athens")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid APP_TIMEZONE: %w", err))
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: p.int("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/dixis.db"),
		},
		JWT: JWTConfig{
			Secret:             jwtSecret,
			AccessTokenExpiry:  p.int("JWT_ACCESS_EXPIRY_MINUTES", 60),
			RefreshTokenExpiry: p.int("JWT_REFRESH_EXPIRY_DAYS", 30),
		},
		Upload: UploadConfig{
			Dir:     getEnv("UPLOAD_DIR", "./data/uploads"),
			MaxSize: int64(p.int("UPLOAD_MAX_SIZE", 2<<20)),
		},
		Email: EmailConfig{
			APIKey: getEnv("RESEND_API_KEY", ""),
			From:   getEnv("RESEND_FROM", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			URL:            strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),
			Timezone:       loc,
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
			EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		},
		Shipping: ShippingConfig{
			DefaultZoneID:     int64(p.int("SHIPPING_DEFAULT_ZONE_ID", 3)),
			VolumetricDivisor: p.float("SHIPPING_VOLUMETRIC_DIVISOR", 5000),
			ExtraKgRate:       p.float("SHIPPING_EXTRA_KG_RATE", 0.90),
			CODFee:            p.float("SHIPPING_COD_FEE", 2.00),
		},
		Jobs: JobsConfig{
			ExpiryInterval: time.Duration(p.int("JOB_EXPIRY_INTERVAL_MINUTES", 60)) * time.Minute,
		},
	}

	if cfg.Shipping.VolumetricDivisor <= 0 {
		p.errs = append(p.errs, errors.New("SHIPPING_VOLUMETRIC_DIVISOR must be positive"))
	}
	if cfg.Jobs.ExpiryInterval <= 0 {
		p.errs = append(p.errs, errors.New("JOB_EXPIRY_INTERVAL_MINUTES must be positive"))
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns host:port for http.Server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type parser struct {
	errs []error
}

func (p *parser) int(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
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
