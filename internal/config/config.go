package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	App     AppConfig
	EmailJS EmailJSConfig
	Geo     GeoConfig
	Session SessionConfig
	Admin   AdminConfig
}

type ServerConfig struct {
	Port string
}

type AppConfig struct {
	Environment string
	LogLevel    string
}

// EmailJSConfig holds the delivery service credentials. The public key is the
// same value the browser SDK would have used; the private key is optional and
// only needed when the account enforces strict mode.
type EmailJSConfig struct {
	APIURL            string
	ServiceID         string
	VisitorTemplateID string
	ContactTemplateID string
	PublicKey         string
	PrivateKey        string
	RatePerSecond     float64
}

type GeoConfig struct {
	APIURL string
}

type SessionConfig struct {
	MarkerBackend string // memory, redis or sqlite
	RedisAddr     string
	SQLitePath    string
	TTL           time.Duration
	PurgeSpec     string
}

type AdminConfig struct {
	Username string
	Password string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		EmailJS: EmailJSConfig{
			APIURL:            getEnv("EMAILJS_API_URL", "https://api.emailjs.com/api/v1.0/email/send"),
			ServiceID:         getEnv("EMAILJS_SERVICE_ID", ""),
			VisitorTemplateID: getEnv("EMAILJS_VISITOR_TEMPLATE_ID", "template_visitor_alert"),
			ContactTemplateID: getEnv("EMAILJS_CONTACT_TEMPLATE_ID", ""),
			PublicKey:         getEnv("EMAILJS_PUBLIC_KEY", ""),
			PrivateKey:        getEnv("EMAILJS_PRIVATE_KEY", ""),
			RatePerSecond:     getEnvAsFloat("EMAILJS_RATE_PER_SEC", 1),
		},
		Geo: GeoConfig{
			APIURL: getEnv("GEO_API_URL", "https://ipapi.co"),
		},
		Session: SessionConfig{
			MarkerBackend: getEnv("MARKER_BACKEND", "memory"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			SQLitePath:    getEnv("SQLITE_PATH", "portfolio.db"),
			TTL:           getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			PurgeSpec:     getEnv("MARKER_PURGE_SPEC", "0 */15 * * * *"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Session.MarkerBackend {
	case "memory", "sqlite":
	case "redis":
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when MARKER_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown MARKER_BACKEND %q", c.Session.MarkerBackend)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.EmailJS.RatePerSecond <= 0 {
		return fmt.Errorf("EMAILJS_RATE_PER_SEC must be positive")
	}

	return nil
}

// Production reports whether the app runs with production defaults.
func (c *Config) Production() bool {
	return c.App.Environment == "production"
}

// EmailConfigured reports whether enough EmailJS settings are present to send.
// The server still starts without them; sends then fail and are reported.
func (c *Config) EmailConfigured() bool {
	return c.EmailJS.ServiceID != "" && c.EmailJS.PublicKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
