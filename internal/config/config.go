package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	EncKey    string
	Database  DatabaseConfig
	Catalog   CatalogConfig
	Twilio    TwilioConfig
	Email     EmailConfig
	Monitor   MonitorConfig
	Reports   ReportsConfig
}

// DatabaseConfig holds local (inventory) database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// CatalogConfig holds timeouts for remote branch catalog connections.
// Credentials themselves live in the branch registry, not the environment,
// because each branch has its own point-of-sale database.
type CatalogConfig struct {
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

// TwilioConfig holds WhatsApp sender credentials
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumbers  []string
}

// Configured reports whether the WhatsApp channel can be used
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// EmailConfig holds email provider settings (Web3Forms)
type EmailConfig struct {
	AccessKey string
	From      string
	To        string
}

// Configured reports whether the email channel can be used
func (c EmailConfig) Configured() bool {
	return c.AccessKey != "" && c.To != ""
}

// MonitorConfig holds branch monitoring thresholds
type MonitorConfig struct {
	Enabled           bool
	TickInterval      time.Duration
	CriticalThreshold time.Duration
	RepeatThreshold   time.Duration
}

// ReportsConfig holds report generation settings
type ReportsConfig struct {
	Enabled   bool
	OutputDir string
	BaseURL   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		JWTSecret: jwtSecret,
		EncKey:    os.Getenv("ENC_KEY"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "beachmarket"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Catalog: CatalogConfig{
			ConnectTimeout: getEnvSeconds("CATALOG_CONNECT_TIMEOUT_SECONDS", 15*time.Second),
			RequestTimeout: getEnvSeconds("CATALOG_REQUEST_TIMEOUT_SECONDS", 45*time.Second),
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber: os.Getenv("TWILIO_WHATSAPP_FROM"),
			ToNumbers:  splitList(os.Getenv("TWILIO_WHATSAPP_TO")),
		},
		Email: EmailConfig{
			AccessKey: os.Getenv("WEB3FORMS_ACCESS_KEY"),
			From:      getEnv("EMAIL_FROM", "alerts@beachmarket.local"),
			To:        os.Getenv("EMAIL_TO"),
		},
		Monitor: MonitorConfig{
			Enabled:           getEnv("MONITOR_ENABLED", "true") == "true",
			TickInterval:      getEnvSeconds("MONITOR_TICK_SECONDS", 30*time.Second),
			CriticalThreshold: getEnvSeconds("MONITOR_CRITICAL_SECONDS", 10*time.Minute),
			RepeatThreshold:   getEnvSeconds("MONITOR_REPEAT_SECONDS", 30*time.Minute),
		},
		Reports: ReportsConfig{
			Enabled:   getEnv("REPORTS_ENABLED", "true") == "true",
			OutputDir: getEnv("REPORTS_DIR", "./reports"),
			BaseURL:   getEnv("REPORTS_BASE_URL", "/reports"),
		},
	}, nil
}

// getEnv gets an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvSeconds reads a whole-seconds env var into a time.Duration
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

// splitList splits a comma-separated env value, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
