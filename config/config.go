package config

import (
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Email    EmailConfig
	SLA      SLAConfig
	Log      LogConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           string
	UploadBasePath string
}

// AuthConfig holds session/identity configuration
type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
	CronSecret    string // bearer token the external cron trigger must present
}

// EmailConfig holds outbound email configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	SendTimeoutSec int
}

// SLAConfig holds escalation scheduler configuration
type SLAConfig struct {
	WorkerIntervalSeconds int  // in-process sweep cadence; 0 = default 2h
	WorkerEnabled         bool // disable when an external cron owns cadence
}

// LogConfig holds logger configuration
type LogConfig struct {
	Env   string // "production" or "development"
	Level string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "complaintdesk"),
		},
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("PORT", getEnv("SERVER_PORT", "8080")),
			UploadBasePath: getEnv("UPLOAD_BASE_PATH", "uploads"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			TokenTTLHours: getEnvInt("JWT_TTL_HOURS", 24),
			CronSecret:    os.Getenv("CRON_SECRET"),
		},
		Email: EmailConfig{
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			FromEmail:      getEnv("SENDGRID_FROM_EMAIL", "noreply@complaintdesk.local"),
			FromName:       getEnv("SENDGRID_FROM_NAME", "Complaint Desk"),
			SendTimeoutSec: getEnvInt("EMAIL_SEND_TIMEOUT_SECONDS", 15),
		},
		SLA: SLAConfig{
			WorkerIntervalSeconds: getEnvInt("SLA_WORKER_INTERVAL_SECONDS", 0),
			WorkerEnabled:         getEnvBool("SLA_WORKER_ENABLED", true),
		},
		Log: LogConfig{
			Env:   getEnv("APP_ENV", "development"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
