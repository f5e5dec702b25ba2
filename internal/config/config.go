package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port     string
	LogLevel string

	DatabaseURL string

	JWTKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	AppBaseURL      string
	AllowedOrigins  []string
	AllowAllOrigins bool
}

// Load reads configuration from environment variables. DATABASE_URL and
// JWT_KEY are required; redis and SMTP are optional and their features
// degrade when absent.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8081"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTKey:          os.Getenv("JWT_KEY"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PW"),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		MailFrom:        getEnv("MAIL_FROM", "no-reply@inkwell.local"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:3000"),
		AllowAllOrigins: os.Getenv("ALLOW_ALL_ORIGINS") == "true",
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTKey == "" {
		return nil, fmt.Errorf("JWT_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
