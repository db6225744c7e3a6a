package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr       string
	DatabaseURL    string
	MigrateOnStart bool
	JWTSecret      string
	JWTIssuer      string
	VerifyTokenTTL time.Duration
	SchoolTokenTTL time.Duration
	LoginTokenTTL  time.Duration
	RedisAddr      string
	RedisPassword  string
	SendGridKey    string
	MailFromName   string
	MailFromEmail  string
	PublicBaseURL  string
}

func Load() Config {
	return Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		MigrateOnStart: getenvBool("MIGRATE_ON_START", true),
		JWTSecret:      getenv("JWT_SECRET", "dev-secret"),
		JWTIssuer:      getenv("JWT_ISSUER", "rollcall-registry"),
		VerifyTokenTTL: getenvDuration("VERIFY_TOKEN_TTL", 24*time.Hour),
		SchoolTokenTTL: getenvDuration("SCHOOL_TOKEN_TTL", time.Hour),
		LoginTokenTTL:  getenvDuration("LOGIN_TOKEN_TTL", 24*time.Hour),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		SendGridKey:    getenv("SENDGRID_KEY", ""),
		MailFromName:   getenv("MAIL_FROM_NAME", "Attendance System"),
		MailFromEmail:  getenv("MAIL_FROM_EMAIL", "no-reply@rollcall.local"),
		PublicBaseURL:  getenv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
