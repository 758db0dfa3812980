package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// AI providers
	GLMAPIKey string
	GLMAPIURL string
	GLMModel  string

	DeepSeekAPIKey string
	DeepSeekAPIURL string
	DeepSeekModel  string

	AITimeout time.Duration

	// Payments
	PaymentWebhookSecret string
	ProDurationDays      int

	// Entitlement limits
	FreeMaxConversations int
	FreeDailySubmissions int
	ProMonthlyCredits    int

	// Renewal reminders
	ReminderWindowDays int
	ReminderBatchSize  int
	ReminderCron       string

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "chatlens_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		GLMAPIKey: getEnv("GLM_API_KEY", ""),
		GLMAPIURL: getEnv("GLM_API_URL", "https://api.z.ai/api/paas/v4/chat/completions"),
		GLMModel:  getEnv("GLM_MODEL", "glm-4-plus"),

		DeepSeekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekAPIURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		DeepSeekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),

		AITimeout: parseDuration(getEnv("AI_TIMEOUT", "60s")),

		PaymentWebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		ProDurationDays:      parseInt(getEnv("PRO_DURATION_DAYS", "30")),

		FreeMaxConversations: parseInt(getEnv("FREE_MAX_CONVERSATIONS", "5")),
		FreeDailySubmissions: parseInt(getEnv("FREE_DAILY_SUBMISSIONS", "3")),
		ProMonthlyCredits:    parseInt(getEnv("PRO_MONTHLY_CREDITS", "200")),

		ReminderWindowDays: parseInt(getEnv("REMINDER_WINDOW_DAYS", "3")),
		ReminderBatchSize:  parseInt(getEnv("REMINDER_BATCH_SIZE", "100")),
		ReminderCron:       getEnv("REMINDER_CRON", "0 9 * * *"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     parseInt(getEnv("SMTP_PORT", "587")),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "ChatLens <no-reply@chatlens.app>"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
