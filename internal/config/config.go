package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPPort        string
	ClientURL       string
	MongoURI        string
	MongoDB         string
	PaymentAPIURL   string
	PaymentAPIKey   string
	WebhookSecret   string
	Currency        string
	RedisAddr       string
	KafkaBrokers    []string
	GatewayTimeout  time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ClientURL:       getEnv("CLIENT_URL", "http://localhost:5173"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "alif"),
		PaymentAPIURL:   getEnv("PAYMENT_API_URL", "https://api.payments.example.com"),
		PaymentAPIKey:   os.Getenv("PAYMENT_API_KEY"),
		WebhookSecret:   os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		Currency:        getEnv("CURRENCY", "pkr"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBrokers:    splitCSV(os.Getenv("KAFKA_BROKERS")),
		GatewayTimeout:  getDuration("GATEWAY_TIMEOUT", 15*time.Second),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
