package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "pkr", cfg.Currency)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec_x")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "whsec_x", cfg.WebhookSecret)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("GATEWAY_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
}
