package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("ESTIMATE_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "booking.events", cfg.Kafka.Topic)
	assert.Equal(t, int64(1), cfg.Payment.MinAmount)
	assert.Equal(t, int64(10000), cfg.Payment.MaxAmount)
}

func TestLoadReadsKafkaTopicFromEnv(t *testing.T) {
	t.Setenv("ESTIMATE_JWT_SECRET", "test-secret")
	t.Setenv("ESTIMATE_KAFKA_TOPIC", "booking.events.staging")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "booking.events.staging", cfg.Kafka.Topic)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("ESTIMATE_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvertedPaymentBounds(t *testing.T) {
	t.Setenv("ESTIMATE_JWT_SECRET", "test-secret")
	t.Setenv("ESTIMATE_PAYMENT_MIN_AMOUNT", "500")
	t.Setenv("ESTIMATE_PAYMENT_MAX_AMOUNT", "100")

	_, err := Load()
	assert.Error(t, err)
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, ":8080", normalizePort(""))
	assert.Equal(t, ":9000", normalizePort("9000"))
	assert.Equal(t, ":9000", normalizePort(":9000"))
}
