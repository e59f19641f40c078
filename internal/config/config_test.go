package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	for _, k := range []string{
		"HTTP_ADDR", "DB_ENABLED", "DB_HOST", "DB_PORT", "DB_NAME", "REDIS_ENABLED",
		"REDIS_ADDR", "LOG_LEVEL", "LOG_FORMAT", "JWT_SECRET", "UPLOAD_MAX_MB",
		"CALC_LOCK_TTL_SEC", "MQTT_ENABLED", "WEBHOOK_URL", "DB_CONN_MAX_LIFETIME",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, int64(10<<20), cfg.HTTP.UploadMaxBytes)
	assert.True(t, cfg.DBEnabled)
	assert.False(t, cfg.DBAutoMigrate)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "cts_optimizer", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, time.Duration(0), cfg.Database.ConnMaxLifetime)

	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "", cfg.Auth.JWTSecret)
	assert.Equal(t, "organization_id", cfg.Auth.TenantClaim)
	assert.Equal(t, 300*time.Second, cfg.CalcLockTTL)

	assert.Equal(t, "cts:events", cfg.Events.Stream)
	assert.False(t, cfg.Events.MQTTEnabled)
	assert.Equal(t, byte(1), cfg.Events.MQTT.QoS)
	assert.Equal(t, "", cfg.Events.WebhookURL)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "cts_test")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1800")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("UPLOAD_MAX_MB", "25")
	t.Setenv("CALC_LOCK_TTL_SEC", "60")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("WEBHOOK_URL", "http://hooks.local/cts")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, int64(25<<20), cfg.HTTP.UploadMaxBytes)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "cts_test", cfg.Database.Database)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 60*time.Second, cfg.CalcLockTTL)
	assert.True(t, cfg.Events.MQTTEnabled)
	assert.Equal(t, "tcp://broker:1883", cfg.Events.MQTT.Broker)
	assert.Equal(t, byte(2), cfg.Events.MQTT.QoS)
	assert.Equal(t, "http://hooks.local/cts", cfg.Events.WebhookURL)
}
