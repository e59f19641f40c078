package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "github.com/vikas186/cts-optimizer-backend/internal/common/config"

	"github.com/joho/godotenv"
)

// Config cts-optimizer（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
		// UploadMaxBytes 上传 Excel 文件的最大字节数
		UploadMaxBytes int64
	}
	DBEnabled     bool
	DBAutoMigrate bool
	Database      commoncfg.DatabaseConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	Log struct {
		Level  string
		Format string
	}

	Auth AuthConfig

	// CalcLockTTL 同一租户计算/导入互斥锁的过期时间（需要 Redis）。
	// 运行期间每 TTL/3 续期一次，只有进程崩溃时锁才会保留到过期

	CalcLockTTL time.Duration

	Events EventsConfig
}

// AuthConfig 租户身份解析配置
type AuthConfig struct {
	// JWTSecret 为空时使用 X-Tenant-Id 头（仅限开发环境）
	JWTSecret string
	// TenantClaim JWT 中携带租户 ID 的 claim 名称
	TenantClaim string
}

// EventsConfig 计算/导入完成事件的发布配置
type EventsConfig struct {
	Stream       string // Redis Stream 名称（Redis 启用时生效）
	StreamMaxLen int64

	MQTTEnabled bool
	MQTT        commoncfg.MQTTConfig
	MQTTTopic   string

	WebhookURL     string
	WebhookTimeout time.Duration
}

func Load() *Config {
	// 本地开发可以放 .env，文件不存在时忽略
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.UploadMaxBytes = int64(parseInt(getEnv("UPLOAD_MAX_MB", "10"), 10)) << 20

	// 默认启用 DB；连接失败时回落到内存存储
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.DBAutoMigrate = getEnv("DB_AUTO_MIGRATE", "false") == "true"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "cts_optimizer"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 20
	cfg.Database.MaxIdle = 5
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.TenantClaim = getEnv("JWT_TENANT_CLAIM", "organization_id")

	// CALC_LOCK_TTL_SEC 决定崩溃后租户被锁住的最长时间，不限制单次运行时长
	cfg.CalcLockTTL = time.Duration(parseInt(getEnv("CALC_LOCK_TTL_SEC", "300"), 300)) * time.Second

	cfg.Events.Stream = getEnv("EVENTS_STREAM", "cts:events")
	cfg.Events.StreamMaxLen = int64(parseInt(getEnv("EVENTS_STREAM_MAXLEN", "10000"), 10000))

	// MQTT 事件（默认禁用）
	cfg.Events.MQTTEnabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.Events.MQTT.Broker = "tcp://localhost:1883"
	cfg.Events.MQTT.ClientID = "cts-optimizer"
	cfg.Events.MQTT.QoS = 1
	cfg.Events.MQTT.LoadFromEnv("MQTT")
	cfg.Events.MQTTTopic = getEnv("MQTT_TOPIC", "cts/events")

	cfg.Events.WebhookURL = getEnv("WEBHOOK_URL", "")
	cfg.Events.WebhookTimeout = time.Duration(parseInt(getEnv("WEBHOOK_TIMEOUT_SEC", "5"), 5)) * time.Second

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
