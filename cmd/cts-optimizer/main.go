package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/common/database"
	"github.com/vikas186/cts-optimizer-backend/internal/common/logger"
	"github.com/vikas186/cts-optimizer-backend/internal/common/mqtt"
	commonredis "github.com/vikas186/cts-optimizer-backend/internal/common/redis"
	"github.com/vikas186/cts-optimizer-backend/internal/config"
	"github.com/vikas186/cts-optimizer-backend/internal/events"
	httpapi "github.com/vikas186/cts-optimizer-backend/internal/http"
	"github.com/vikas186/cts-optimizer-backend/internal/repository"
	"github.com/vikas186/cts-optimizer-backend/internal/service"
	"github.com/vikas186/cts-optimizer-backend/internal/store"
	"github.com/vikas186/cts-optimizer-backend/migrations"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "cts-optimizer")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	deps := service.Deps{LockTTL: cfg.CalcLockTTL, Logger: log}
	var publishers events.Multi

	// DB 不可用时回落到内存存储（数据不持久化）
	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for cts-optimizer")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		}
	}
	if db != nil {
		if cfg.DBAutoMigrate {
			if err := migrations.Up(db); err != nil {
				log.Fatal("Failed to apply migrations", zap.Error(err))
			}
		}
		deps.Dimensions = repository.NewPostgresDimensionRepository(db)
		deps.Facts = repository.NewPostgresFactRepository(db)
		deps.Results = repository.NewPostgresResultRepository(db)
		deps.TenantData = repository.NewPostgresTenantDataRepository(db)
	} else {
		mem := repository.NewMemoryStore()
		deps.Dimensions = mem
		deps.Facts = mem
		deps.Results = mem
		deps.TenantData = mem
	}

	// Redis：租户锁、最近导入摘要、事件流
	var redisClient *commonredis.Client
	if cfg.RedisEnabled {
		c := commonredis.NewRedisClient(&cfg.Redis)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := commonredis.Ping(pingCtx, c)
		pingCancel()
		if err == nil {
			redisClient = c
			deps.KV = store.NewRedisKV(c)
			deps.Locker = store.NewRedisLocker(c)
			publishers = append(publishers, events.NewRedisStreamPublisher(c, cfg.Events.Stream, cfg.Events.StreamMaxLen))
			log.Info("Redis enabled for cts-optimizer", zap.String("addr", cfg.Redis.Addr))
		} else {
			log.Warn("Redis enabled but ping failed, running without run lock", zap.Error(err))
			_ = c.Close()
		}
	}

	var mqttClient *mqtt.Client
	if cfg.Events.MQTTEnabled {
		if c, err := mqtt.NewClient(&cfg.Events.MQTT); err == nil {
			mqttClient = c
			publishers = append(publishers, events.NewMQTTPublisher(c, cfg.Events.MQTTTopic))
		} else {
			log.Warn("MQTT enabled but connection failed, events will not be sent to MQTT", zap.Error(err))
		}
	}
	if cfg.Events.WebhookURL != "" {
		publishers = append(publishers, events.NewWebhookPublisher(cfg.Events.WebhookURL, cfg.Events.WebhookTimeout))
	}
	if len(publishers) > 0 {
		deps.Events = publishers
	}

	auth := httpapi.NewTenantAuth(cfg.Auth.JWTSecret, cfg.Auth.TenantClaim, log)
	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, tenant is taken from X-Tenant-Id header")
	}

	router := httpapi.NewRouter(auth, log)
	router.RegisterHealthRoutes()
	router.RegisterUploadRoutes(httpapi.NewUploadHandler(service.NewImportService(deps), cfg.HTTP.UploadMaxBytes, log))
	router.RegisterCalculateRoutes(httpapi.NewCalculateHandler(service.NewCalculationService(deps), log))
	router.RegisterDataRoutes(httpapi.NewDataHandler(service.NewQueryService(deps), log))
	router.RegisterExportRoutes(httpapi.NewExportHandler(service.NewExportService(deps), log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = commonredis.Close(redisClient)
	_ = database.Close(db)
}
