package bootstrap

import (
	"course_gen_backend/config"
	"course_gen_backend/pkg/logging"
	"course_gen_backend/platform/cancel"
	"course_gen_backend/platform/database"
	"course_gen_backend/platform/events"
	"course_gen_backend/platform/genai"
	"course_gen_backend/platform/progress"
	"course_gen_backend/platform/redis"
	"course_gen_backend/platform/storage"
)

// Infrastructure holds the shared runtime objects. Redis, DB and Storage are
// nil when not configured.
type Infrastructure struct {
	DB        *database.DB
	Redis     *redis.Service
	Storage   *storage.Service
	Generator genai.Generator

	Hub       *progress.Hub
	Cancels   cancel.Registry
	Publisher *events.ProgressPublisher
}

func NewInfrastructure(cfg *config.Config) (*Infrastructure, error) {
	infra := &Infrastructure{
		Hub:       progress.NewHub(),
		Generator: genai.NewClient(cfg),
	}

	if cfg.DatabaseEnabled() {
		db, err := database.InitPostgres(cfg)
		if err != nil {
			return nil, err
		}
		infra.DB = db
		if err := infra.DB.AutoMigrate(); err != nil {
			_ = infra.Shutdown()
			return nil, err
		}
	} else {
		logging.Logger.Info("Postgres not configured, generation runs are not recorded")
	}

	if cfg.RedisURL != "" {
		redisService, err := redis.InitRedis(cfg)
		if err != nil {
			logging.Logger.Error("fail Initializing Redis", "error", err)
			_ = infra.Shutdown()
			return nil, err
		}
		infra.Redis = redisService
		infra.Cancels = cancel.NewRedisRegistry(redisService.Rdb, cfg.CancelTTL)
		infra.Publisher = events.NewProgressPublisher(redisService.Rdb, cfg.ProgressChannel)
	} else {
		infra.Cancels = cancel.NewMemoryRegistry(cfg.CancelTTL)
		logging.Logger.Info("Redis not configured, using in-process cancellation and progress")
	}

	if cfg.StorageEnabled() {
		storageService, err := storage.InitStorageService(cfg)
		if err != nil {
			logging.Logger.Error("fail Initializing Bucket", "error", err)
			_ = infra.Shutdown()
			return nil, err
		}
		infra.Storage = storageService
	}

	return infra, nil
}

func (infra *Infrastructure) Shutdown() error {
	var firstErr error
	if infra.DB != nil {
		if err := infra.DB.Close(); err != nil {
			logging.Logger.Error("fail closing database", "error", err)
			firstErr = err
		}
	}
	if infra.Redis != nil {
		if err := infra.Redis.Close(); err != nil {
			logging.Logger.Error("fail closing redis", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
