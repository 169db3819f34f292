package cache

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"marketplace/internal/config"
)

func MakeCache(cfg config.CacheConfig, azure config.AzureConfig) (Cache, error) {
	switch cfg.Backend {
	case "redis":
		slog.Info("Using redis for cache", "address", cfg.RedisAddr)
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisCache(client, "marketplace:"), nil
	case "blob":
		slog.Info("Using Azure Blob Storage for cache", "container", cfg.Container)
		return NewBlobCache(azure.AccountName, azure.AccountKey, cfg.Container)
	case "file":
		slog.Info("Using local files for cache", "dir", cfg.Dir)
		return NewFileCache(cfg.Dir), nil
	case "memory", "":
		return NewInMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
