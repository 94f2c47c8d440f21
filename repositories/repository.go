package repositories

import (
	"SmartClinic/cache"
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DirectoryCacheExpiry = 10 * time.Minute
	directoryCachePrefix = "directory:"
)

var (
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
	// ErrNotFound is returned by writes that matched no row.
	ErrNotFound = errors.New("record not found")
)

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// readCache decodes a cached JSON value into dest and reports a hit.
func readCache(ctx context.Context, store cache.Store, log *zap.Logger, key string, dest interface{}) bool {
	cached, err := store.Get(ctx, key)
	if err != nil {
		log.Warn("failed to read cache", zap.String("key", key), zap.Error(err))
		return false
	}
	if cached == "" {
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		log.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func writeCache(ctx context.Context, store cache.Store, log *zap.Logger, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Warn("failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := store.Set(ctx, key, payload, ttl); err != nil {
		log.Warn("failed to write cache", zap.String("key", key), zap.Error(err))
	}
}

// invalidateDirectory drops every cached directory read. The write has
// already committed, so failures are logged and not returned.
func invalidateDirectory(ctx context.Context, store cache.Store, log *zap.Logger) {
	if err := store.DeleteAll(ctx, directoryCachePrefix+"*"); err != nil {
		log.Warn("failed to invalidate directory cache", zap.Error(err))
	}
}
