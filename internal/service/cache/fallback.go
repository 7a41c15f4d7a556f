package cache

import (
	"context"
	"sync/atomic"
	"time"

	"TazeAI/pkg/logger"
)

// FallbackCache writes through to a primary (Redis) and a local TTLCache, and
// serves from the local cache while the primary is failing.
type FallbackCache struct {
	primary BytesCache
	local   *TTLCache
	log     *logger.Logger
	healthy atomic.Bool
}

func NewFallbackCache(primary BytesCache, local *TTLCache, log *logger.Logger) *FallbackCache {
	if log == nil {
		log = logger.NewNop()
	}
	f := &FallbackCache{primary: primary, local: local, log: log}
	f.healthy.Store(true)
	return f
}

func (f *FallbackCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if f.primary != nil {
		b, ok, err := f.primary.GetBytes(ctx, key)
		if err == nil {
			f.markHealthy()
			if ok {
				return b, true, nil
			}
		} else {
			f.markDown(err)
		}
	}
	return f.local.GetBytes(ctx, key)
}

func (f *FallbackCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = f.local.SetBytes(ctx, key, value, ttl)
	if f.primary == nil {
		return nil
	}
	if err := f.primary.SetBytes(ctx, key, value, ttl); err != nil {
		f.markDown(err)
		return nil
	}
	f.markHealthy()
	return nil
}

func (f *FallbackCache) markDown(err error) {
	if f.healthy.CompareAndSwap(true, false) {
		f.log.Warn("cache primary unavailable, using memory fallback", logger.Error(err))
	}
}

func (f *FallbackCache) markHealthy() {
	if f.healthy.CompareAndSwap(false, true) {
		f.log.Info("cache primary recovered")
	}
}
