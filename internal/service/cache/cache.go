package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"TazeAI/internal/domain/models"
	"TazeAI/internal/service/metrics"
	"TazeAI/pkg/logger"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SignalsKey builds the analyzer cache key from an unordered symbol set.
func SignalsKey(symbols []string) string {
	s := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if sym = strings.ToUpper(strings.TrimSpace(sym)); sym != "" {
			s = append(s, sym)
		}
	}
	sort.Strings(s)
	return "signals:" + strings.Join(s, ",")
}

// SignalCache stores analyzer records as JSON in a BytesCache.
type SignalCache struct {
	backend BytesCache
	log     *logger.Logger
}

func NewSignalCache(backend BytesCache, log *logger.Logger) *SignalCache {
	if log == nil {
		log = logger.NewNop()
	}
	return &SignalCache{backend: backend, log: log}
}

func (c *SignalCache) Get(ctx context.Context, key string) ([]models.SignalRecord, bool) {
	b, ok, err := c.backend.GetBytes(ctx, key)
	if err != nil {
		c.log.Warn("signal cache get failed", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	metrics.CacheLookup(ok)
	if !ok {
		return nil, false
	}
	var out []models.SignalRecord
	if err := json.Unmarshal(b, &out); err != nil {
		c.log.Warn("signal cache entry is corrupt", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	return out, true
}

func (c *SignalCache) Set(ctx context.Context, key string, records []models.SignalRecord, ttl time.Duration) {
	b, err := json.Marshal(records)
	if err != nil {
		c.log.Warn("signal cache encode failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := c.backend.SetBytes(ctx, key, b, ttl); err != nil {
		c.log.Warn("signal cache set failed", logger.String("key", key), logger.Error(err))
	}
}
