package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinical-dashboard/internal/cache"
	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/models"
)

// CachedAPI serves roster pages from a KV store for a short TTL and passes
// every other call straight through. Per-patient data is never cached.
type CachedAPI struct {
	API
	kv     cache.KV
	ttl    time.Duration
	logger *logging.Logger
}

func NewCached(api API, kv cache.KV, ttl time.Duration, logger *logging.Logger) *CachedAPI {
	return &CachedAPI{API: api, kv: kv, ttl: ttl, logger: logger}
}

func rosterKey(page, pageSize int) string {
	return fmt.Sprintf("dashboard:roster:%d:%d", page, pageSize)
}

func (c *CachedAPI) ListPatients(ctx context.Context, page, pageSize int) (models.PatientPage, error) {
	key := rosterKey(page, pageSize)
	raw, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		var out models.PatientPage
		if jerr := json.Unmarshal([]byte(raw), &out); jerr == nil {
			return out, nil
		}
		c.logger.Warnf("Discarding unreadable roster cache entry %s", key)
		if derr := c.kv.Delete(ctx, key); derr != nil {
			c.logger.Warnf("Roster cache evict failed: %v", derr)
		}
	case !errors.Is(err, cache.ErrMiss):
		c.logger.Warnf("Roster cache read failed: %v", err)
	}

	out, err := c.API.ListPatients(ctx, page, pageSize)
	if err != nil {
		return out, err
	}
	if b, jerr := json.Marshal(out); jerr == nil {
		if serr := c.kv.Set(ctx, key, string(b), c.ttl); serr != nil {
			c.logger.Warnf("Roster cache write failed: %v", serr)
		}
	}
	return out, nil
}
