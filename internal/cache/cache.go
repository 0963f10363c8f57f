package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talent-ranker/internal/types"
)

// Defaults for the result cache.
const (
	DefaultMaxEntries = 100
	DefaultTTL        = 12 * time.Hour
)

// keyPrefix namespaces cache keys in the persistent store.
const keyPrefix = "analysis:"

// entry wraps an AnalysisResult with the metadata that controls its
// validity: the criteria fingerprint it was produced under and when it was
// stored. Expiry is checked lazily on read; there is no background sweep.
type entry struct {
	Result      types.AnalysisResult `json:"result"`
	Fingerprint string               `json:"fingerprint"`
	StoredAt    time.Time            `json:"stored_at"`

	size int // serialized size, for stats only; not persisted
}

// Stats describes the cache's current shape.
type Stats struct {
	Entries         int           `json:"entries"`
	ApproxSizeBytes int           `json:"approx_size_bytes"`
	MaxEntries      int           `json:"max_entries"`
	TTL             time.Duration `json:"ttl"`
}

// ResultCache maps (candidate ID, criteria fingerprint) to a previously
// computed analysis result. Eviction is FIFO by insertion order once the
// entry cap is exceeded, and entries expire lazily after the TTL. Safe for
// concurrent use.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string // insertion order, oldest first
	maxEntries int
	ttl        time.Duration
	store      Store
	logger     *zap.Logger
	now        func() time.Time
}

// NewResultCache creates a cache with the given bounds. Non-positive
// arguments fall back to the defaults.
func NewResultCache(maxEntries int, ttl time.Duration, logger *zap.Logger) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultCache{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// WithStore attaches a persistent backing store. Writes go through to the
// store best-effort; reads fall back to it on memory misses.
func (c *ResultCache) WithStore(store Store) *ResultCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = store
	return c
}

// WithClock overrides the cache's time source. Tests use this to simulate
// TTL expiry without sleeping.
func (c *ResultCache) WithClock(now func() time.Time) *ResultCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns the cached result for (candidateID, fingerprint) if present
// and unexpired. An expired entry is deleted and reported as a miss.
func (c *ResultCache) Get(ctx context.Context, candidateID, fingerprint string) (types.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(ctx, candidateID, fingerprint)
}

func (c *ResultCache) getLocked(ctx context.Context, candidateID, fingerprint string) (types.AnalysisResult, bool) {
	key := cacheKey(candidateID, fingerprint)

	if e, ok := c.entries[key]; ok {
		if c.expired(e) {
			c.deleteLocked(ctx, key)
			return types.AnalysisResult{}, false
		}
		return e.Result, true
	}

	if c.store == nil {
		return types.AnalysisResult{}, false
	}
	return c.loadFromStoreLocked(ctx, key, fingerprint)
}

// loadFromStoreLocked attempts a read-through from the persistent store. A
// stored entry that fails to decode is corrupt: it is deleted and treated
// as a miss, never surfaced as an error.
func (c *ResultCache) loadFromStoreLocked(ctx context.Context, key, fingerprint string) (types.AnalysisResult, bool) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache store read failed", zap.String("key", key), zap.Error(err))
		return types.AnalysisResult{}, false
	}
	if !ok {
		return types.AnalysisResult{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("deleting corrupt cache entry", zap.String("key", key), zap.Error(err))
		if derr := c.store.Delete(ctx, key); derr != nil {
			c.logger.Warn("failed to delete corrupt cache entry", zap.String("key", key), zap.Error(derr))
		}
		return types.AnalysisResult{}, false
	}

	if e.Fingerprint != fingerprint || c.expired(&e) {
		return types.AnalysisResult{}, false
	}

	e.size = len(data)
	c.insertLocked(ctx, key, &e)
	return e.Result, true
}

// Put stores a result under (candidateID, fingerprint), evicting the
// oldest-inserted entries if the cap is exceeded.
func (c *ResultCache) Put(ctx context.Context, candidateID, fingerprint string, result types.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(candidateID, fingerprint)
	e := &entry{
		Result:      result,
		Fingerprint: fingerprint,
		StoredAt:    c.now(),
	}

	data, err := json.Marshal(e)
	if err != nil {
		// AnalysisResult contains only marshalable fields; treat this as a
		// store-only loss and keep the in-memory entry usable.
		c.logger.Warn("failed to serialize cache entry", zap.String("key", key), zap.Error(err))
	} else {
		e.size = len(data)
		if c.store != nil {
			if serr := c.store.Set(ctx, key, data); serr != nil {
				c.logger.Warn("cache store write failed", zap.String("key", key), zap.Error(serr))
			}
		}
	}

	c.insertLocked(ctx, key, e)
}

func (c *ResultCache) insertLocked(ctx context.Context, key string, e *entry) {
	if _, exists := c.entries[key]; exists {
		// Latest write wins; the key keeps its original queue position.
		c.entries[key] = e
		return
	}

	c.entries[key] = e
	c.order = append(c.order, key)

	for len(c.entries) > c.maxEntries {
		oldest := c.order[0]
		c.deleteLocked(ctx, oldest)
	}
}

func (c *ResultCache) deleteLocked(ctx context.Context, key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if c.store != nil {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("cache store delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// BatchLookup is the result of a GetBatch partition.
type BatchLookup struct {
	Hits       []types.AnalysisResult
	MissingIDs []string
}

// GetBatch partitions candidate IDs into cache hits and misses for one
// criteria fingerprint. Hit order follows the input ID order.
func (c *ResultCache) GetBatch(ctx context.Context, candidateIDs []string, fingerprint string) BatchLookup {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lookup BatchLookup
	for _, id := range candidateIDs {
		if result, ok := c.getLocked(ctx, id, fingerprint); ok {
			lookup.Hits = append(lookup.Hits, result)
		} else {
			lookup.MissingIDs = append(lookup.MissingIDs, id)
		}
	}
	return lookup
}

// Clear drops every entry, including persisted ones.
func (c *ResultCache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.order = nil

	if c.store == nil {
		return
	}
	keys, err := c.store.Keys(ctx, keyPrefix)
	if err != nil {
		c.logger.Warn("cache store clear failed", zap.Error(err))
		return
	}
	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("cache store delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Stats reports the cache's current entry count, approximate serialized
// size, and configured bounds.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := 0
	for _, e := range c.entries {
		size += e.size
	}
	return Stats{
		Entries:         len(c.entries),
		ApproxSizeBytes: size,
		MaxEntries:      c.maxEntries,
		TTL:             c.ttl,
	}
}

func (c *ResultCache) expired(e *entry) bool {
	return c.now().Sub(e.StoredAt) >= c.ttl
}

func cacheKey(candidateID, fingerprint string) string {
	return keyPrefix + candidateID + ":" + fingerprint
}
