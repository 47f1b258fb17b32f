package transport

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"jinaai/internal/logging"
	"jinaai/internal/wire"
)

// CacheEntry holds a cached upstream payload.
type CacheEntry struct {
	Key        string
	Payload    wire.Payload
	Capability wire.Capability
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// ResponseCache is a bounded in-memory TTL cache of decoded payloads keyed
// by request fingerprint.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewResponseCache creates a new cache with the given size limit and TTL.
func NewResponseCache(maxSize int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a live entry by key.
func (c *ResponseCache) Get(key string) (*CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

// Set stores a payload.
func (c *ResponseCache) Set(key string, payload wire.Payload, capability wire.Capability) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	now := c.now()
	c.entries[key] = &CacheEntry{
		Key:        key,
		Payload:    payload,
		Capability: capability,
		CreatedAt:  now,
		ExpiresAt:  now.Add(c.ttl),
	}
}

// Delete removes an entry from the cache.
func (c *ResponseCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries from the cache.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*CacheEntry)
}

// Size returns the number of entries in the cache.
func (c *ResponseCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldest removes the oldest entry (by creation time).
func (c *ResponseCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.CreatedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.CreatedAt
		}
	}

	if oldestKey != "" {
		logging.TransportDebug("Cache evict: %s", oldestKey)
		delete(c.entries, oldestKey)
	}
}

// Fingerprint derives a stable key from everything that shapes the upstream
// response: method, URL, headers and body.
func Fingerprint(req *wire.CapabilityRequest) string {
	names := make([]string, 0, len(req.Headers))
	for name := range req.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(req.Method))
	h.Write([]byte{0})
	h.Write([]byte(req.URL))
	for _, name := range names {
		h.Write([]byte{0})
		h.Write([]byte(name))
		h.Write([]byte{'='})
		h.Write([]byte(req.Headers[name]))
	}
	if req.Body != nil {
		// encoding/json sorts map keys, so equal bodies hash equally.
		if b, err := json.Marshal(req.Body); err == nil {
			h.Write([]byte{0})
			h.Write(b)
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
