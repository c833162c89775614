package client

import (
	"log/slog"
	"sync"
	"time"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// DefaultShownTTL is how long a shown key suppresses repeats when the server
// gives no expiry. It covers the server's default medicine retention plus
// one poll.
const DefaultShownTTL = 5*time.Minute + DefaultPollInterval

// ShownCache remembers which occurrence keys this session already showed.
// It guards against several pollers and overlapping responses presenting
// the same occurrence while the server still holds it.
type ShownCache struct {
	mu     sync.Mutex
	shown  map[reminder.Key]time.Time
	ttl    time.Duration
	store  SessionStore
	now    func() time.Time
	logger *slog.Logger
}

// NewShownCache creates an empty cache. store may be nil.
func NewShownCache(ttl time.Duration, store SessionStore, logger *slog.Logger) *ShownCache {
	if ttl <= 0 {
		ttl = DefaultShownTTL
	}
	return &ShownCache{
		shown:  make(map[reminder.Key]time.Time),
		ttl:    ttl,
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// Load restores unexpired keys from the session store.
func (c *ShownCache) Load() {
	if c.store == nil {
		return
	}
	saved, err := c.store.Load()
	if err != nil {
		c.logger.Warn("load shown alerts", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, exp := range saved {
		if now.Before(exp) {
			c.shown[reminder.Key(k)] = exp
		}
	}
}

// Process returns the alerts of batch not shown within the TTL, in batch
// order, and marks them shown. A key repeated inside batch passes once. A
// shown key is kept until the later of its TTL and the alert's ExpiresAt.
func (c *ShownCache) Process(batch []reminder.Alert) []reminder.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, exp := range c.shown {
		if !now.Before(exp) {
			delete(c.shown, k)
		}
	}

	fresh := make([]reminder.Alert, 0, len(batch))
	for _, a := range batch {
		key := reminder.KeyFor(a)
		if _, seen := c.shown[key]; seen {
			continue
		}
		exp := now.Add(c.ttl)
		if a.ExpiresAt.After(exp) {
			exp = a.ExpiresAt
		}
		c.shown[key] = exp
		a.Key = key
		fresh = append(fresh, a)
	}

	if len(fresh) > 0 {
		c.persistLocked()
	}
	return fresh
}

// Clear forgets everything and removes the session store.
func (c *ShownCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shown = make(map[reminder.Key]time.Time)
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("clear shown alerts", "error", err)
		}
	}
}

// Len counts keys still suppressed.
func (c *ShownCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for _, exp := range c.shown {
		if now.Before(exp) {
			n++
		}
	}
	return n
}

func (c *ShownCache) persistLocked() {
	if c.store == nil {
		return
	}
	out := make(map[string]time.Time, len(c.shown))
	for k, exp := range c.shown {
		out[string(k)] = exp
	}
	if err := c.store.Save(out); err != nil {
		c.logger.Warn("save shown alerts", "error", err)
	}
}
