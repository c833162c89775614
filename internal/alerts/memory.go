package alerts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

type entry struct {
	alert     reminder.Alert
	expiresAt time.Time
	seq       uint64
}

// MemoryQueue is a process-local Queue. Running more than one server
// process against it allows duplicate medicine alerts across processes; use
// RedisQueue for that deployment.
type MemoryQueue struct {
	mu      sync.RWMutex
	entries map[reminder.Key]entry
	byUser  map[string]map[reminder.Key]struct{}
	seq     uint64
	now     func() time.Time
}

// NewMemoryQueue creates an empty queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		entries: make(map[reminder.Key]entry),
		byUser:  make(map[string]map[reminder.Key]struct{}),
		now:     time.Now,
	}
}

// Record implements Queue. An expired entry under the same key is replaced.
func (q *MemoryQueue) Record(_ context.Context, a reminder.Alert, ttl time.Duration) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	if e, ok := q.entries[a.Key]; ok {
		if now.Before(e.expiresAt) {
			return false, nil
		}
		q.removeLocked(a.Key, e.alert.UserID)
	}

	q.seq++
	q.entries[a.Key] = entry{alert: a, expiresAt: now.Add(ttl), seq: q.seq}
	keys, ok := q.byUser[a.UserID]
	if !ok {
		keys = make(map[reminder.Key]struct{})
		q.byUser[a.UserID] = keys
	}
	keys[a.Key] = struct{}{}
	return true, nil
}

// Drain implements Queue.
func (q *MemoryQueue) Drain(_ context.Context, userID string, kind reminder.Kind) ([]reminder.Alert, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var found []entry
	for key := range q.byUser[userID] {
		e := q.entries[key]
		if e.alert.Kind != kind || !now.Before(e.expiresAt) {
			continue
		}
		found = append(found, e)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	out := make([]reminder.Alert, 0, len(found))
	for _, e := range found {
		out = append(out, e.alert)
		if kind.OneTime() {
			q.removeLocked(e.alert.Key, userID)
		}
	}
	return out, nil
}

// EvictExpired implements Queue.
func (q *MemoryQueue) EvictExpired(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	n := 0
	for key, e := range q.entries {
		if !now.Before(e.expiresAt) {
			q.removeLocked(key, e.alert.UserID)
			n++
		}
	}
	return n, nil
}

// Len implements Queue.
func (q *MemoryQueue) Len(_ context.Context) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	now := q.now()
	n := 0
	for _, e := range q.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n, nil
}

func (q *MemoryQueue) removeLocked(key reminder.Key, userID string) {
	delete(q.entries, key)
	if keys, ok := q.byUser[userID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(q.byUser, userID)
		}
	}
}
