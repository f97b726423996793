package pending

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MemoryStore keeps pending registrations in process memory. Expiry is
// checked lazily on every read, so the periodic sweep is cleanup only,
// never a correctness dependency. Signups started against one instance
// cannot be verified against another; deployments with more than one
// replica should use the redis store instead.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]Registration
	cooldown time.Duration
	logger   *logrus.Logger

	now func() time.Time
}

func NewMemoryStore(cooldown time.Duration, logger *logrus.Logger) *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]Registration),
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, email string, reg Registration, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if cur, ok := s.entries[email]; ok && cur.Live(now) {
		return false, nil
	}
	reg.IssuedAt = now
	reg.ExpiresAt = now.Add(ttl)
	s.entries[email] = reg
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, email string) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.entries[email]
	if !ok {
		return nil, ErrNotFound
	}
	if !cur.Live(s.now()) {
		delete(s.entries, email)
		return nil, ErrNotFound
	}
	out := cur
	return &out, nil
}

func (s *MemoryStore) ReplaceCode(_ context.Context, email, codeHash string, ttl time.Duration) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cur, ok := s.entries[email]
	if !ok || !cur.Live(now) {
		delete(s.entries, email)
		return nil, ErrNotFound
	}
	if wait := s.cooldown - now.Sub(cur.IssuedAt); wait > 0 {
		return nil, &CooldownError{Wait: wait}
	}
	cur.CodeHash = codeHash
	cur.IssuedAt = now
	cur.ExpiresAt = now.Add(ttl)
	s.entries[email] = cur
	out := cur
	return &out, nil
}

func (s *MemoryStore) Consume(_ context.Context, email string) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.entries[email]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.entries, email)
	out := cur
	return &out, nil
}

// Sweep removes expired entries and returns how many were dropped.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for email, cur := range s.entries {
		if !cur.Live(now) {
			delete(s.entries, email)
			removed++
		}
	}
	return removed
}

// Run owns the sweep lifecycle: it ticks at the given interval until the
// context is cancelled. Call from a goroutine at process start.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 && s.logger != nil {
				s.logger.WithField("removed", n).Debug("swept expired pending signups")
			}
		}
	}
}

var _ Store = (*MemoryStore)(nil)
