package pending

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func key(email string) string { return "signup:pending:" + email }

// RedisStore keeps pending registrations in Redis so a signup started on
// one instance can be verified on another. Redis key TTLs replace the
// periodic sweep; expiry is still checked on read for clock safety.
type RedisStore struct {
	rdb      *redis.Client
	cooldown time.Duration

	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, cooldown time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, cooldown: cooldown, now: time.Now}
}

func (s *RedisStore) Put(ctx context.Context, email string, reg Registration, ttl time.Duration) (bool, error) {
	now := s.now()
	reg.IssuedAt = now
	reg.ExpiresAt = now.Add(ttl)
	b, err := json.Marshal(reg)
	if err != nil {
		return false, err
	}
	// SET NX is the atomic insert-if-absent; a concurrent duplicate signup
	// loses the race here and its code is discarded unsent.
	return s.rdb.SetNX(ctx, key(email), b, ttl).Result()
}

func (s *RedisStore) Get(ctx context.Context, email string) (*Registration, error) {
	b, err := s.rdb.Get(ctx, key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var reg Registration
	if err := json.Unmarshal(b, &reg); err != nil {
		return nil, err
	}
	if !reg.Live(s.now()) {
		_ = s.rdb.Del(ctx, key(email)).Err()
		return nil, ErrNotFound
	}
	return &reg, nil
}

func (s *RedisStore) ReplaceCode(ctx context.Context, email, codeHash string, ttl time.Duration) (*Registration, error) {
	k := key(email)
	var out *Registration

	// Optimistic lock so a concurrent verify/consume aborts the replace.
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var reg Registration
		if err := json.Unmarshal(b, &reg); err != nil {
			return err
		}
		now := s.now()
		if !reg.Live(now) {
			return ErrNotFound
		}
		if wait := s.cooldown - now.Sub(reg.IssuedAt); wait > 0 {
			return &CooldownError{Wait: wait}
		}
		reg.CodeHash = codeHash
		reg.IssuedAt = now
		reg.ExpiresAt = now.Add(ttl)
		nb, err := json.Marshal(reg)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, nb, ttl)
			return nil
		})
		if err == nil {
			out = &reg
		}
		return err
	}, k)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) Consume(ctx context.Context, email string) (*Registration, error) {
	b, err := s.rdb.GetDel(ctx, key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var reg Registration
	if err := json.Unmarshal(b, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

var _ Store = (*RedisStore)(nil)
