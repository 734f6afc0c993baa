package credstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	fieldAccess  = "access"
	fieldRefresh = "refresh"
)

// Redis stores the session as a two-field hash, for deployments where the
// client runs behind several replicas that must share one portal session.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis creates a redis-backed store. The session lives under
// "<prefix>:session"; prefix defaults to "fhub" when empty.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "fhub"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key() string {
	return r.prefix + ":session"
}

// Get reads both credential slots. A missing key is the absent session.
func (r *Redis) Get(ctx context.Context) (Session, error) {
	vals, err := r.rdb.HMGet(ctx, r.key(), fieldAccess, fieldRefresh).Result()
	if err != nil {
		return Session{}, fmt.Errorf("credstore: redis get: %w", err)
	}

	var s Session
	if v, ok := vals[0].(string); ok {
		s.Access = v
	}
	if v, ok := vals[1].(string); ok {
		s.Refresh = v
	}
	return s, nil
}

// Set writes both slots atomically.
func (r *Redis) Set(ctx context.Context, s Session) error {
	err := r.rdb.HSet(ctx, r.key(), fieldAccess, s.Access, fieldRefresh, s.Refresh).Err()
	if err != nil {
		return fmt.Errorf("credstore: redis set: %w", err)
	}
	return nil
}

// Clear deletes the session key. Deleting an absent key is a no-op.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("credstore: redis clear: %w", err)
	}
	return nil
}
