package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key layout. Keeping the prefix here makes flushes predictable.
const keyMeetingSnapshot = "mm:meetings:snapshot"

// ErrMiss is returned when the requested entry is absent or expired.
var ErrMiss = errors.New("cache miss")

// SnapshotStore caches the last reconciled meeting list so a total source
// outage can still serve a stale view.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore creates a snapshot store with the given entry TTL.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// PutMeetings stores the reconciled snapshot. Marshal failures are returned
// so callers can log them; cache writes are never fatal to a load.
func (s *SnapshotStore) PutMeetings(ctx context.Context, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyMeetingSnapshot, b, s.ttl).Err()
}

// GetMeetings loads the cached snapshot into out.
func (s *SnapshotStore) GetMeetings(ctx context.Context, out interface{}) error {
	b, err := s.client.Get(ctx, keyMeetingSnapshot).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal(b, out)
}

// Invalidate drops the meeting snapshot, forcing the next read to reconcile.
func (s *SnapshotStore) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, keyMeetingSnapshot).Err()
}
