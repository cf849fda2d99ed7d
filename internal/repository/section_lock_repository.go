package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLock deletes the key only while it still holds our token, so an
// expired lock re-acquired by another run is left alone.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// SectionLockRepository is a Redis advisory lock serialising generation per section.
type SectionLockRepository struct {
	client *redis.Client
	prefix string
}

// NewSectionLockRepository builds a lock repository. A nil client disables locking.
func NewSectionLockRepository(client *redis.Client) *SectionLockRepository {
	return &SectionLockRepository{client: client, prefix: "timetable:lock"}
}

// Key builds the lock key for a tenant/session/section.
func (r *SectionLockRepository) Key(tenantID, sessionID, sectionID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", r.prefix, tenantID, sessionID, sectionID)
}

// Acquire tries to take the lock with SET NX PX. It returns the token needed to
// release, and false when another run holds the lock.
func (r *SectionLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	if r.client == nil {
		return token, true, nil
	}
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock if token still owns it.
func (r *SectionLockRepository) Release(ctx context.Context, key, token string) error {
	if r.client == nil || token == "" {
		return nil
	}
	if err := releaseLock.Run(ctx, r.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
