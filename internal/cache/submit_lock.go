package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SubmitLock serializes submissions of one respondent to one form, closing
// the gap between the duplicate check and the insert.
type SubmitLock interface {
	// Acquire returns a release token, or "" if the lock is held elsewhere
	Acquire(ctx context.Context, formID int64, emailKey string) (string, error)
	Release(ctx context.Context, formID int64, emailKey, token string) error
}

type submitLock struct {
	client *redis.Client
	ttl    time.Duration
}

// Deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewSubmitLock creates a new submit lock
func NewSubmitLock(client *redis.Client, ttl time.Duration) SubmitLock {
	return &submitLock{
		client: client,
		ttl:    ttl,
	}
}

func (c *submitLock) key(formID int64, emailKey string) string {
	return fmt.Sprintf("form:%d:submit:%s", formID, emailKey)
}

func (c *submitLock) Acquire(ctx context.Context, formID int64, emailKey string) (string, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, c.key(formID, emailKey), token, c.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (c *submitLock) Release(ctx context.Context, formID int64, emailKey, token string) error {
	return releaseScript.Run(ctx, c.client, []string{c.key(formID, emailKey)}, token).Err()
}
