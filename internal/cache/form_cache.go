package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"saasadmin/internal/model"
)

// FormCache holds hydrated forms so submissions avoid a Mongo read per request
type FormCache interface {
	Get(ctx context.Context, id int64) (*model.Form, error)
	Set(ctx context.Context, form *model.Form) error
	Invalidate(ctx context.Context, id int64) error
	GetIDByPublicKey(ctx context.Context, publicKey string) (int64, error)
	SetPublicKey(ctx context.Context, publicKey string, id int64) error
}

type formCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFormCache creates a new form cache
func NewFormCache(client *redis.Client, ttl time.Duration) FormCache {
	return &formCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *formCache) key(id int64) string {
	return fmt.Sprintf("form:%d", id)
}

func (c *formCache) publicKey(publicKey string) string {
	return fmt.Sprintf("form:pk:%s", publicKey)
}

func (c *formCache) Get(ctx context.Context, id int64) (*model.Form, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var form model.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func (c *formCache) Set(ctx context.Context, form *model.Form) error {
	data, err := json.Marshal(form)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(form.ID), data, c.ttl).Err()
}

func (c *formCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

// GetIDByPublicKey returns 0 when the key is not cached
func (c *formCache) GetIDByPublicKey(ctx context.Context, publicKey string) (int64, error) {
	v, err := c.client.Get(ctx, c.publicKey(publicKey)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (c *formCache) SetPublicKey(ctx context.Context, publicKey string, id int64) error {
	return c.client.Set(ctx, c.publicKey(publicKey), id, c.ttl).Err()
}
