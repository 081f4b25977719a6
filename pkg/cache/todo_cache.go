package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TodoCacheTTL bounds how long an entry or a stage floor lives.
	TodoCacheTTL = 10 * time.Minute

	todoCacheKeyPrefix = "todo:item"
)

// Stage is the lifecycle position of an item. Items only move forward:
// open, then completed, then deleted.
type Stage int

const (
	StageOpen Stage = iota
	StageCompleted
	StageDeleted
)

// CachedItem is the read model of a todo item stored as a Redis hash.
type CachedItem struct {
	ID          uuid.UUID
	Text        string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Stage reports StageCompleted once CompletedAt is set.
func (i *CachedItem) Stage() Stage {
	if i.CompletedAt != nil {
		return StageCompleted
	}
	return StageOpen
}

// setScript writes the entry unless the floor or the current entry is at a
// later stage. KEYS: entry, floor. ARGV: stage, ttl ms, hash field pairs.
var setScript = redis.NewScript(`
local floor = tonumber(redis.call('GET', KEYS[2]) or '0')
local stage = tonumber(ARGV[1])
if stage < floor then return 0 end
local cur = redis.call('HGET', KEYS[1], 'stage')
if cur and tonumber(cur) > stage then return 0 end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// invalidateScript drops the entry and raises the floor, never lowering it.
// KEYS: entry, floor. ARGV: stage, ttl ms.
var invalidateScript = redis.NewScript(`
local floor = tonumber(redis.call('GET', KEYS[2]) or '0')
if tonumber(ARGV[1]) > floor then
  redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
else
  redis.call('PEXPIRE', KEYS[2], ARGV[2])
end
redis.call('DEL', KEYS[1])
return 1
`)

// TodoCache reads and writes item cache entries.
// Entry key: "todo:item:{itemID}"; stage floor: "todo:item:{itemID}:floor".
//
// A read that races a mutation may try to write the pre-mutation item after
// the mutation invalidated it. The floor left by Invalidate rejects that
// write, so the cache never moves an item backwards in its lifecycle.
type TodoCache struct {
	client *RedisClient
}

// NewTodoCache creates a TodoCache backed by the given RedisClient.
func NewTodoCache(r *RedisClient) *TodoCache {
	return &TodoCache{client: r}
}

// Get returns redis.Nil when the key does not exist or has expired.
func (c *TodoCache) Get(ctx context.Context, id uuid.UUID) (*CachedItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, todoKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}
	return decodeItem(vals)
}

// Set writes item with TodoCacheTTL. A write older than the item's recorded
// stage is dropped without error.
func (c *TodoCache) Set(ctx context.Context, item *CachedItem) error {
	args := append([]any{int(item.Stage()), TodoCacheTTL.Milliseconds()}, encodeItem(item)...)
	keys := []string{todoKey(item.ID), floorKey(item.ID)}
	if err := setScript.Run(ctx, c.client.Client(), keys, args...).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes the entry after the item reached stage, and rejects
// writes of earlier stages for TodoCacheTTL.
func (c *TodoCache) Invalidate(ctx context.Context, id uuid.UUID, stage Stage) error {
	keys := []string{todoKey(id), floorKey(id)}
	if err := invalidateScript.Run(ctx, c.client.Client(), keys, int(stage), TodoCacheTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func todoKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", todoCacheKeyPrefix, id)
}

func floorKey(id uuid.UUID) string {
	return todoKey(id) + ":floor"
}

func encodeItem(item *CachedItem) []any {
	completedAt := ""
	if item.CompletedAt != nil {
		completedAt = item.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	return []any{
		"id", item.ID.String(),
		"text", item.Text,
		"created_at", item.CreatedAt.UTC().Format(time.RFC3339Nano),
		"completed_at", completedAt,
		"stage", strconv.Itoa(int(item.Stage())),
	}
}

func decodeItem(vals map[string]string) (*CachedItem, error) {
	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	item := &CachedItem{ID: id, Text: vals["text"], CreatedAt: createdAt}
	if s := vals["completed_at"]; s != "" {
		at, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("cache parse completed_at: %w", err)
		}
		item.CompletedAt = &at
	}
	return item, nil
}
