package checkpoint

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
	"github.com/lxopi/repgo/pkg/common/validation"
)

// RedisStore persists checkpoints in Redis, for jobs whose workers move
// between hosts. The last-run timestamp lives in a plain key and the per-key
// memory in a hash, both under the configured prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore writing under prefix. Keys become
// "<prefix>:last_run" and "<prefix>:memory".
func NewRedisStore(client *redis.Client, prefix string) (*RedisStore, error) {
	if err := validation.ValidateNotNil("checkpoint", "client", client); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty("checkpoint", "prefix", prefix); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (rs *RedisStore) lastRunKey() string { return rs.prefix + ":last_run" }
func (rs *RedisStore) memoryKey() string  { return rs.prefix + ":memory" }

// LastRun loads the stored timestamp, defaulting to the current time when
// the key is absent. Connection errors are returned; they are not a missing
// checkpoint.
func (rs *RedisStore) LastRun(ctx context.Context) (time.Time, error) {
	raw, err := rs.client.Get(ctx, rs.lastRunKey()).Result()
	if err == redis.Nil {
		return time.Now(), nil
	}
	if err != nil {
		return time.Time{}, rgerrors.NewOperationError("checkpoint", "lastrun", err)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Now(), nil
	}
	return t, nil
}

// SetLastRun stores t. A zero t means now.
func (rs *RedisStore) SetLastRun(ctx context.Context, t time.Time) error {
	if t.IsZero() {
		t = time.Now()
	}
	if err := rs.client.Set(ctx, rs.lastRunKey(), t.Format(time.RFC3339Nano), 0).Err(); err != nil {
		return rgerrors.NewOperationError("checkpoint", "setlastrun", err)
	}
	return nil
}

// Memory loads the stored per-key timestamps, defaulting to an empty map
// when the hash is absent.
func (rs *RedisStore) Memory(ctx context.Context) (map[int]time.Time, error) {
	raw, err := rs.client.HGetAll(ctx, rs.memoryKey()).Result()
	if err != nil {
		return nil, rgerrors.NewOperationError("checkpoint", "memory", err)
	}

	memory := make(map[int]time.Time, len(raw))
	for k, v := range raw {
		key, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			continue
		}
		memory[key] = t
	}
	return memory, nil
}

// SetMemory replaces the stored per-key timestamps.
func (rs *RedisStore) SetMemory(ctx context.Context, memory map[int]time.Time) error {
	fields := make(map[string]interface{}, len(memory))
	for k, v := range memory {
		fields[strconv.Itoa(k)] = v.Format(time.RFC3339Nano)
	}

	pipe := rs.client.Pipeline()
	pipe.Del(ctx, rs.memoryKey())
	if len(fields) > 0 {
		pipe.HSet(ctx, rs.memoryKey(), fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return rgerrors.NewOperationError("checkpoint", "setmemory", err)
	}
	return nil
}
