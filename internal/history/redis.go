package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "mock-interviewer:history"

// RedisOptions configures the redis backend.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379/0").
	URL string `mapstructure:"url"`
	// Prefix namespaces every key written by the store.
	Prefix string `mapstructure:"prefix"`
	// ConnectTimeout is the maximum time to wait for connection establishment.
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

// Redis stores each record as a JSON string and indexes it in a per-user sorted set
// scored by creation time.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Store = (*Redis)(nil)

func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultRedisPrefix
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Redis{client: client, prefix: strings.TrimSuffix(opts.Prefix, ":")}, nil
}

func (r *Redis) recordKey(id string) string {
	return r.prefix + ":record:" + id
}

func (r *Redis) userKey(email string) string {
	return r.prefix + ":user:" + NormalizeEmail(email)
}

func (r *Redis) Save(ctx context.Context, rec Record) error {
	if NormalizeEmail(rec.UserEmail) == "" || rec.ID == "" {
		return fmt.Errorf("%w: id and user email are required", ErrInvalidRecord)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.recordKey(rec.ID), data, 0)
		pipe.ZAdd(ctx, r.userKey(rec.UserEmail), redis.Z{
			Score:  float64(rec.CreatedAt.UnixMilli()),
			Member: rec.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *Redis) ListByUser(ctx context.Context, email string) ([]Record, error) {
	ids, err := r.client.ZRevRange(ctx, r.userKey(email), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list record ids: %w", err)
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	records := make([]Record, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// index entry without a record body
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record %s: %w", ids[i], err)
		}
		records = append(records, rec)
	}
	sortNewestFirst(records)
	return records, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
