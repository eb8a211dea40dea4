// Package redis provides a Redis-backed runlog journal. Records for each
// run live in a list so append order is preserved, and run IDs are indexed
// in a set for listing.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/graphexio/graphex/runlog"
)

// RedisJournal implements runlog.Journal using Redis.
type RedisJournal struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ runlog.Journal = (*RedisJournal)(nil)

// RedisOptions configuration for the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "graphex:"
	TTL      time.Duration // Expiration for run records, default 0 (no expiration)
}

// NewRedisJournal creates a new Redis-backed journal.
func NewRedisJournal(opts RedisOptions) *RedisJournal {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "graphex:"
	}

	return &RedisJournal{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

func (j *RedisJournal) runKey(runID string) string {
	return fmt.Sprintf("%srun:%s:records", j.prefix, runID)
}

func (j *RedisJournal) runsKey() string {
	return j.prefix + "runs"
}

// Append stores one record at the tail of the run's list.
func (j *RedisJournal) Append(ctx context.Context, rec runlog.Record) error {
	if rec.RunID == "" {
		return fmt.Errorf("run id is required")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	key := j.runKey(rec.RunID)
	pipe := j.client.Pipeline()

	pipe.RPush(ctx, key, data)
	pipe.SAdd(ctx, j.runsKey(), rec.RunID)
	if j.ttl > 0 {
		pipe.Expire(ctx, key, j.ttl)
		pipe.Expire(ctx, j.runsKey(), j.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append record to redis: %w", err)
	}

	return nil
}

// Run returns all records for a run in append order.
func (j *RedisJournal) Run(ctx context.Context, runID string) ([]runlog.Record, error) {
	entries, err := j.client.LRange(ctx, j.runKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load run from redis: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, runlog.ErrNotFound)
	}

	records := make([]runlog.Record, 0, len(entries))
	for _, entry := range entries {
		var rec runlog.Record
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Runs lists all recorded run IDs in lexical order.
func (j *RedisJournal) Runs(ctx context.Context) ([]string, error) {
	ids, err := j.client.SMembers(ctx, j.runsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteRun removes all records for a run.
func (j *RedisJournal) DeleteRun(ctx context.Context, runID string) error {
	pipe := j.client.Pipeline()
	pipe.Del(ctx, j.runKey(runID))
	pipe.SRem(ctx, j.runsKey(), runID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Clear removes every record from the journal.
func (j *RedisJournal) Clear(ctx context.Context) error {
	ids, err := j.client.SMembers(ctx, j.runsKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to get runs for clearing: %w", err)
	}

	pipe := j.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, j.runKey(id))
	}
	pipe.Del(ctx, j.runsKey())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (j *RedisJournal) Close() error {
	return j.client.Close()
}
