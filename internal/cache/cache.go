// Package cache keeps the department facet of the employee listing in Redis
// so list requests do not rescan the collection.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"employee-management-system/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	departmentsKey    = "cache:employee_departments"
	departmentsGenKey = "cache:employee_departments:gen"
)

// FacetCache stores the distinct department list. Entries are stamped with
// the generation observed before the list was read from the store, and
// Invalidate bumps the generation, so a fill that raced a write is never
// served.
type FacetCache interface {
	// Departments returns the cached list, the current generation and
	// whether the list is present for that generation.
	Departments(ctx context.Context) (depts []string, gen int64, ok bool, err error)
	SetDepartments(ctx context.Context, gen int64, depts []string) error
	Invalidate(ctx context.Context) error
}

// Connect opens a Redis client and checks it with a ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

type RedisFacetCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisFacetCache caches entries for ttl; writes also invalidate them.
func NewRedisFacetCache(rdb redis.Cmdable, ttl time.Duration) *RedisFacetCache {
	return &RedisFacetCache{rdb: rdb, ttl: ttl}
}

type departmentsEntry struct {
	Gen         int64    `json:"gen"`
	Departments []string `json:"departments"`
}

func (c *RedisFacetCache) Departments(ctx context.Context) ([]string, int64, bool, error) {
	vals, err := c.rdb.MGet(ctx, departmentsGenKey, departmentsKey).Result()
	if err != nil {
		return nil, 0, false, err
	}

	var gen int64
	if raw, ok := vals[0].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, false, fmt.Errorf("parse departments generation: %w", err)
		}
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, gen, false, nil
	}

	var entry departmentsEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, gen, false, err
	}
	if entry.Gen != gen {
		return nil, gen, false, nil
	}
	if entry.Departments == nil {
		entry.Departments = []string{}
	}
	return entry.Departments, gen, true, nil
}

// SetDepartments stores depts as read at generation gen.
func (c *RedisFacetCache) SetDepartments(ctx context.Context, gen int64, depts []string) error {
	if depts == nil {
		depts = []string{}
	}
	data, err := json.Marshal(departmentsEntry{Gen: gen, Departments: depts})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, departmentsKey, data, c.ttl).Err()
}

func (c *RedisFacetCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, departmentsGenKey).Err()
}

// Noop never holds anything. Used when Redis is not configured.
type Noop struct{}

func (Noop) Departments(context.Context) ([]string, int64, bool, error) { return nil, 0, false, nil }
func (Noop) SetDepartments(context.Context, int64, []string) error      { return nil }
func (Noop) Invalidate(context.Context) error                           { return nil }
