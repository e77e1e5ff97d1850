// Package ratelimit limits requests per client key, either in process or shared through redis.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Memory keeps one token bucket per key. Buckets idle for longer than ten windows are evicted.
type Memory struct {
	mu      sync.Mutex
	buckets *gocache.Cache
	limit   rate.Limit
	burst   int
}

// NewMemory allows max requests per window with bursts up to max.
func NewMemory(max int, window time.Duration) *Memory {
	idle := 10 * window
	return &Memory{
		buckets: gocache.New(idle, idle),
		limit:   rate.Limit(float64(max) / window.Seconds()),
		burst:   max,
	}
}

func (m *Memory) bucket(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.buckets.Get(key); ok {
		m.buckets.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(m.limit, m.burst)
	m.buckets.SetDefault(key, l)
	return l
}

func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	l := m.bucket(key)
	r := l.Reserve()
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return Result{Allowed: false, RetryAfter: d}, nil
	}
	return Result{Allowed: true, Remaining: int64(l.Tokens())}, nil
}

// Redis is a fixed window counter (INCR + EXPIRE) shared by every instance.
type Redis struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
}

func NewRedis(client *rdb.Client, prefix string, max int, window time.Duration) *Redis {
	if prefix == "" {
		prefix = "rl:"
	}
	return &Redis{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *Redis) Allow(ctx context.Context, key string) (Result, error) {
	winStart := time.Now().UTC().Truncate(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	hits := incr.Val()
	res := Result{Allowed: hits <= l.max, Remaining: max(l.max-hits, 0)}
	if !res.Allowed {
		res.RetryAfter = winStart.Add(l.window).Sub(time.Now().UTC())
	}
	return res, nil
}
