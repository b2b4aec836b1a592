package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

// PoolConfig holds Redis connection settings.
type PoolConfig struct {
	Addr     string
	Password string
	UseTLS   bool
}

// NewPool creates a redigo connection pool. The pool is handed to NewRedis by
// the caller rather than held in a package singleton.
func NewPool(cfg PoolConfig) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     4,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", cfg.Addr,
				redis.DialPassword(cfg.Password),
				redis.DialUseTLS(cfg.UseTLS),
			)
		},
	}
}

// Redis implements Store over a redigo pool.
type Redis struct {
	pool *redis.Pool
}

// NewRedis wraps an existing pool.
func NewRedis(pool *redis.Pool) *Redis {
	return &Redis{pool: pool}
}

// Ping verifies connectivity, for startup checks.
func (r *Redis) Ping(ctx context.Context) error {
	cl, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	defer cl.Close()

	if _, err := cl.Do("PING"); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	cl, err := r.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	defer cl.Close()

	data, err := redis.Bytes(cl.Do("GET", key))
	if err == redis.ErrNil {
		return nil, ErrNil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	cl, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	defer cl.Close()

	if _, err := cl.Do("SET", key, value); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cl, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis setex %s: %w", key, err)
	}
	defer cl.Close()

	if _, err := cl.Do("SETEX", key, int(ttl.Seconds()), value); err != nil {
		return fmt.Errorf("redis setex %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Del(ctx context.Context, key string) error {
	cl, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	defer cl.Close()

	if _, err := cl.Do("DEL", key); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	cl, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis expire %s: %w", key, err)
	}
	defer cl.Close()

	if _, err := cl.Do("EXPIRE", key, int(ttl.Seconds())); err != nil {
		return fmt.Errorf("redis expire %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	cl, err := r.pool.GetContext(ctx)
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	defer cl.Close()

	ok, err := redis.Bool(cl.Do("EXISTS", key))
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return ok, nil
}
