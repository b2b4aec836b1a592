// Package kv wraps the remote key-value store behind a small interface so the
// storage layers can be tested against an in-memory fake.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNil is returned by Get when the key does not exist.
var ErrNil = errors.New("kv: key not found")

// Store is the minimal contract the core needs from the key-value backend.
// Values are opaque bytes; every component serializes its own JSON.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}
