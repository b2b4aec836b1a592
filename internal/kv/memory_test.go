package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNil) {
		t.Errorf("missing key: err = %v, want ErrNil", err)
	}

	if err := m.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("get = %q, %v", got, err)
	}

	// Mutating the returned slice must not corrupt the stored value.
	got[0] = 'x'
	again, _ := m.Get(ctx, "k")
	if string(again) != "v1" {
		t.Error("Get returned the backing slice instead of a copy")
	}
}

func TestMemoryTTL(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 5, 30, 12, 0, 0, 0, time.UTC)
	m.Now = func() time.Time { return base }

	if err := m.SetTTL(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set ttl: %v", err)
	}

	if ok, _ := m.Exists(ctx, "k"); !ok {
		t.Fatal("key should exist before expiry")
	}

	m.Now = func() time.Time { return base.Add(2 * time.Hour) }
	if ok, _ := m.Exists(ctx, "k"); ok {
		t.Error("key should be gone after expiry")
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNil) {
		t.Errorf("expired get: err = %v, want ErrNil", err)
	}
}

func TestMemoryExpireRefreshes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 5, 30, 12, 0, 0, 0, time.UTC)
	m.Now = func() time.Time { return base }

	m.SetTTL(ctx, "k", []byte("v"), time.Hour)

	// Refresh at minute 50 pushes expiry another hour out.
	m.Now = func() time.Time { return base.Add(50 * time.Minute) }
	if err := m.Expire(ctx, "k", time.Hour); err != nil {
		t.Fatalf("expire: %v", err)
	}

	m.Now = func() time.Time { return base.Add(100 * time.Minute) }
	if ok, _ := m.Exists(ctx, "k"); !ok {
		t.Error("refreshed key expired too early")
	}

	// Expiring a missing key is a no-op.
	if err := m.Expire(ctx, "missing", time.Hour); err != nil {
		t.Errorf("expire missing: %v", err)
	}
}

func TestMemoryDel(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"))
	if err := m.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := m.Exists(ctx, "k"); ok {
		t.Error("key survived delete")
	}
	if err := m.Del(ctx, "k"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}
