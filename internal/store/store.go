// Package store persists guest groups in the key-value backend under two
// alternative physical layouts behind one logical contract. The layout is
// chosen once at construction and injected into callers; nothing branches on
// storage mode at call time.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"boda-web/internal/kv"
	"boda-web/internal/model"
)

// Storage mode names, used in export metadata and config.
const (
	ModeLegacy = "legacy"
	ModeEntity = "entity"
)

// GroupStore is the logical guest-record contract. Lookups return (nil, nil)
// when no record matches; errors always mean the backend failed.
type GroupStore interface {
	// GetByToken normalizes the token and finds the matching group.
	GetByToken(ctx context.Context, token string) (*model.GuestGroup, error)
	GetByID(ctx context.Context, id string) (*model.GuestGroup, error)
	ListAll(ctx context.Context) ([]model.GuestGroup, error)
	// Upsert inserts or replaces a group by id, maintaining any secondary
	// structures the layout needs.
	Upsert(ctx context.Context, g *model.GuestGroup) error
	DeleteByID(ctx context.Context, id string) error

	// ReadLegacyAll and WriteLegacyAll are raw passthroughs to the legacy
	// array key, used by migration and by the dual-write shadow path.
	ReadLegacyAll(ctx context.Context) ([]model.GuestGroup, error)
	WriteLegacyAll(ctx context.Context, groups []model.GuestGroup) error

	// Mode reports the physical layout name.
	Mode() string
}

func readLegacy(ctx context.Context, store kv.Store) ([]model.GuestGroup, error) {
	data, err := store.Get(ctx, KeyLegacyGroups)
	if errors.Is(err, kv.ErrNil) {
		return []model.GuestGroup{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy groups: %w", err)
	}

	var groups []model.GuestGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("decode legacy groups: %w", err)
	}
	return groups, nil
}

func writeLegacy(ctx context.Context, store kv.Store, groups []model.GuestGroup) error {
	if groups == nil {
		groups = []model.GuestGroup{}
	}
	data, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("encode legacy groups: %w", err)
	}
	if err := store.Set(ctx, KeyLegacyGroups, data); err != nil {
		return fmt.Errorf("write legacy groups: %w", err)
	}
	return nil
}
