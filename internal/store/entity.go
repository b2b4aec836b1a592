package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"boda-web/internal/kv"
	"boda-web/internal/metric"
	"boda-web/internal/model"
)

// EntityIndexedStore keeps each group under its own key, a token index for
// O(1) token lookup, and an id-set for enumeration. Multi-key writes are
// sequential and non-atomic; the backend offers no transaction primitive, so
// consistency between record, index, and id-set is best effort.
type EntityIndexedStore struct {
	kv kv.Store
}

func NewEntityIndexedStore(store kv.Store) *EntityIndexedStore {
	return &EntityIndexedStore{kv: store}
}

func (s *EntityIndexedStore) Mode() string { return ModeEntity }

func (s *EntityIndexedStore) GetByToken(ctx context.Context, token string) (*model.GuestGroup, error) {
	metric.StoreOps.WithLabelValues("get_by_token").Inc()

	norm := model.NormalizeToken(token)
	if norm == "" {
		return nil, nil
	}

	idData, err := s.kv.Get(ctx, TokenKey(norm))
	if errors.Is(err, kv.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token index %s: %w", norm, err)
	}
	return s.GetByID(ctx, string(idData))
}

func (s *EntityIndexedStore) GetByID(ctx context.Context, id string) (*model.GuestGroup, error) {
	metric.StoreOps.WithLabelValues("get_by_id").Inc()

	data, err := s.kv.Get(ctx, GroupKey(id))
	if errors.Is(err, kv.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read group %s: %w", id, err)
	}

	var g model.GuestGroup
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode group %s: %w", id, err)
	}
	return &g, nil
}

func (s *EntityIndexedStore) ListAll(ctx context.Context) ([]model.GuestGroup, error) {
	metric.StoreOps.WithLabelValues("list_all").Inc()

	ids, err := s.readIDSet(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]model.GuestGroup, 0, len(ids))
	for _, id := range ids {
		g, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if g == nil {
			// Dangling id-set entry, skip. Left behind by a crash between
			// record delete and id-set write.
			continue
		}
		groups = append(groups, *g)
	}
	return groups, nil
}

func (s *EntityIndexedStore) Upsert(ctx context.Context, g *model.GuestGroup) error {
	metric.StoreOps.WithLabelValues("upsert").Inc()

	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode group %s: %w", g.ID, err)
	}
	if err := s.kv.Set(ctx, GroupKey(g.ID), data); err != nil {
		return fmt.Errorf("write group %s: %w", g.ID, err)
	}

	if norm := model.NormalizeToken(g.Token); norm != "" {
		if err := s.kv.Set(ctx, TokenKey(norm), []byte(g.ID)); err != nil {
			return fmt.Errorf("write token index %s: %w", norm, err)
		}
	}

	ids, err := s.readIDSet(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == g.ID {
			return nil
		}
	}
	return s.writeIDSet(ctx, append(ids, g.ID))
}

func (s *EntityIndexedStore) DeleteByID(ctx context.Context, id string) error {
	metric.StoreOps.WithLabelValues("delete").Inc()

	// The index entry is derived from the stored record's own token, not any
	// caller-supplied one, so a concurrently changed token cannot leak an
	// index entry pointing at a deleted group.
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if g == nil {
		return nil
	}

	if err := s.kv.Del(ctx, GroupKey(id)); err != nil {
		return fmt.Errorf("delete group %s: %w", id, err)
	}
	if norm := model.NormalizeToken(g.Token); norm != "" {
		if err := s.kv.Del(ctx, TokenKey(norm)); err != nil {
			return fmt.Errorf("delete token index %s: %w", norm, err)
		}
	}

	ids, err := s.readIDSet(ctx)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, known := range ids {
		if known != id {
			kept = append(kept, known)
		}
	}
	return s.writeIDSet(ctx, kept)
}

func (s *EntityIndexedStore) ReadLegacyAll(ctx context.Context) ([]model.GuestGroup, error) {
	return readLegacy(ctx, s.kv)
}

func (s *EntityIndexedStore) WriteLegacyAll(ctx context.Context, groups []model.GuestGroup) error {
	return writeLegacy(ctx, s.kv, groups)
}

func (s *EntityIndexedStore) readIDSet(ctx context.Context) ([]string, error) {
	data, err := s.kv.Get(ctx, KeyGroupIDs)
	if errors.Is(err, kv.ErrNil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read id set: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode id set: %w", err)
	}
	return ids, nil
}

// writeIDSet deduplicates and sorts before writing, so the id-set behaves as
// a set regardless of what callers append.
func (s *EntityIndexedStore) writeIDSet(ctx context.Context, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Strings(uniq)

	data, err := json.Marshal(uniq)
	if err != nil {
		return fmt.Errorf("encode id set: %w", err)
	}
	if err := s.kv.Set(ctx, KeyGroupIDs, data); err != nil {
		return fmt.Errorf("write id set: %w", err)
	}
	return nil
}
