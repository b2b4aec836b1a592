package store

import (
	"context"

	"boda-web/internal/kv"
	"boda-web/internal/metric"
	"boda-web/internal/model"
)

// LegacyArrayStore keeps every group in a single serialized array. Each
// operation loads the whole array, scans it, and writes it back. Adequate for
// guest-list sizes; kept for compatibility with data written before the
// per-entity layout existed.
type LegacyArrayStore struct {
	kv kv.Store
}

func NewLegacyArrayStore(store kv.Store) *LegacyArrayStore {
	return &LegacyArrayStore{kv: store}
}

func (s *LegacyArrayStore) Mode() string { return ModeLegacy }

func (s *LegacyArrayStore) GetByToken(ctx context.Context, token string) (*model.GuestGroup, error) {
	metric.StoreOps.WithLabelValues("get_by_token").Inc()

	norm := model.NormalizeToken(token)
	if norm == "" {
		return nil, nil
	}

	groups, err := s.ReadLegacyAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		// Stored tokens are verbatim; compare normalized on both sides.
		if model.NormalizeToken(groups[i].Token) == norm {
			return groups[i].Clone(), nil
		}
	}
	return nil, nil
}

func (s *LegacyArrayStore) GetByID(ctx context.Context, id string) (*model.GuestGroup, error) {
	metric.StoreOps.WithLabelValues("get_by_id").Inc()

	groups, err := s.ReadLegacyAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].ID == id {
			return groups[i].Clone(), nil
		}
	}
	return nil, nil
}

func (s *LegacyArrayStore) ListAll(ctx context.Context) ([]model.GuestGroup, error) {
	metric.StoreOps.WithLabelValues("list_all").Inc()
	return s.ReadLegacyAll(ctx)
}

func (s *LegacyArrayStore) Upsert(ctx context.Context, g *model.GuestGroup) error {
	metric.StoreOps.WithLabelValues("upsert").Inc()

	groups, err := s.ReadLegacyAll(ctx)
	if err != nil {
		return err
	}
	groups = replaceOrAppend(groups, g)
	return s.WriteLegacyAll(ctx, groups)
}

func (s *LegacyArrayStore) DeleteByID(ctx context.Context, id string) error {
	metric.StoreOps.WithLabelValues("delete").Inc()

	groups, err := s.ReadLegacyAll(ctx)
	if err != nil {
		return err
	}

	kept := groups[:0]
	found := false
	for i := range groups {
		if groups[i].ID == id {
			found = true
			continue
		}
		kept = append(kept, groups[i])
	}
	if !found {
		return nil
	}
	return s.WriteLegacyAll(ctx, kept)
}

func (s *LegacyArrayStore) ReadLegacyAll(ctx context.Context) ([]model.GuestGroup, error) {
	return readLegacy(ctx, s.kv)
}

func (s *LegacyArrayStore) WriteLegacyAll(ctx context.Context, groups []model.GuestGroup) error {
	return writeLegacy(ctx, s.kv, groups)
}

func replaceOrAppend(groups []model.GuestGroup, g *model.GuestGroup) []model.GuestGroup {
	for i := range groups {
		if groups[i].ID == g.ID {
			groups[i] = *g.Clone()
			return groups
		}
	}
	return append(groups, *g.Clone())
}
