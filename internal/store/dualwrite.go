package store

import (
	"context"
	"log/slog"

	"boda-web/internal/metric"
	"boda-web/internal/model"
)

// DualWriteStore decorates an entity store with a best-effort shadow write to
// the legacy array, so clients still reading the old key keep seeing current
// data. Shadow failures are logged and counted but never surfaced; the entity
// write is the one that matters. Delete this decorator once nothing reads the
// legacy key anymore.
type DualWriteStore struct {
	GroupStore
	logger *slog.Logger
}

func NewDualWriteStore(inner GroupStore, logger *slog.Logger) *DualWriteStore {
	return &DualWriteStore{GroupStore: inner, logger: logger}
}

func (s *DualWriteStore) Upsert(ctx context.Context, g *model.GuestGroup) error {
	if err := s.GroupStore.Upsert(ctx, g); err != nil {
		return err
	}
	s.shadow(ctx, g.ID, func(groups []model.GuestGroup) []model.GuestGroup {
		return replaceOrAppend(groups, g)
	})
	return nil
}

func (s *DualWriteStore) DeleteByID(ctx context.Context, id string) error {
	if err := s.GroupStore.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.shadow(ctx, id, func(groups []model.GuestGroup) []model.GuestGroup {
		kept := groups[:0]
		for i := range groups {
			if groups[i].ID != id {
				kept = append(kept, groups[i])
			}
		}
		return kept
	})
	return nil
}

func (s *DualWriteStore) shadow(ctx context.Context, id string, mutate func([]model.GuestGroup) []model.GuestGroup) {
	groups, err := s.ReadLegacyAll(ctx)
	if err != nil {
		s.swallow(id, err)
		return
	}
	if err := s.WriteLegacyAll(ctx, mutate(groups)); err != nil {
		s.swallow(id, err)
	}
}

func (s *DualWriteStore) swallow(id string, err error) {
	metric.DualWriteFailures.Inc()
	s.logger.Warn("legacy shadow write failed", "group_id", id, "error", err)
}
