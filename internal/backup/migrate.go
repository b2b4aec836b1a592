package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"boda-web/internal/kv"
	"boda-web/internal/model"
	"boda-web/internal/store"
)

// MigrationVersion is recorded under the migration sentinel key once an
// apply-mode migration finishes.
const MigrationVersion = "2"

// MigrationReport describes a migration run (or, in dry-run mode, what the
// run would do).
type MigrationReport struct {
	Analysis       Analysis `json:"analysis"`
	PredictedWrite int      `json:"predicted_writes"`
	Applied        bool     `json:"applied"`
	SnapshotKey    string   `json:"snapshot_key,omitempty"`
}

// Migrate performs the one-way legacy-to-entity migration. The legacy key is
// never touched; it stays behind as a read-only backup. Re-running apply on
// an unchanged legacy dataset rewrites identical values and rebuilds the
// id-set as a set union, so the operation is idempotent in effect.
func (m *Manager) Migrate(ctx context.Context, mode Mode) (*MigrationReport, error) {
	legacy, err := m.groups.ReadLegacyAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &MigrationReport{Analysis: analyzeGroups(legacy)}
	for i := range legacy {
		if legacy[i].ID != "" && model.NormalizeToken(legacy[i].Token) != "" {
			// One record write plus one index write per migratable group.
			report.PredictedWrite += 2
		}
	}
	if mode == ModeDryRun {
		return report, nil
	}

	snapKey, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	report.SnapshotKey = snapKey

	migrated := make([]string, 0, len(legacy))
	for i := range legacy {
		g := &legacy[i]
		norm := model.NormalizeToken(g.Token)
		if g.ID == "" || norm == "" {
			m.logger.Warn("skipping unmigratable group", "group_id", g.ID)
			continue
		}

		data, err := json.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("encode group %s: %w", g.ID, err)
		}
		if err := m.kv.Set(ctx, store.GroupKey(g.ID), data); err != nil {
			return nil, fmt.Errorf("migrate group %s: %w", g.ID, err)
		}
		if err := m.kv.Set(ctx, store.TokenKey(norm), []byte(g.ID)); err != nil {
			return nil, fmt.Errorf("migrate token index for %s: %w", g.ID, err)
		}
		migrated = append(migrated, g.ID)
	}

	if err := m.writeIDSetUnion(ctx, migrated); err != nil {
		return nil, err
	}

	if err := m.kv.Set(ctx, store.KeyMigrationVersion, []byte(MigrationVersion)); err != nil {
		return nil, fmt.Errorf("write migration version: %w", err)
	}
	completedAt := m.now().UTC().Format(time.RFC3339)
	if err := m.kv.Set(ctx, store.KeyMigrationCompletedAt, []byte(completedAt)); err != nil {
		return nil, fmt.Errorf("write migration timestamp: %w", err)
	}

	report.Applied = true
	m.logger.Info("migration applied", "migrated", len(migrated), "snapshot", snapKey)
	return report, nil
}

// writeIDSetUnion merges the migrated ids into the existing id-set as a
// deduplicated union — never a blind append.
func (m *Manager) writeIDSetUnion(ctx context.Context, ids []string) error {
	set := make(map[string]struct{}, len(ids))

	data, err := m.kv.Get(ctx, store.KeyGroupIDs)
	if err != nil && !errors.Is(err, kv.ErrNil) {
		return fmt.Errorf("read id set: %w", err)
	}
	if err == nil {
		var existing []string
		if err := json.Unmarshal(data, &existing); err != nil {
			return fmt.Errorf("decode id set: %w", err)
		}
		for _, id := range existing {
			set[id] = struct{}{}
		}
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}

	union := make([]string, 0, len(set))
	for id := range set {
		union = append(union, id)
	}
	sort.Strings(union)

	out, err := json.Marshal(union)
	if err != nil {
		return fmt.Errorf("encode id set: %w", err)
	}
	if err := m.kv.Set(ctx, store.KeyGroupIDs, out); err != nil {
		return fmt.Errorf("write id set: %w", err)
	}
	return nil
}
