package backup

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"boda-web/internal/kv"
	"boda-web/internal/model"
	"boda-web/internal/store"
)

func seedLegacy(t *testing.T, groups *store.EntityIndexedStore, gs ...model.GuestGroup) {
	t.Helper()
	if err := groups.WriteLegacyAll(context.Background(), gs); err != nil {
		t.Fatalf("seed legacy: %v", err)
	}
}

func TestMigrateDryRun(t *testing.T) {
	mem := kv.NewMemory()
	groups := store.NewEntityIndexedStore(mem)
	ctx := context.Background()

	seedLegacy(t, groups,
		bkGroup("g1", "tok1"),
		bkGroup("g2", "tok2"),
		bkGroup("g3", "   "), // unmigratable: empty normalized token
	)
	keysBefore := len(mem.Keys())

	m := newTestManager(mem, groups)
	report, err := m.Migrate(ctx, ModeDryRun)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if report.Applied {
		t.Error("dry run must not apply")
	}
	// Two writes per migratable group: the record and its token index.
	if report.PredictedWrite != 4 {
		t.Errorf("predicted writes = %d, want 4", report.PredictedWrite)
	}
	if len(mem.Keys()) != keysBefore {
		t.Errorf("dry run wrote keys: %v", mem.Keys())
	}
}

func TestMigrateApply(t *testing.T) {
	mem := kv.NewMemory()
	groups := store.NewEntityIndexedStore(mem)
	ctx := context.Background()

	seedLegacy(t, groups,
		bkGroup("g1", "ToK1"),
		bkGroup("g2", "tok2"),
		bkGroup("", "tok3"), // unmigratable: no id
	)

	m := newTestManager(mem, groups)
	report, err := m.Migrate(ctx, ModeApply)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !report.Applied || report.SnapshotKey == "" {
		t.Fatalf("report = %+v, want applied with snapshot", report)
	}

	// Records reachable through entity lookups, token index normalized.
	for _, id := range []string{"g1", "g2"} {
		if got, _ := groups.GetByID(ctx, id); got == nil {
			t.Errorf("group %s not migrated", id)
		}
	}
	if got, _ := groups.GetByToken(ctx, "tok1"); got == nil || got.ID != "g1" {
		t.Error("token index must use the normalized token")
	}

	var ids []string
	data, err := mem.Get(ctx, store.KeyGroupIDs)
	if err != nil {
		t.Fatalf("read id set: %v", err)
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		t.Fatalf("decode id set: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"g1", "g2"}) {
		t.Errorf("id set = %v, want [g1 g2]", ids)
	}

	// Sentinels recorded.
	version, err := mem.Get(ctx, store.KeyMigrationVersion)
	if err != nil || string(version) != MigrationVersion {
		t.Errorf("migration version = %q (%v), want %q", version, err, MigrationVersion)
	}
	completed, err := mem.Get(ctx, store.KeyMigrationCompletedAt)
	if err != nil || string(completed) != "2026-05-30T12:00:00Z" {
		t.Errorf("completed-at = %q (%v)", completed, err)
	}

	// The legacy array is left untouched as a read-only backup.
	legacy, _ := groups.ReadLegacyAll(ctx)
	if len(legacy) != 3 {
		t.Errorf("legacy array has %d groups after migration, want 3", len(legacy))
	}
}

func TestMigrateIDSetUnion(t *testing.T) {
	mem := kv.NewMemory()
	groups := store.NewEntityIndexedStore(mem)
	ctx := context.Background()

	// An entity-native group exists before the migration runs.
	native := bkGroup("g-native", "tok-native")
	groups.Upsert(ctx, &native)
	seedLegacy(t, groups, bkGroup("g1", "tok1"))

	m := newTestManager(mem, groups)
	if _, err := m.Migrate(ctx, ModeApply); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	all, err := groups.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 groups after migration, got %d", len(all))
	}
}

func TestMigrateIdempotent(t *testing.T) {
	mem := kv.NewMemory()
	groups := store.NewEntityIndexedStore(mem)
	ctx := context.Background()

	seedLegacy(t, groups, bkGroup("g1", "tok1"), bkGroup("g2", "tok2"))
	m := newTestManager(mem, groups)

	if _, err := m.Migrate(ctx, ModeApply); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if _, err := m.Migrate(ctx, ModeApply); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var ids []string
	data, _ := mem.Get(ctx, store.KeyGroupIDs)
	if err := json.Unmarshal(data, &ids); err != nil {
		t.Fatalf("decode id set: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"g1", "g2"}) {
		t.Errorf("id set after re-run = %v, want [g1 g2]", ids)
	}
}

func TestMigrateEmptyLegacy(t *testing.T) {
	mem := kv.NewMemory()
	groups := store.NewEntityIndexedStore(mem)

	m := newTestManager(mem, groups)
	report, err := m.Migrate(context.Background(), ModeApply)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !report.Applied || report.PredictedWrite != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestValidMode(t *testing.T) {
	if !ValidMode(ModeDryRun) || !ValidMode(ModeApply) {
		t.Error("known modes rejected")
	}
	if ValidMode("wipe") || ValidMode("") {
		t.Error("unknown mode accepted")
	}
}
