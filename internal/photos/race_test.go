package photos

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"boda-web/internal/apperr"
	"boda-web/internal/kv"
	"boda-web/internal/store"
)

func newTestService() (*Service, *kv.Memory) {
	mem := kv.NewMemory()
	svc := NewService(store.NewConfigStore(mem))
	svc.now = func() time.Time { return time.Date(2026, 5, 30, 20, 0, 0, 0, time.UTC) }
	return svc, mem
}

func TestDrawMissionsStable(t *testing.T) {
	first := drawMissions("mesa-1")
	second := drawMissions("mesa-1")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same table drew different missions: %v vs %v", first, second)
	}
	if len(first) != RaceMissionCount {
		t.Fatalf("drew %d missions, want %d", len(first), RaceMissionCount)
	}

	seen := make(map[string]struct{})
	for _, m := range first {
		if !knownMission(m) {
			t.Errorf("drew unknown mission %q", m)
		}
		if _, dup := seen[m]; dup {
			t.Errorf("mission %q drawn twice", m)
		}
		seen[m] = struct{}{}
	}

	other := drawMissions("mesa-2")
	if reflect.DeepEqual(first, other) {
		t.Error("distinct tables drew identical missions; seed not table-bound")
	}
}

func TestGetOrCreatePersistsRace(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	race, err := svc.GetOrCreate(ctx, "mesa-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if race.TableID != "mesa-1" || len(race.MissionIDs) != RaceMissionCount {
		t.Fatalf("race = %+v", race)
	}
	if race.StartedAt == nil {
		t.Error("started_at not stamped")
	}

	again, err := svc.GetOrCreate(ctx, "mesa-1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !reflect.DeepEqual(race.MissionIDs, again.MissionIDs) {
		t.Error("second visit re-drew missions")
	}

	if _, err := svc.GetOrCreate(ctx, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty table id: err = %v, want ErrValidation", err)
	}
}

func TestAddPhoto(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	race, err := svc.GetOrCreate(ctx, "mesa-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mission := race.MissionIDs[0]

	race, err = svc.AddPhoto(ctx, "mesa-1", mission, "https://files.example/p1.jpg", "Ana")
	if err != nil {
		t.Fatalf("add photo: %v", err)
	}
	if len(race.Photos) != 1 {
		t.Fatalf("photos = %+v", race.Photos)
	}
	p := race.Photos[0]
	if p.ID == "" || p.MissionID != mission || p.URL != "https://files.example/p1.jpg" || p.SubmitterName != "Ana" {
		t.Errorf("photo fields wrong: %+v", p)
	}
	if p.Validated {
		t.Error("new submissions start unvalidated")
	}
}

func TestAddPhotoRejections(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	race, err := svc.GetOrCreate(ctx, "mesa-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A mission from the catalog that this table did not draw.
	var unassigned string
	for _, m := range MissionCatalog {
		assigned := false
		for _, a := range race.MissionIDs {
			if a == m {
				assigned = true
				break
			}
		}
		if !assigned {
			unassigned = m
			break
		}
	}

	cases := []struct {
		name    string
		mission string
		url     string
	}{
		{"empty url", race.MissionIDs[0], ""},
		{"unknown mission", "steal-the-cake", "https://files.example/p.jpg"},
		{"unassigned mission", unassigned, "https://files.example/p.jpg"},
	}
	for _, c := range cases {
		if _, err := svc.AddPhoto(ctx, "mesa-1", c.mission, c.url, "Ana"); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", c.name, err)
		}
	}
}

func TestValidationCompletesRace(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	race, err := svc.GetOrCreate(ctx, "mesa-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// One photo per assigned mission.
	for _, mission := range race.MissionIDs {
		race, err = svc.AddPhoto(ctx, "mesa-1", mission, "https://files.example/"+mission+".jpg", "Ana")
		if err != nil {
			t.Fatalf("add %s: %v", mission, err)
		}
	}

	// Validate six: not complete yet.
	for i := 0; i < RaceMissionCount-1; i++ {
		race, err = svc.SetPhotoValidated(ctx, "mesa-1", race.Photos[i].ID, true)
		if err != nil {
			t.Fatalf("validate %d: %v", i, err)
		}
	}
	if race.Completed {
		t.Fatal("race complete with only six validated photos")
	}
	if race.CompletedAt != nil {
		t.Error("completed_at set before completion")
	}

	// The seventh validation completes the race.
	race, err = svc.SetPhotoValidated(ctx, "mesa-1", race.Photos[RaceMissionCount-1].ID, true)
	if err != nil {
		t.Fatalf("final validate: %v", err)
	}
	if !race.Completed || race.CompletedAt == nil {
		t.Fatalf("race not completed: %+v", race)
	}

	// Revoking a validation reopens the race.
	race, err = svc.SetPhotoValidated(ctx, "mesa-1", race.Photos[0].ID, false)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if race.Completed || race.CompletedAt != nil {
		t.Error("race must reopen when validations drop below seven")
	}
}

func TestSetPhotoValidatedNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SetPhotoValidated(ctx, "mesa-1", "p1", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown table: err = %v, want ErrNotFound", err)
	}

	if _, err := svc.GetOrCreate(ctx, "mesa-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetPhotoValidated(ctx, "mesa-1", "missing-photo", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown photo: err = %v, want ErrNotFound", err)
	}
}
