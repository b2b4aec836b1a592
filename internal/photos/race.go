// Package photos runs the per-table photo mission race: seven missions per
// table, submissions from guests, completion once seven are validated.
package photos

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"boda-web/internal/apperr"
	"boda-web/internal/model"
	"boda-web/internal/store"
)

type Service struct {
	cfg *store.ConfigStore

	now func() time.Time
}

func NewService(cfg *store.ConfigStore) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// GetOrCreate returns the race for a table, creating it lazily on first
// visit. Mission assignment is seeded by the table id, so recreating a race
// for the same table draws the same missions.
func (s *Service) GetOrCreate(ctx context.Context, tableID string) (*model.PhotoRace, error) {
	if tableID == "" {
		return nil, fmt.Errorf("%w: empty table id", apperr.ErrValidation)
	}

	races, err := s.cfg.PhotoRaces(ctx)
	if err != nil {
		return nil, err
	}
	if race, ok := races[tableID]; ok {
		return &race, nil
	}

	started := s.now().UTC()
	race := model.PhotoRace{
		TableID:    tableID,
		MissionIDs: drawMissions(tableID),
		Photos:     []model.RacePhoto{},
		StartedAt:  &started,
	}
	races[tableID] = race
	if err := s.cfg.SavePhotoRaces(ctx, races); err != nil {
		return nil, err
	}
	return &race, nil
}

// AddPhoto records a submission against one of the race's assigned missions.
// The url and submitter name come from the file host and are stored verbatim.
func (s *Service) AddPhoto(ctx context.Context, tableID, missionID, url, submitterName string) (*model.PhotoRace, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty photo url", apperr.ErrValidation)
	}
	if !knownMission(missionID) {
		return nil, fmt.Errorf("%w: unknown mission %q", apperr.ErrValidation, missionID)
	}

	race, err := s.GetOrCreate(ctx, tableID)
	if err != nil {
		return nil, err
	}

	assigned := false
	for _, m := range race.MissionIDs {
		if m == missionID {
			assigned = true
			break
		}
	}
	if !assigned {
		return nil, fmt.Errorf("%w: mission %q not assigned to table %s", apperr.ErrValidation, missionID, tableID)
	}

	race.Photos = append(race.Photos, model.RacePhoto{
		ID:            uuid.NewString(),
		MissionID:     missionID,
		URL:           url,
		SubmitterName: submitterName,
		UploadedAt:    s.now().UTC(),
	})
	return race, s.save(ctx, race)
}

// SetPhotoValidated flips a photo's validation flag and recomputes race
// completion.
func (s *Service) SetPhotoValidated(ctx context.Context, tableID, photoID string, validated bool) (*model.PhotoRace, error) {
	races, err := s.cfg.PhotoRaces(ctx)
	if err != nil {
		return nil, err
	}
	race, ok := races[tableID]
	if !ok {
		return nil, fmt.Errorf("no race for table %s: %w", tableID, apperr.ErrNotFound)
	}

	found := false
	for i := range race.Photos {
		if race.Photos[i].ID == photoID {
			race.Photos[i].Validated = validated
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("photo %s: %w", photoID, apperr.ErrNotFound)
	}
	return &race, s.save(ctx, &race)
}

func (s *Service) save(ctx context.Context, race *model.PhotoRace) error {
	validCount := 0
	for _, p := range race.Photos {
		if p.Validated {
			validCount++
		}
	}
	if validCount >= RaceMissionCount {
		if !race.Completed {
			done := s.now().UTC()
			race.CompletedAt = &done
		}
		race.Completed = true
	} else {
		race.Completed = false
		race.CompletedAt = nil
	}

	races, err := s.cfg.PhotoRaces(ctx)
	if err != nil {
		return err
	}
	races[race.TableID] = *race
	return s.cfg.SavePhotoRaces(ctx, races)
}

// drawMissions picks seven distinct missions with a PRNG seeded from the
// table id hash.
func drawMissions(tableID string) []string {
	h := fnv.New64a()
	h.Write([]byte(tableID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	perm := rng.Perm(len(MissionCatalog))
	missions := make([]string, RaceMissionCount)
	for i := 0; i < RaceMissionCount; i++ {
		missions[i] = MissionCatalog[perm[i]]
	}
	return missions
}
