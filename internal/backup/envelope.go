package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"boda-web/internal/model"
	"boda-web/internal/store"
)

// EnvelopeVersion is stamped into every export and checked on import.
const EnvelopeVersion = "1"

// Envelope is the export/import document: a meta header plus the full
// dataset.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data Data `json:"data"`
}

type Meta struct {
	Version     string    `json:"version"`
	ExportedAt  time.Time `json:"exported_at"`
	Counts      Counts    `json:"counts"`
	StorageMode string    `json:"storage_mode"`
}

type Counts struct {
	Groups     int `json:"groups"`
	Tables     int `json:"tables"`
	Buses      int `json:"buses"`
	PhotoRaces int `json:"photo_races"`
}

type Data struct {
	Groups []model.GuestGroup `json:"groups"`
	Config ConfigData         `json:"config"`
}

type ConfigData struct {
	Tables     []model.TableConfig        `json:"tables"`
	Buses      []model.BusConfig          `json:"buses"`
	PhotoRaces map[string]model.PhotoRace `json:"photo_races"`
}

// Export reads the whole dataset (mode-appropriate for groups) and wraps it
// in an envelope. The returned filename encodes the export timestamp.
func (m *Manager) Export(ctx context.Context) (*Envelope, string, error) {
	env, err := m.buildEnvelope(ctx)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("boda-export-%s.json", env.Meta.ExportedAt.Format("20060102-150405"))
	return env, filename, nil
}

func (m *Manager) buildEnvelope(ctx context.Context) (*Envelope, error) {
	groups, err := m.groups.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []model.GuestGroup{}
	}

	tables, err := m.cfg.Tables(ctx)
	if err != nil {
		return nil, err
	}
	buses, err := m.cfg.Buses(ctx)
	if err != nil {
		return nil, err
	}
	races, err := m.cfg.PhotoRaces(ctx)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Meta: Meta{
			Version:    EnvelopeVersion,
			ExportedAt: m.now().UTC(),
			Counts: Counts{
				Groups:     len(groups),
				Tables:     len(tables),
				Buses:      len(buses),
				PhotoRaces: len(races),
			},
			StorageMode: m.groups.Mode(),
		},
		Data: Data{
			Groups: groups,
			Config: ConfigData{
				Tables:     tables,
				Buses:      buses,
				PhotoRaces: races,
			},
		},
	}, nil
}

// Snapshot stores a point-in-time copy of the full dataset under a
// timestamp-keyed backup record and returns its key. When offsite storage is
// configured the snapshot is uploaded there too, best effort.
func (m *Manager) Snapshot(ctx context.Context) (string, error) {
	env, err := m.buildEnvelope(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := store.BackupKey(env.Meta.ExportedAt.Format(time.RFC3339))
	if err := m.kv.Set(ctx, key, data); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	m.logger.Info("snapshot written", "key", key, "groups", env.Meta.Counts.Groups)

	m.uploadOffsite(ctx, key, data)
	return key, nil
}
