package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"boda-web/internal/kv"
	"boda-web/internal/model"
)

// ConfigStore persists the three configuration blobs (tables, buses, photo
// races) as whole JSON documents, each under its own key.
type ConfigStore struct {
	kv kv.Store
}

func NewConfigStore(store kv.Store) *ConfigStore {
	return &ConfigStore{kv: store}
}

func (s *ConfigStore) Tables(ctx context.Context) ([]model.TableConfig, error) {
	var tables []model.TableConfig
	if err := s.read(ctx, KeyTables, &tables); err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []model.TableConfig{}
	}
	return tables, nil
}

func (s *ConfigStore) SaveTables(ctx context.Context, tables []model.TableConfig) error {
	return s.write(ctx, KeyTables, tables)
}

func (s *ConfigStore) Buses(ctx context.Context) ([]model.BusConfig, error) {
	var buses []model.BusConfig
	if err := s.read(ctx, KeyBuses, &buses); err != nil {
		return nil, err
	}
	if buses == nil {
		buses = []model.BusConfig{}
	}
	return buses, nil
}

func (s *ConfigStore) SaveBuses(ctx context.Context, buses []model.BusConfig) error {
	return s.write(ctx, KeyBuses, buses)
}

// PhotoRaces returns the race map keyed by table id.
func (s *ConfigStore) PhotoRaces(ctx context.Context) (map[string]model.PhotoRace, error) {
	var races map[string]model.PhotoRace
	if err := s.read(ctx, KeyPhotoRaces, &races); err != nil {
		return nil, err
	}
	if races == nil {
		races = map[string]model.PhotoRace{}
	}
	return races, nil
}

func (s *ConfigStore) SavePhotoRaces(ctx context.Context, races map[string]model.PhotoRace) error {
	return s.write(ctx, KeyPhotoRaces, races)
}

func (s *ConfigStore) read(ctx context.Context, key string, out any) error {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *ConfigStore) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
