// Package backup handles whole-dataset export, schema-validated import with
// dry-run preview, pre-apply snapshots, and the one-way legacy-to-entity
// migration.
package backup

import (
	"log/slog"
	"time"

	"boda-web/internal/kv"
	"boda-web/internal/store"
)

// Mode selects between previewing an operation and executing it.
type Mode string

const (
	ModeDryRun Mode = "dry-run"
	ModeApply  Mode = "apply"
)

// ValidMode reports whether m is a known mode.
func ValidMode(m Mode) bool {
	return m == ModeDryRun || m == ModeApply
}

// Config holds backup manager configuration. S3 settings are optional; when
// absent, snapshots stay in the key-value store only.
type Config struct {
	S3 S3Config
}

// Manager owns every destructive dataset operation. It always snapshots
// before overwriting anything, so an apply is reversible by reading the
// snapshot back.
type Manager struct {
	groups store.GroupStore
	cfg    *store.ConfigStore
	kv     kv.Store
	logger *slog.Logger

	client s3Client
	s3cfg  S3Config

	now func() time.Time
}

func NewManager(c Config, groups store.GroupStore, cfgStore *store.ConfigStore, kvStore kv.Store, logger *slog.Logger) *Manager {
	m := &Manager{
		groups: groups,
		cfg:    cfgStore,
		kv:     kvStore,
		logger: logger,
		s3cfg:  c.S3,
		now:    time.Now,
	}
	if c.S3.Bucket != "" && c.S3.AccessKey != "" && c.S3.SecretKey != "" {
		m.client = newS3Client(c.S3)
	}
	return m
}
