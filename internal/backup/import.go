package backup

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"boda-web/internal/apperr"
	"boda-web/internal/model"
	"boda-web/internal/store"
)

//go:embed import_schema.json
var importSchemaJSON string

// The schema ships inside the binary, so a compile failure is a build defect.
var importSchema = mustCompileSchema(importSchemaJSON)

func mustCompileSchema(doc string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("backup: compile import schema: %v", err))
	}
	return s
}

// Analysis summarizes what an import (or migration) would do: anomalies in
// the incoming data, never full tokens.
type Analysis struct {
	GroupCount      int      `json:"group_count"`
	DuplicateIDs    []string `json:"duplicate_ids"`
	DuplicateTokens []string `json:"duplicate_tokens"` // masked
	EmptyTokenIDs   []string `json:"empty_token_ids"`
}

// ImportResult is what the import endpoint returns in either mode.
type ImportResult struct {
	Mode        Mode     `json:"mode"`
	Analysis    Analysis `json:"analysis"`
	Applied     bool     `json:"applied"`
	SnapshotKey string   `json:"snapshot_key,omitempty"`
}

// Import validates the raw envelope against the strict schema, analyzes it,
// and in apply mode snapshots the current dataset before overwriting groups,
// tables, buses, and photo races. Writes are sequential; a failure aborts the
// rest with no rollback — the snapshot is the recovery path.
func (m *Manager) Import(ctx context.Context, raw []byte, mode Mode) (*ImportResult, error) {
	result, err := importSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// Not valid JSON at all.
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return nil, fmt.Errorf("%w: %s: %s", apperr.ErrValidation, first.Field(), first.Description())
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	res := &ImportResult{
		Mode:     mode,
		Analysis: analyzeGroups(env.Data.Groups),
	}
	if mode == ModeDryRun {
		return res, nil
	}

	snapKey, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	res.SnapshotKey = snapKey

	if err := m.overwriteGroups(ctx, env.Data.Groups); err != nil {
		return nil, err
	}
	if err := m.cfg.SaveTables(ctx, env.Data.Config.Tables); err != nil {
		return nil, err
	}
	if err := m.cfg.SaveBuses(ctx, env.Data.Config.Buses); err != nil {
		return nil, err
	}
	if err := m.cfg.SavePhotoRaces(ctx, env.Data.Config.PhotoRaces); err != nil {
		return nil, err
	}

	res.Applied = true
	m.logger.Info("import applied", "groups", res.Analysis.GroupCount, "snapshot", snapKey)
	return res, nil
}

// overwriteGroups makes the group store match the imported set exactly. In
// entity mode that means deleting records absent from the import and
// upserting the rest; the legacy array is rewritten wholesale in both modes.
func (m *Manager) overwriteGroups(ctx context.Context, groups []model.GuestGroup) error {
	if m.groups.Mode() == store.ModeEntity {
		imported := make(map[string]struct{}, len(groups))
		for i := range groups {
			imported[groups[i].ID] = struct{}{}
		}

		existing, err := m.groups.ListAll(ctx)
		if err != nil {
			return err
		}
		for i := range existing {
			if _, keep := imported[existing[i].ID]; !keep {
				if err := m.groups.DeleteByID(ctx, existing[i].ID); err != nil {
					return err
				}
			}
		}
		for i := range groups {
			if err := m.groups.Upsert(ctx, &groups[i]); err != nil {
				return err
			}
		}
	}
	return m.groups.WriteLegacyAll(ctx, groups)
}

// analyzeGroups finds duplicate ids, duplicate normalized tokens (reported
// masked), and groups whose token normalizes to empty.
func analyzeGroups(groups []model.GuestGroup) Analysis {
	a := Analysis{
		GroupCount:      len(groups),
		DuplicateIDs:    []string{},
		DuplicateTokens: []string{},
		EmptyTokenIDs:   []string{},
	}

	idCount := make(map[string]int)
	tokenCount := make(map[string]int)
	for i := range groups {
		idCount[groups[i].ID]++
		norm := model.NormalizeToken(groups[i].Token)
		if norm == "" {
			a.EmptyTokenIDs = append(a.EmptyTokenIDs, groups[i].ID)
			continue
		}
		tokenCount[norm]++
	}

	for id, n := range idCount {
		if n > 1 {
			a.DuplicateIDs = append(a.DuplicateIDs, id)
		}
	}
	for tok, n := range tokenCount {
		if n > 1 {
			a.DuplicateTokens = append(a.DuplicateTokens, model.MaskToken(tok))
		}
	}
	sort.Strings(a.DuplicateIDs)
	sort.Strings(a.DuplicateTokens)
	return a
}
