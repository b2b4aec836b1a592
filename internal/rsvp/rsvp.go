// Package rsvp applies guest-submitted partial updates to their own group
// under optimistic concurrency. The holder of a valid token is the only
// authentication there is; responses are sanitized so the full token and
// email never travel back.
package rsvp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"boda-web/internal/apperr"
	"boda-web/internal/metric"
	"boda-web/internal/model"
	"boda-web/internal/store"
)

// maxAttempts bounds the compare-and-swap loop: one retry against fresh
// state, then the conflict is the caller's problem. Keeps worst-case latency
// flat and still covers the common two-concurrent-editors case.
const maxAttempts = 2

// Service runs the RSVP update protocol against whichever group store was
// injected.
type Service struct {
	groups store.GroupStore
	logger *slog.Logger

	now func() time.Time
}

func NewService(groups store.GroupStore, logger *slog.Logger) *Service {
	return &Service{groups: groups, logger: logger, now: time.Now}
}

// Get resolves a token to its sanitized group record.
func (s *Service) Get(ctx context.Context, token string) (*model.GuestGroup, error) {
	g, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return sanitize(g), nil
}

// Apply validates nothing itself — the patch arrives already decoded and
// checked — and runs the bounded optimistic-concurrency commit. On success it
// returns the sanitized committed record.
func (s *Service) Apply(ctx context.Context, token string, patch *Patch) (*model.GuestGroup, error) {
	var committed *model.GuestGroup

	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		g, err := s.resolve(ctx, token)
		if err != nil {
			return err
		}
		base := g.UpdatedAt

		updated := applyPatch(g.Clone(), patch, s.now().UTC())

		// Re-read the version marker right before committing. A different
		// updatedAt means another writer got there first.
		current, err := s.groups.GetByToken(ctx, token)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("group deleted during update: %w", apperr.ErrNotFound)
		}
		if !current.UpdatedAt.Equal(base) {
			metric.RSVPConflicts.Inc()
			s.logger.Info("rsvp conflict", "group_id", g.ID)
			return retry.RetryableError(apperr.ErrConflict)
		}

		if err := s.groups.Upsert(ctx, updated); err != nil {
			return err
		}
		committed = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sanitize(committed), nil
}

// resolve finds the group for a token. In entity mode a record that only
// exists in legacy storage is lifted into entity storage on first contact,
// with the legacy copy treated as authoritative.
func (s *Service) resolve(ctx context.Context, token string) (*model.GuestGroup, error) {
	g, err := s.groups.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if g != nil {
		return g, nil
	}

	if s.groups.Mode() == store.ModeEntity {
		lifted, err := s.liftFromLegacy(ctx, token)
		if err != nil {
			return nil, err
		}
		if lifted != nil {
			return lifted, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *Service) liftFromLegacy(ctx context.Context, token string) (*model.GuestGroup, error) {
	norm := model.NormalizeToken(token)
	if norm == "" {
		return nil, nil
	}

	groups, err := s.groups.ReadLegacyAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if model.NormalizeToken(groups[i].Token) != norm {
			continue
		}
		g := groups[i].Clone()
		if err := s.groups.Upsert(ctx, g); err != nil {
			return nil, fmt.Errorf("lift group %s: %w", g.ID, err)
		}
		s.logger.Info("lifted legacy group into entity storage", "group_id", g.ID)
		return g, nil
	}
	return nil, nil
}

// applyPatch computes the updated record. Attendance unification: when the
// patch carries a primary-guest attendance it wins over a group-level one;
// the winner is written to both fields so they never diverge. Without an
// explicit attendance the group status is re-derived from its members.
func applyPatch(g *model.GuestGroup, p *Patch, now time.Time) *model.GuestGroup {
	var unified *model.AttendanceStatus
	if p.PrimaryGuest != nil && p.PrimaryGuest.AttendanceStatus != nil {
		unified = p.PrimaryGuest.AttendanceStatus
	} else if p.AttendanceStatus != nil {
		unified = p.AttendanceStatus
	}

	if p.BusOptIn != nil {
		g.BusOptIn = *p.BusOptIn
	}
	if p.BusStop != nil {
		g.BusStop = *p.BusStop
	}
	if p.PrimaryGuest != nil && p.PrimaryGuest.Allergy != nil {
		g.PrimaryGuest.Allergy = *p.PrimaryGuest.Allergy
	}

	for _, cp := range p.Companions {
		mergeCompanion(g, cp)
	}

	if unified != nil {
		g.PrimaryGuest.AttendanceStatus = *unified
		g.AttendanceStatus = *unified
	} else {
		g.AttendanceStatus = model.DeriveAttendance(g)
	}

	g.UpdatedAt = now
	return g
}

func mergeCompanion(g *model.GuestGroup, cp CompanionPatch) {
	c := g.FindCompanion(cp.ID)
	if c == nil {
		// Unknown ids become new companions with default pending attendance.
		nc := model.Companion{
			ID:               cp.ID,
			Type:             model.CompanionPartner,
			AttendanceStatus: model.AttendancePending,
		}
		g.Companions = append(g.Companions, nc)
		c = &g.Companions[len(g.Companions)-1]
	}

	if cp.Name != nil {
		c.Name = *cp.Name
	}
	if cp.Surname != nil {
		c.Surname = *cp.Surname
	}
	if cp.Type != nil {
		c.Type = *cp.Type
	}
	if cp.Age != nil {
		c.Age = cp.Age
	}
	if cp.AttendanceStatus != nil {
		c.AttendanceStatus = *cp.AttendanceStatus
	}
	if cp.Allergy != nil {
		c.Allergy = *cp.Allergy
	}
}

// sanitize masks the credentials in a response copy: token keeps only its
// edges, email keeps its first character and domain.
func sanitize(g *model.GuestGroup) *model.GuestGroup {
	cp := g.Clone()
	cp.Token = model.MaskToken(cp.Token)
	cp.PrimaryGuest.Email = model.MaskEmail(cp.PrimaryGuest.Email)
	return cp
}
