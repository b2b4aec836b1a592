package rsvp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"boda-web/internal/apperr"
	"boda-web/internal/model"
)

// Patch is the full allow-list of fields a token holder may change. Anything
// outside this shape fails validation for the whole request; unknown fields
// are rejected at decode time, not ignored.
type Patch struct {
	AttendanceStatus *model.AttendanceStatus `json:"attendance_status,omitempty"`
	BusOptIn         *bool                   `json:"bus_opt_in,omitempty"`
	BusStop          *string                 `json:"bus_stop,omitempty"`
	PrimaryGuest     *PrimaryGuestPatch      `json:"primary_guest,omitempty"`
	Companions       []CompanionPatch        `json:"companions,omitempty"`
}

// PrimaryGuestPatch covers the two primary-guest fields guests may edit.
type PrimaryGuestPatch struct {
	AttendanceStatus *model.AttendanceStatus `json:"attendance_status,omitempty"`
	Allergy          *string                 `json:"allergy,omitempty"`
}

// CompanionPatch updates the companion with the matching id, or appends a new
// companion when the id is unknown.
type CompanionPatch struct {
	ID               string                  `json:"id"`
	Name             *string                 `json:"name,omitempty"`
	Surname          *string                 `json:"surname,omitempty"`
	Type             *model.CompanionType    `json:"type,omitempty"`
	Age              *int                    `json:"age,omitempty"`
	AttendanceStatus *model.AttendanceStatus `json:"attendance_status,omitempty"`
	Allergy          *string                 `json:"allergy,omitempty"`
}

// DecodePatch parses a patch body strictly: unknown fields anywhere in the
// document fail the request.
func DecodePatch(body []byte) (*Patch, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var p Patch
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	// A second document after the first is as malformed as an unknown field.
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after patch", apperr.ErrValidation)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Patch) validate() error {
	if p.AttendanceStatus != nil && !model.ValidAttendanceStatus(*p.AttendanceStatus) {
		return fmt.Errorf("%w: unknown attendance status %q", apperr.ErrValidation, *p.AttendanceStatus)
	}
	if p.PrimaryGuest != nil && p.PrimaryGuest.AttendanceStatus != nil &&
		!model.ValidAttendanceStatus(*p.PrimaryGuest.AttendanceStatus) {
		return fmt.Errorf("%w: unknown attendance status %q", apperr.ErrValidation, *p.PrimaryGuest.AttendanceStatus)
	}

	seen := make(map[string]struct{}, len(p.Companions))
	for _, c := range p.Companions {
		if c.ID == "" {
			return fmt.Errorf("%w: companion patch without id", apperr.ErrValidation)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate companion id %q", apperr.ErrValidation, c.ID)
		}
		seen[c.ID] = struct{}{}

		if c.Type != nil && !model.ValidCompanionType(*c.Type) {
			return fmt.Errorf("%w: unknown companion type %q", apperr.ErrValidation, *c.Type)
		}
		if c.AttendanceStatus != nil && !model.ValidAttendanceStatus(*c.AttendanceStatus) {
			return fmt.Errorf("%w: unknown attendance status %q", apperr.ErrValidation, *c.AttendanceStatus)
		}
		if c.Age != nil && *c.Age < 0 {
			return fmt.Errorf("%w: negative companion age", apperr.ErrValidation)
		}
	}
	return nil
}
