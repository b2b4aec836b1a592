package model

import (
	"strings"
	"time"
)

// AttendanceStatus is the RSVP state of a guest or a whole group.
type AttendanceStatus string

const (
	AttendancePending   AttendanceStatus = "pending"
	AttendanceConfirmed AttendanceStatus = "confirmed"
	AttendanceDeclined  AttendanceStatus = "declined"
)

// ValidAttendanceStatus reports whether s is one of the known states.
func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePending, AttendanceConfirmed, AttendanceDeclined:
		return true
	}
	return false
}

// CompanionType distinguishes adult partners from children.
type CompanionType string

const (
	CompanionPartner CompanionType = "partner"
	CompanionChild   CompanionType = "child"
)

// ValidCompanionType reports whether t is one of the known types.
func ValidCompanionType(t CompanionType) bool {
	return t == CompanionPartner || t == CompanionChild
}

// PrimaryGuest is the invitation holder.
type PrimaryGuest struct {
	Name             string           `json:"name"`
	Surname          string           `json:"surname"`
	Email            string           `json:"email"`
	AttendanceStatus AttendanceStatus `json:"attendance_status"`
	Allergy          string           `json:"allergy,omitempty"`
}

// Companion is an additional guest inside a group. Companion IDs are assigned
// client-side and are unique within their group only.
type Companion struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Surname          string           `json:"surname"`
	Type             CompanionType    `json:"type"`
	Age              *int             `json:"age,omitempty"`
	AttendanceStatus AttendanceStatus `json:"attendance_status"`
	Allergy          string           `json:"allergy,omitempty"`
}

// GuestGroup is the unit of invitation: one primary guest plus companions,
// sharing a single access token. UpdatedAt doubles as the optimistic-concurrency
// version marker for RSVP updates.
type GuestGroup struct {
	ID               string           `json:"id"`
	Token            string           `json:"token"`
	PrimaryGuest     PrimaryGuest     `json:"primary_guest"`
	Companions       []Companion      `json:"companions"`
	AttendanceStatus AttendanceStatus `json:"attendance_status"`
	Notes            string           `json:"notes,omitempty"`
	BusOptIn         bool             `json:"bus_opt_in"`
	BusStop          string           `json:"bus_stop,omitempty"`
	Table            string           `json:"table,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NormalizeToken converts a guest-supplied token to its canonical lookup form.
// Normalization is idempotent.
func NormalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// DeriveAttendance computes the group-level status from its members: confirmed
// if any member confirmed, declined only if every member declined, pending
// otherwise.
func DeriveAttendance(g *GuestGroup) AttendanceStatus {
	allDeclined := g.PrimaryGuest.AttendanceStatus == AttendanceDeclined
	if g.PrimaryGuest.AttendanceStatus == AttendanceConfirmed {
		return AttendanceConfirmed
	}
	for _, c := range g.Companions {
		if c.AttendanceStatus == AttendanceConfirmed {
			return AttendanceConfirmed
		}
		if c.AttendanceStatus != AttendanceDeclined {
			allDeclined = false
		}
	}
	if allDeclined {
		return AttendanceDeclined
	}
	return AttendancePending
}

// Clone returns a deep copy of the group.
func (g *GuestGroup) Clone() *GuestGroup {
	cp := *g
	if g.Companions != nil {
		cp.Companions = make([]Companion, len(g.Companions))
		copy(cp.Companions, g.Companions)
	}
	return &cp
}

// FindCompanion returns the companion with the given id, or nil.
func (g *GuestGroup) FindCompanion(id string) *Companion {
	for i := range g.Companions {
		if g.Companions[i].ID == id {
			return &g.Companions[i]
		}
	}
	return nil
}
