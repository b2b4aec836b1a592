package model

import "time"

// TableConfig describes one reception table. CaptainRef points at a group
// member using the format "groupId:companionId", or "groupId:principal" for
// the primary guest.
type TableConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Location    string `json:"location,omitempty"`
	CaptainRef  string `json:"captain_ref,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// BusConfig describes one shuttle bus.
type BusConfig struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Label  string `json:"label,omitempty"`
}

// RacePhoto is a single submission in a table's photo mission race. The URL
// and id come from the external file host and are stored verbatim.
type RacePhoto struct {
	ID            string    `json:"id"`
	MissionID     string    `json:"mission_id"`
	URL           string    `json:"url"`
	SubmitterName string    `json:"submitter_name"`
	UploadedAt    time.Time `json:"uploaded_at"`
	Validated     bool      `json:"validated"`
}

// PhotoRace is a per-table photo scavenger game: seven missions drawn from a
// fixed catalog, completed once seven submissions have been validated.
type PhotoRace struct {
	TableID     string      `json:"table_id"`
	MissionIDs  []string    `json:"mission_ids"`
	Photos      []RacePhoto `json:"photos"`
	Completed   bool        `json:"completed"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}
