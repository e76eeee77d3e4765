package models

import "time"

// Staff is a teaching or office staff record, keyed by email. Staff are never
// hard-deleted; removal flips Active to false.
type Staff struct {
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	Designation     string    `json:"designation"`
	Department      string    `json:"department"`
	SubjectsHandled []string  `json:"subjects_handled,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StaffFilter narrows staff listings.
type StaffFilter struct {
	Department     string
	Designation    string
	IncludeDeleted bool
}
