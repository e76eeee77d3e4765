package models

import "time"

// TimetableSlot is one period in a weekly timetable.
type TimetableSlot struct {
	Day      string `json:"day"`
	Period   int    `json:"period"`
	Subject  string `json:"subject"`
	Staff    string `json:"staff,omitempty"`
	Room     string `json:"room,omitempty"`
	StartsAt string `json:"starts_at,omitempty"`
	EndsAt   string `json:"ends_at,omitempty"`
}

// Timetable is the weekly schedule for a cohort, keyed by its class id.
type Timetable struct {
	ClassID   string          `json:"class_id"`
	Course    string          `json:"course"`
	Program   string          `json:"program"`
	Year      int             `json:"year"`
	Section   string          `json:"section,omitempty"`
	Slots     []TimetableSlot `json:"slots"`
	UpdatedBy string          `json:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at"`
}
