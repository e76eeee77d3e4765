package models

import "time"

// AttendanceStatus enumerates per-student attendance outcomes.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// AttendanceEntry is one student's status within a session.
type AttendanceEntry struct {
	RegisterNumber string           `json:"register_number"`
	Status         AttendanceStatus `json:"status"`
}

// AttendanceRecord is one class session's attendance, keyed by date+subject.
// Records are written once and occasionally corrected by re-upserting the
// same composite key.
type AttendanceRecord struct {
	ID       string            `json:"id"`
	Date     string            `json:"date"`
	Subject  string            `json:"subject"`
	Course   string            `json:"course"`
	Program  string            `json:"program"`
	Year     int               `json:"year"`
	Section  string            `json:"section,omitempty"`
	MarkedBy string            `json:"marked_by"`
	Entries  []AttendanceEntry `json:"entries"`
	MarkedAt time.Time         `json:"marked_at"`
}

// AttendanceKey builds the composite document id for a session.
func AttendanceKey(date, subject string) string {
	return date + "_" + subject
}
