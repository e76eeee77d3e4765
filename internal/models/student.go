package models

import "time"

// Student is a learner record, keyed by register number. Each student is
// stored twice: in the class-partition collection derived from
// course/program/year and in the flat global collection. The two copies are
// written in one transaction and are field-identical.
type Student struct {
	RegisterNumber string    `json:"register_number"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Course         string    `json:"course"`
	Program        string    `json:"program"`
	Year           int       `json:"year"`
	Section        string    `json:"section,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	GuardianName   string    `json:"guardian_name,omitempty"`
	GuardianPhone  string    `json:"guardian_phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	DocumentURLs   []string  `json:"document_urls,omitempty"`
	FeesPaid       bool      `json:"fees_paid"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StudentFilter captures the equality filters a student listing supports.
type StudentFilter struct {
	Course  string
	Program string
	Year    int
	Section string
}

// Partitioned reports whether the filter pins down a class partition.
func (f StudentFilter) Partitioned() bool {
	return f.Course != "" && f.Program != "" && f.Year > 0
}
