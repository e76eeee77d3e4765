package models

import "time"

// Exam is a scheduled examination for a cohort.
type Exam struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Course    string    `json:"course"`
	Program   string    `json:"program"`
	Year      int       `json:"year"`
	Date      string    `json:"date"`
	Session   string    `json:"session,omitempty"`
	MaxMarks  int       `json:"max_marks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubjectMark is one subject's marks inside a result record.
type SubjectMark struct {
	Subject  string `json:"subject"`
	Internal int    `json:"internal"`
	External int    `json:"external"`
	Total    int    `json:"total"`
	Grade    string `json:"grade,omitempty"`
}

// Result is a student's marks for one exam, keyed by register number + exam.
type Result struct {
	ID             string        `json:"id"`
	RegisterNumber string        `json:"register_number"`
	ExamID         string        `json:"exam_id"`
	ExamName       string        `json:"exam_name"`
	Marks          []SubjectMark `json:"marks"`
	Remarks        string        `json:"remarks,omitempty"`
	PublishedAt    time.Time     `json:"published_at"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ResultKey builds the composite document id for a result record.
func ResultKey(registerNumber, examID string) string {
	return registerNumber + "_" + examID
}
