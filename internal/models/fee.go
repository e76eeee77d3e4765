package models

import "time"

// FeeRecord tracks a student's fee status for an academic year.
type FeeRecord struct {
	ID             string    `json:"id"`
	RegisterNumber string    `json:"register_number"`
	AcademicYear   string    `json:"academic_year"`
	AmountDue      int64     `json:"amount_due"`
	AmountPaid     int64     `json:"amount_paid"`
	Paid           bool      `json:"paid"`
	ReceiptNumber  string    `json:"receipt_number,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
