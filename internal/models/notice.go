package models

import "time"

// ApprovalStatus is the publication workflow state for notices and events.
// Staff submissions start pending; office submissions are approved on create.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Notice is a department announcement.
type Notice struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Category       string         `json:"category"`
	Priority       string         `json:"priority,omitempty"`
	Audience       UserRole       `json:"audience,omitempty"`
	AttachmentURLs []string       `json:"attachment_urls,omitempty"`
	Status         ApprovalStatus `json:"status"`
	CreatedBy      string         `json:"created_by"`
	CreatedByRole  UserRole       `json:"created_by_role"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Event is a scheduled department event.
type Event struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	Venue          string         `json:"venue,omitempty"`
	StartsAt       time.Time      `json:"starts_at"`
	EndsAt         time.Time      `json:"ends_at,omitempty"`
	Audience       UserRole       `json:"audience,omitempty"`
	AttachmentURLs []string       `json:"attachment_urls,omitempty"`
	Status         ApprovalStatus `json:"status"`
	CreatedBy      string         `json:"created_by"`
	CreatedByRole  UserRole       `json:"created_by_role"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NoticeFilter narrows notice and event listings.
type NoticeFilter struct {
	Category string
	Audience UserRole
	Status   ApprovalStatus
}
