package models

import "time"

// UserRole represents the portal roles.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleStaff   UserRole = "STAFF"
	RoleOffice  UserRole = "OFFICE"
	RoleParent  UserRole = "PARENT"
)

// RoleSource tags where a resolved role came from.
type RoleSource string

const (
	RoleSourceStaff       RoleSource = "staff"
	RoleSourceStudent     RoleSource = "student"
	RoleSourceManual      RoleSource = "manual_registration"
	RoleSourceProvisioned RoleSource = "auto_provisioned"
)

// RoleResolution is the tagged outcome of the profile probe chain.
type RoleResolution struct {
	Role     UserRole   `json:"role"`
	Source   RoleSource `json:"source"`
	Profile  *UserProfile
	Resolved time.Time `json:"resolved_at"`
}

// UserProfile is the identity-keyed profile document.
type UserProfile struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      UserRole  `json:"role"`
	Active    bool      `json:"active"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ManualRegistration is an office- or parent-account record created outside
// the identity provider, authenticated with a locally stored bcrypt hash.
type ManualRegistration struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FullName     string    `json:"full_name"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
