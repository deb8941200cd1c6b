package models

import "time"

const (
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// User is a portal account. Vendor users are pinned to Vendor; admins act on
// behalf of any vendor.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Vendor       string    `json:"vendor,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type Session struct {
	UserID    int       `json:"user_id"`
	SessionID string    `json:"session_id"`
	Email     string    `json:"email"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestp"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// Submission is the audit record of one upload to the raw zone.
type Submission struct {
	SubmissionID   string    `json:"submission_id"`
	Vendor         string    `json:"vendor"`
	VendorType     string    `json:"vendor_type"`
	SubmissionType string    `json:"submission_type"`
	SubmittedBy    string    `json:"submitted_by"`
	Files          []string  `json:"files"`
	MarkerPath     string    `json:"marker_path"`
	CreatedAt      time.Time `json:"created_at"`
}
