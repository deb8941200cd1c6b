package models

import (
	"strings"
	"time"
)

// UserGorm represents the users table with GORM tags
type UserGorm struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         string    `gorm:"column:role;not null;default:'vendor'" json:"role"`
	Vendor       string    `gorm:"column:vendor" json:"vendor"`
	Active       bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (UserGorm) TableName() string {
	return "users"
}

func (u UserGorm) ToUser() User {
	return User{
		ID:           int(u.ID),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Vendor:       u.Vendor,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
	}
}

// SubmissionGorm represents the submissions table with GORM tags
type SubmissionGorm struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id"`
	SubmissionID   string    `gorm:"column:submission_id;index;not null" json:"submission_id"`
	Vendor         string    `gorm:"column:vendor;index;not null" json:"vendor"`
	VendorType     string    `gorm:"column:vendor_type" json:"vendor_type"`
	SubmissionType string    `gorm:"column:submission_type;not null" json:"submission_type"`
	SubmittedBy    string    `gorm:"column:submitted_by" json:"submitted_by"`
	Files          string    `gorm:"column:files;type:text" json:"files"`
	MarkerPath     string    `gorm:"column:marker_path" json:"marker_path"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (SubmissionGorm) TableName() string {
	return "submissions"
}

func NewSubmissionGorm(s Submission) SubmissionGorm {
	return SubmissionGorm{
		SubmissionID:   s.SubmissionID,
		Vendor:         s.Vendor,
		VendorType:     s.VendorType,
		SubmissionType: s.SubmissionType,
		SubmittedBy:    s.SubmittedBy,
		Files:          strings.Join(s.Files, "\n"),
		MarkerPath:     s.MarkerPath,
		CreatedAt:      s.CreatedAt,
	}
}

func (s SubmissionGorm) ToSubmission() Submission {
	var files []string
	if s.Files != "" {
		files = strings.Split(s.Files, "\n")
	}
	return Submission{
		SubmissionID:   s.SubmissionID,
		Vendor:         s.Vendor,
		VendorType:     s.VendorType,
		SubmissionType: s.SubmissionType,
		SubmittedBy:    s.SubmittedBy,
		Files:          files,
		MarkerPath:     s.MarkerPath,
		CreatedAt:      s.CreatedAt,
	}
}
