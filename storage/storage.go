// Package storage holds the portal's persistence: accounts and sessions,
// submission audit records, single product batches and blob storage.
package storage

import (
	"context"
	"errors"

	"vendorportal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidPath  = errors.New("invalid blob path")
)

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	CountUsers(ctx context.Context) (int64, error)
}

type SessionStore interface {
	// SaveSession stores s. Unless allowMultiple is set, other sessions of the
	// same user are removed first.
	SaveSession(ctx context.Context, s *models.Session, allowMultiple bool) error
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

type SubmissionStore interface {
	RecordSubmission(ctx context.Context, s *models.Submission) error
	ListSubmissions(ctx context.Context, vendor string, limit int) ([]models.Submission, error)
}
