package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"vendorportal/models"
)

// MemoryUserStore is the in-process UserStore used when Postgres is not
// configured.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]models.User
	nextID int
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (s *MemoryUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := s.users[key]; ok {
		return fmt.Errorf("user %s already exists", u.Email)
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now().UTC()
	s.users[key] = *u
	return nil
}

func (s *MemoryUserStore) CountUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session), now: time.Now}
}

func (s *MemorySessionStore) SaveSession(_ context.Context, session *models.Session, allowMultiple bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !allowMultiple {
		for id, existing := range s.sessions {
			if existing.UserID == session.UserID {
				delete(s.sessions, id)
			}
		}
	}
	s.sessions[session.SessionID] = *session
	return nil
}

func (s *MemorySessionStore) GetSession(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemorySessionStore) CleanupExpiredSessions(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int64
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

type MemorySubmissionStore struct {
	mu          sync.Mutex
	submissions []models.Submission
}

func NewMemorySubmissionStore() *MemorySubmissionStore {
	return &MemorySubmissionStore{}
}

func (s *MemorySubmissionStore) RecordSubmission(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, *sub)
	return nil
}

func (s *MemorySubmissionStore) ListSubmissions(_ context.Context, vendor string, limit int) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Submission
	for _, sub := range slices.Backward(s.submissions) {
		if vendor != "" && sub.Vendor != vendor {
			continue
		}
		out = append(out, sub)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
