package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vendorportal/logger"
	"vendorportal/models"
	"vendorportal/storage"
	"vendorportal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
)

// Principal is the authenticated caller of a request.
type Principal struct {
	Email     string
	Role      string
	Vendor    string
	SessionID string
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// ResolveVendor pins vendor users to their own vendor. Admins act for the
// requested vendor.
func (p Principal) ResolveVendor(requested string) string {
	if p.IsAdmin() {
		return strings.TrimSpace(requested)
	}
	return p.Vendor
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
	SessionID string
}

type AuthService struct {
	users         storage.UserStore
	sessions      storage.SessionStore
	secret        string
	ttl           time.Duration
	allowMultiple bool
	log           logger.Logger
	now           func() time.Time
}

func NewAuthService(users storage.UserStore, sessions storage.SessionStore, secret string, ttl time.Duration, allowMultiple bool, log logger.Logger) *AuthService {
	return &AuthService{
		users:         users,
		sessions:      sessions,
		secret:        secret,
		ttl:           ttl,
		allowMultiple: allowMultiple,
		log:           log,
		now:           time.Now,
	}
}

// Login checks credentials, stores a session and issues its token.
func (a *AuthService) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	u, err := a.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.Active || !utils.ValidatePassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := a.now()
	sessionID := uuid.NewString()
	token, expires, err := utils.GenerateJWT(a.secret, utils.Claims{
		Email:     u.Email,
		Role:      u.Role,
		Vendor:    u.Vendor,
		SessionID: sessionID,
	}, a.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := a.sessions.SaveSession(ctx, &models.Session{
		UserID:    u.ID,
		SessionID: sessionID,
		Email:     u.Email,
		IPAddress: ip,
		Timestamp: now.UTC(),
		ExpiresAt: expires.UTC(),
	}, a.allowMultiple); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	a.log.Infof(ctx, "User %s logged in", u.Email)
	return &LoginResult{Token: token, ExpiresAt: expires, User: *u, SessionID: sessionID}, nil
}

// Authenticate validates a token and its stored session.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := utils.ValidateJWT(a.secret, token)
	if err != nil {
		return nil, err
	}
	session, err := a.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Expired(a.now()) {
		return nil, ErrSessionExpired
	}
	return &Principal{
		Email:     claims.Email,
		Role:      claims.Role,
		Vendor:    claims.Vendor,
		SessionID: claims.SessionID,
	}, nil
}

func (a *AuthService) Logout(ctx context.Context, sessionID string) error {
	return a.sessions.DeleteSession(ctx, sessionID)
}

func (a *AuthService) CleanupSessions(ctx context.Context) (int64, error) {
	return a.sessions.CleanupExpiredSessions(ctx)
}

// SeedUser is an account created on an empty user store.
type SeedUser struct {
	Email    string
	Password string
	Role     string
	Vendor   string
}

var DefaultUsers = []SeedUser{
	{Email: "vendor@grote.com", Password: "vendor123", Role: models.RoleVendor, Vendor: "Grote Lighting"},
	{Email: "admin@fgi.com", Password: "admin123", Role: models.RoleAdmin},
}

// SeedUsers creates users when the store has none and returns how many were
// created.
func (a *AuthService) SeedUsers(ctx context.Context, seeds []SeedUser) (int, error) {
	n, err := a.users.CountUsers(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for _, s := range seeds {
		hash, err := utils.HashPassword(s.Password)
		if err != nil {
			return 0, err
		}
		if err := a.users.CreateUser(ctx, &models.User{
			Email:        s.Email,
			PasswordHash: hash,
			Role:         s.Role,
			Vendor:       s.Vendor,
			Active:       true,
		}); err != nil {
			return 0, fmt.Errorf("seed %s: %w", s.Email, err)
		}
	}
	a.log.Infof(ctx, "Seeded %d users", len(seeds))
	return len(seeds), nil
}
