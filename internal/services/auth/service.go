package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentboard/profiledir/internal/dependencies/clock"
	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/services/profile"
	"github.com/talentboard/profiledir/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password too short")
)

const minPasswordLength = 8

// Session represents an authenticated session
type Session struct {
	Token     string
	AccountID model.AccountID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// RegisterRequest is everything needed to open a new account
type RegisterRequest struct {
	Email       string
	Password    string
	Role        model.AccountRole
	DisplayName string
	Profile     profile.EditRequest
}

// Registration is the result of a successful registration
type Registration struct {
	Session *Session
	Account *model.Account
	Result  *profile.EditResult
}

// Service handles registration, authentication and session management
type Service struct {
	storage  storage.Storage
	profiles *profile.Service
	clock    clock.Clock
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, profiles *profile.Service, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		profiles:        profiles,
		clock:           clock,
		logger:          logger,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// Register creates an account with its sub-profiles, stores the login and opens a session.
// Profile validation failures come back as *model.ValidationError and nothing is stored.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Registration, error) {
	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	// Check if email exists
	_, err := s.storage.GetCredentialsByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, err
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		ID:          model.AccountID(uuid.NewString()),
		Role:        req.Role,
		DisplayName: strings.TrimSpace(req.DisplayName),
	}
	if account.DisplayName == "" {
		account.DisplayName = email
	}

	result, err := s.profiles.Create(ctx, account, req.Profile)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	creds := &model.Credentials{
		AccountID:    account.ID,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.SaveCredentials(ctx, creds); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			s.logger.Warn("email claimed by a concurrent registration",
				slog.String("account_id", string(account.ID)))
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.logger.Info("account registered",
		slog.String("account_id", string(account.ID)),
		slog.String("role", string(account.Role)))

	return &Registration{
		Session: s.createSession(account.ID),
		Account: account,
		Result:  result,
	}, nil
}

// Login authenticates an account and creates a session
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	creds, err := s.storage.GetCredentialsByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(creds.AccountID), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetAccount returns the current account for a session token.
// The account is read from storage so a promotion shows up immediately.
func (s *Service) GetAccount(ctx context.Context, token string) (*model.Account, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	return s.storage.GetAccount(ctx, session.AccountID)
}

func (s *Service) createSession(id model.AccountID) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     s.generateToken(),
		AccountID: id,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// generateToken returns an opaque random session token
func (s *Service) generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
