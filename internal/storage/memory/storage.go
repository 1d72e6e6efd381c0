package memory

import (
	"context"
	"sync"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	accounts    map[model.AccountID]*model.Account
	credentials map[model.AccountID]*model.Credentials
	emailIndex  map[string]model.AccountID
	players     map[model.AccountID]*model.PlayerProfile
	recruiters  map[model.AccountID]*model.RecruiterProfile
	clubs       []model.Club
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:    make(map[model.AccountID]*model.Account),
		credentials: make(map[model.AccountID]*model.Credentials),
		emailIndex:  make(map[string]model.AccountID),
		players:     make(map[model.AccountID]*model.PlayerProfile),
		recruiters:  make(map[model.AccountID]*model.RecruiterProfile),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := *account
	s.accounts[account.ID] = &a
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	a := *account
	return &a, nil
}

func (s *Storage) UpdateAccount(ctx context.Context, id model.AccountID, update *model.AccountUpdate) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	account.Apply(update)
	a := *account
	return &a, nil
}

// Credentials operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.emailIndex[creds.Email]; ok && owner != creds.AccountID {
		return model.ErrEmailTaken
	}
	c := *creds
	s.credentials[creds.AccountID] = &c
	s.emailIndex[creds.Email] = creds.AccountID
	return nil
}

func (s *Storage) GetCredentialsByEmail(ctx context.Context, email string) (*model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	creds, ok := s.credentials[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	c := *creds
	return &c, nil
}

// Player profile operations

func (s *Storage) SavePlayerProfile(ctx context.Context, profile *model.PlayerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[profile.AccountID] = profile.Clone()
	return nil
}

func (s *Storage) GetPlayerProfile(ctx context.Context, id model.AccountID) (*model.PlayerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.players[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return profile.Clone(), nil
}

func (s *Storage) UpdatePlayerProfile(ctx context.Context, id model.AccountID, update *model.PlayerUpdate) (*model.PlayerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.players[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	profile.Apply(update)
	return profile.Clone(), nil
}

// Recruiter profile operations

func (s *Storage) SaveRecruiterProfile(ctx context.Context, profile *model.RecruiterProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recruiters[profile.AccountID] = profile.Clone()
	return nil
}

func (s *Storage) GetRecruiterProfile(ctx context.Context, id model.AccountID) (*model.RecruiterProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.recruiters[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return profile.Clone(), nil
}

func (s *Storage) UpdateRecruiterProfile(ctx context.Context, id model.AccountID, update *model.RecruiterUpdate) (*model.RecruiterProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.recruiters[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	profile.Apply(update)
	return profile.Clone(), nil
}

// Club directory operations

func (s *Storage) SaveClubs(ctx context.Context, clubs []model.Club) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubs = append(make([]model.Club, 0, len(clubs)), clubs...)
	return nil
}

func (s *Storage) GetClubs(ctx context.Context) ([]model.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clubs == nil {
		return nil, model.ErrDirectoryUnavailable
	}
	return append([]model.Club(nil), s.clubs...), nil
}
