package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/storage"
)

// DefaultSearchLimit caps Search results when the caller passes no limit
const DefaultSearchLimit = 20

// Service owns the canonical club directory and hands out read-only snapshots
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu  sync.RWMutex
	dir *Directory
}

// New creates a new directory Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// LoadFromStorage loads the club list previously saved to storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	clubs, err := s.storage.GetClubs(ctx)
	if err != nil {
		return err
	}
	if len(clubs) == 0 {
		return model.ErrDirectoryUnavailable
	}
	s.LoadClubs(clubs)
	return nil
}

// LoadFromFile loads clubs from a JSON array file and saves them to storage
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var clubs []model.Club
	if err := json.Unmarshal(data, &clubs); err != nil {
		return fmt.Errorf("parse club directory %s: %w", path, err)
	}

	if err := s.storage.SaveClubs(ctx, clubs); err != nil {
		return err
	}

	s.LoadClubs(clubs)
	return nil
}

// LoadClubs directly installs a club list (useful for testing)
func (s *Service) LoadClubs(clubs []model.Club) {
	dir := NewDirectory(clubs)

	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()

	s.logger.Info("club directory loaded", "clubs", dir.Len())
}

// IsLoaded returns whether a directory snapshot is available in memory
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir != nil
}

// Snapshot returns the current directory. If nothing is loaded yet it tries
// storage once; failure is reported as ErrDirectoryUnavailable.
func (s *Service) Snapshot(ctx context.Context) (*Directory, error) {
	s.mu.RLock()
	dir := s.dir
	s.mu.RUnlock()
	if dir != nil {
		return dir, nil
	}

	if err := s.LoadFromStorage(ctx); err != nil {
		s.logger.Warn("club directory unavailable", "error", err)
		return nil, fmt.Errorf("%w: %v", model.ErrDirectoryUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir, nil
}

// Search returns clubs whose name or aliases match query, best first
func (s *Service) Search(ctx context.Context, query string, limit int) ([]model.Club, error) {
	dir, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return dir.Search(query, limit), nil
}

// Get returns the club with the given id
func (s *Service) Get(ctx context.Context, id model.ClubID) (model.Club, error) {
	dir, err := s.Snapshot(ctx)
	if err != nil {
		return model.Club{}, err
	}
	club, ok := dir.Get(id)
	if !ok {
		return model.Club{}, model.ErrClubNotFound
	}
	return club, nil
}
