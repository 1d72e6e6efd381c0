// Package profile is the profile-edit facade: it loads account views, runs
// edits through reconciliation and the fan-out commit, and promotes accounts.
package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/talentboard/profiledir/internal/dependencies/clock"
	"github.com/talentboard/profiledir/internal/metrics"
	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/services/commit"
	"github.com/talentboard/profiledir/internal/services/derive"
	"github.com/talentboard/profiledir/internal/services/directory"
	"github.com/talentboard/profiledir/internal/services/reconcile"
	"github.com/talentboard/profiledir/internal/storage"
)

// PlayerView is a player profile with its derived fields
type PlayerView struct {
	Profile       *model.PlayerProfile `json:"profile"`
	Age           *int                 `json:"age"`
	ActiveLeagues []string             `json:"active_leagues"`
}

// RecruiterView is a recruiter profile with its derived fields
type RecruiterView struct {
	Profile *model.RecruiterProfile `json:"profile"`
	// Age is re-derived from the shared birth date on DUAL accounts
	Age           *int     `json:"age"`
	ActiveLeagues []string `json:"active_leagues"`
}

// View is everything the edit surface loads for one account
type View struct {
	Account   *model.Account `json:"account"`
	Player    *PlayerView    `json:"player,omitempty"`
	Recruiter *RecruiterView `json:"recruiter,omitempty"`

	// Skew names shared attributes that differ between the two sub-profiles,
	// typically left behind by an earlier partial failure
	Skew []string `json:"skew,omitempty"`
}

// EditRequest is one combined edit from the profile-edit surface
type EditRequest struct {
	Intent      model.EditIntent            `json:"intent"`
	ClubHistory model.ClubHistoryCandidates `json:"club_history"`

	// LoadedFrom is the sub-profile whose shared attributes the surface showed.
	// Empty means the account's primary sub-profile.
	LoadedFrom model.ProfileKind `json:"loaded_from,omitempty"`
}

// EditResult is a committed edit
type EditResult struct {
	Outcome commit.Outcome
	Shared  model.SharedAttributes
	Dropped map[model.ProfileKind][]int
}

// Service implements profile operations
type Service struct {
	storage     storage.Storage
	directory   *directory.Service
	reconciler  *reconcile.Reconciler
	coordinator *commit.Coordinator
	metrics     *metrics.Metrics
	clock       clock.Clock
	logger      *slog.Logger
}

// New creates a profile Service
func New(
	storage storage.Storage,
	directory *directory.Service,
	reconciler *reconcile.Reconciler,
	coordinator *commit.Coordinator,
	m *metrics.Metrics,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:     storage,
		directory:   directory,
		reconciler:  reconciler,
		coordinator: coordinator,
		metrics:     m,
		clock:       clock,
		logger:      logger,
	}
}

// Get loads an account with its sub-profiles and derived fields
func (s *Service) Get(ctx context.Context, id model.AccountID) (*View, error) {
	account, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	view := &View{Account: account}

	if account.Role.HasPlayer() {
		p, err := s.storage.GetPlayerProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		view.Player = &PlayerView{
			Profile:       p,
			Age:           derive.Age(p.Shared.BirthDate(), now),
			ActiveLeagues: derive.ActiveLeagues(p.ClubHistory),
		}
	}

	if account.Role.HasRecruiter() {
		r, err := s.storage.GetRecruiterProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		view.Recruiter = &RecruiterView{
			Profile:       r,
			Age:           derive.RecruiterAge(account.Role, r.Shared, r.Age, now),
			ActiveLeagues: derive.ActiveLeagues(r.ClubHistory),
		}
	}

	if view.Player != nil && view.Recruiter != nil {
		view.Skew = view.Player.Profile.Shared.Diff(view.Recruiter.Profile.Shared)
		if len(view.Skew) > 0 {
			s.logger.Warn("shared attributes differ between sub-profiles",
				slog.String("account_id", string(id)),
				slog.Any("fields", view.Skew))
		}
	}

	return view, nil
}

// Validate runs reconciliation without persisting anything
func (s *Service) Validate(ctx context.Context, id model.AccountID, req EditRequest) (reconcile.Result, error) {
	account, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return reconcile.Result{}, err
	}

	current, err := s.loadShared(ctx, account, req.LoadedFrom)
	if err != nil {
		return reconcile.Result{}, err
	}

	return s.reconciler.Reconcile(reconcile.Input{
		AccountID:   id,
		Role:        account.Role,
		Current:     current,
		Intent:      req.Intent,
		ClubHistory: req.ClubHistory,
		Directory:   s.snapshot(ctx),
		AsOf:        s.clock.Now(),
	}), nil
}

// Edit reconciles the request and commits the resulting payloads.
// Violations come back as a *model.ValidationError with nothing written.
// A partial failure is not an error: inspect the outcome status.
func (s *Service) Edit(ctx context.Context, id model.AccountID, req EditRequest) (*EditResult, error) {
	res, err := s.Validate(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if !res.Valid() {
		return nil, res.Err()
	}

	outcome, err := s.coordinator.Commit(ctx, res.Payloads)
	if err != nil {
		return nil, err
	}
	s.recordFallback(res, outcome)

	return &EditResult{Outcome: outcome, Shared: res.Shared, Dropped: res.Dropped}, nil
}

// Create persists a new account and fills its sub-profiles from the intent.
// This is account-creation time for the bio rules: a lone bio seeds both roles.
func (s *Service) Create(ctx context.Context, account *model.Account, req EditRequest) (*EditResult, error) {
	now := s.clock.Now()

	res := s.reconciler.Reconcile(reconcile.Input{
		AccountID:   account.ID,
		Role:        account.Role,
		Intent:      req.Intent,
		ClubHistory: req.ClubHistory,
		Directory:   s.snapshot(ctx),
		AsOf:        now,
		Creating:    true,
	})
	if !res.Valid() {
		return nil, res.Err()
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	if account.Role.HasPlayer() {
		p := &model.PlayerProfile{AccountID: account.ID, CreatedAt: now, UpdatedAt: now}
		if err := s.storage.SavePlayerProfile(ctx, p); err != nil {
			return nil, err
		}
	}
	if account.Role.HasRecruiter() {
		r := &model.RecruiterProfile{AccountID: account.ID, CreatedAt: now, UpdatedAt: now}
		if err := s.storage.SaveRecruiterProfile(ctx, r); err != nil {
			return nil, err
		}
	}

	outcome, err := s.coordinator.Commit(ctx, res.Payloads)
	if err != nil {
		return nil, err
	}
	s.recordFallback(res, outcome)

	s.logger.Info("account created",
		slog.String("account_id", string(account.ID)),
		slog.String("role", string(account.Role)),
		slog.String("status", string(outcome.Status)))

	return &EditResult{Outcome: outcome, Shared: res.Shared, Dropped: res.Dropped}, nil
}

// Promote turns a single-role account into a DUAL account. The new sub-profile
// starts with the existing one's shared attributes so the pair is coherent.
func (s *Service) Promote(ctx context.Context, id model.AccountID) (*View, error) {
	account, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Role == model.RoleDual {
		return nil, model.ErrAlreadyDual
	}
	if !account.Role.CanPromoteTo(model.RoleDual) {
		return nil, model.ErrInvalidRole
	}

	now := s.clock.Now()
	shared, err := s.loadShared(ctx, account, "")
	if err != nil {
		return nil, err
	}

	if account.Role == model.RolePlayerOnly {
		err = s.storage.SaveRecruiterProfile(ctx, &model.RecruiterProfile{
			AccountID: id,
			Shared:    shared,
			Age:       derive.RecruiterAge(model.RoleDual, shared, nil, now),
			CreatedAt: now,
			UpdatedAt: now,
		})
	} else {
		err = s.storage.SavePlayerProfile(ctx, &model.PlayerProfile{
			AccountID: id,
			Shared:    shared,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err != nil {
		return nil, err
	}

	// A DUAL recruiter's age is derived from now on
	if account.Role == model.RoleRecruiterOnly {
		if _, err := s.storage.UpdateRecruiterProfile(ctx, id, &model.RecruiterUpdate{
			Shared: shared,
			Age:    derive.RecruiterAge(model.RoleDual, shared, nil, now),
			SetAge: true,
			At:     now,
		}); err != nil {
			return nil, err
		}
	}

	previous := account.Role
	account.Role = model.RoleDual
	account.UpdatedAt = now
	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account promoted",
		slog.String("account_id", string(id)),
		slog.String("from", string(previous)))

	return s.Get(ctx, id)
}

// loadShared reads the shared attributes from the sub-profile the surface loaded
func (s *Service) loadShared(ctx context.Context, account *model.Account, from model.ProfileKind) (model.SharedAttributes, error) {
	if from == "" {
		from = account.Role.Kinds()[0]
	}

	switch {
	case from == model.KindPlayer && account.Role.HasPlayer():
		p, err := s.storage.GetPlayerProfile(ctx, account.ID)
		if err != nil {
			return model.SharedAttributes{}, err
		}
		return p.Shared, nil
	case from == model.KindRecruiter && account.Role.HasRecruiter():
		r, err := s.storage.GetRecruiterProfile(ctx, account.ID)
		if err != nil {
			return model.SharedAttributes{}, err
		}
		return r.Shared, nil
	}
	return model.SharedAttributes{}, model.ErrProfileNotFound
}

// recordFallback counts a saved edit whose club history bypassed the directory
func (s *Service) recordFallback(res reconcile.Result, outcome commit.Outcome) {
	if res.DirectoryFallback && outcome.Status != commit.StatusAllFailed {
		s.metrics.ObserveDirectoryFallback()
	}
}

// snapshot returns the club directory, or nil when it is unavailable.
// An unavailable directory never blocks a save.
func (s *Service) snapshot(ctx context.Context) *directory.Directory {
	dir, err := s.directory.Snapshot(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrDirectoryUnavailable) {
			s.logger.Warn("club directory lookup failed", slog.String("error", err.Error()))
		}
		return nil
	}
	return dir
}
