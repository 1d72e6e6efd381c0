package storage

import (
	"context"

	"github.com/talentboard/profiledir/internal/model"
)

// Storage defines the interface for data persistence.
// Update methods are read-modify-write on a single record and return the stored result.
type Storage interface {
	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	UpdateAccount(ctx context.Context, id model.AccountID, update *model.AccountUpdate) (*model.Account, error)

	// Credentials operations
	SaveCredentials(ctx context.Context, creds *model.Credentials) error
	GetCredentialsByEmail(ctx context.Context, email string) (*model.Credentials, error)

	// Player profile operations
	SavePlayerProfile(ctx context.Context, profile *model.PlayerProfile) error
	GetPlayerProfile(ctx context.Context, id model.AccountID) (*model.PlayerProfile, error)
	UpdatePlayerProfile(ctx context.Context, id model.AccountID, update *model.PlayerUpdate) (*model.PlayerProfile, error)

	// Recruiter profile operations
	SaveRecruiterProfile(ctx context.Context, profile *model.RecruiterProfile) error
	GetRecruiterProfile(ctx context.Context, id model.AccountID) (*model.RecruiterProfile, error)
	UpdateRecruiterProfile(ctx context.Context, id model.AccountID, update *model.RecruiterUpdate) (*model.RecruiterProfile, error)

	// Club directory operations
	SaveClubs(ctx context.Context, clubs []model.Club) error
	GetClubs(ctx context.Context) ([]model.Club, error)
}
