package response

import (
	"net/http"
	"time"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/services/auth"
	"github.com/talentboard/profiledir/internal/services/commit"
	"github.com/talentboard/profiledir/internal/services/profile"
	"github.com/talentboard/profiledir/internal/services/reconcile"
)

// Account represents an account in API responses
type Account struct {
	ID           string    `json:"id"`
	Role         string    `json:"role"`
	DisplayName  string    `json:"display_name"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		ID:           string(a.ID),
		Role:         string(a.Role),
		DisplayName:  a.DisplayName,
		ProfileImage: a.ProfileImage,
		CreatedAt:    a.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Account      Account `json:"account"`
	SessionToken string  `json:"session_token"`
	ExpiresAt    string  `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session and its account
func AuthResponseFromSession(s *auth.Session, a *model.Account) AuthResponse {
	return AuthResponse{
		Account:      AccountFromModel(a),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// Operation is the result of one persisted leg
type Operation struct {
	Operation string `json:"operation"`
	Succeeded bool   `json:"succeeded"`
	Reason    string `json:"reason,omitempty"`
}

// Outcome is the aggregate result of a commit
type Outcome struct {
	Status     string      `json:"status"`
	Operations []Operation `json:"operations"`
}

// OutcomeFromCommit converts a commit.Outcome
func OutcomeFromCommit(o commit.Outcome) Outcome {
	ops := make([]Operation, len(o.Details))
	for i, d := range o.Details {
		ops[i] = Operation{
			Operation: string(d.Operation),
			Succeeded: d.Succeeded,
			Reason:    d.Reason,
		}
	}
	return Outcome{Status: string(o.Status), Operations: ops}
}

// OutcomeStatusCode maps a commit status to an HTTP status
func OutcomeStatusCode(status commit.Status) int {
	switch status {
	case commit.StatusPartialFailure:
		return http.StatusMultiStatus
	case commit.StatusAllFailed:
		return http.StatusBadGateway
	}
	return http.StatusOK
}

// RegisterResponse is the response after registering an account
type RegisterResponse struct {
	AuthResponse
	Outcome Outcome `json:"outcome"`
}

// EditResponse is the response after committing a profile edit
type EditResponse struct {
	Outcome
	Dropped map[model.ProfileKind][]int `json:"dropped,omitempty"`
	Profile *profile.View               `json:"profile,omitempty"`
}

// ValidateResponse is the result of a dry-run reconciliation
type ValidateResponse struct {
	Valid      bool                        `json:"valid"`
	Violations []model.Violation           `json:"violations,omitempty"`
	Shared     *model.SharedAttributes     `json:"shared,omitempty"`
	Operations []string                    `json:"operations,omitempty"`
	Dropped    map[model.ProfileKind][]int `json:"dropped,omitempty"`
}

// ValidateResponseFromResult converts a reconcile.Result
func ValidateResponseFromResult(res reconcile.Result) ValidateResponse {
	out := ValidateResponse{Valid: res.Valid(), Violations: res.Violations, Dropped: res.Dropped}
	if out.Valid {
		shared := res.Shared
		out.Shared = &shared
		for _, p := range res.Payloads {
			out.Operations = append(out.Operations, string(p.Operation))
		}
	}
	return out
}

// ClubList is the response for club searches
type ClubList struct {
	Clubs []model.Club `json:"clubs"`
}
