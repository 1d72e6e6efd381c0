package request

import (
	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/services/profile"
)

// ProfileEdit is the request body for editing or validating a profile
type ProfileEdit struct {
	Intent      model.EditIntent            `json:"intent"`
	ClubHistory model.ClubHistoryCandidates `json:"club_history"`
	LoadedFrom  model.ProfileKind           `json:"loaded_from,omitempty"`
}

// ToService converts the body to a profile edit request
func (p ProfileEdit) ToService() profile.EditRequest {
	return profile.EditRequest{
		Intent:      p.Intent,
		ClubHistory: p.ClubHistory,
		LoadedFrom:  p.LoadedFrom,
	}
}

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Email       string            `json:"email"`
	Password    string            `json:"password"`
	Role        model.AccountRole `json:"role"`
	DisplayName string            `json:"display_name"`
	Profile     ProfileEdit       `json:"profile"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
