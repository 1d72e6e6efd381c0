package model

import "time"

// AccountID uniquely identifies an account across the system
type AccountID string

// AccountRole determines which sub-profiles an account owns
type AccountRole string

const (
	RolePlayerOnly    AccountRole = "PLAYER_ONLY"
	RoleRecruiterOnly AccountRole = "RECRUITER_ONLY"
	RoleDual          AccountRole = "DUAL"
)

// IsValid checks if a role is one of the known account roles
func (r AccountRole) IsValid() bool {
	switch r {
	case RolePlayerOnly, RoleRecruiterOnly, RoleDual:
		return true
	}
	return false
}

// HasPlayer reports whether accounts with this role own a player profile
func (r AccountRole) HasPlayer() bool {
	return r == RolePlayerOnly || r == RoleDual
}

// HasRecruiter reports whether accounts with this role own a recruiter profile
func (r AccountRole) HasRecruiter() bool {
	return r == RoleRecruiterOnly || r == RoleDual
}

// CanPromoteTo reports whether an account may move from r to next.
// Roles only ever widen: single-role accounts become DUAL, never the reverse.
func (r AccountRole) CanPromoteTo(next AccountRole) bool {
	return next == RoleDual && (r == RolePlayerOnly || r == RoleRecruiterOnly)
}

// Kinds returns the sub-profile kinds owned by accounts with this role
func (r AccountRole) Kinds() []ProfileKind {
	var kinds []ProfileKind
	if r.HasPlayer() {
		kinds = append(kinds, KindPlayer)
	}
	if r.HasRecruiter() {
		kinds = append(kinds, KindRecruiter)
	}
	return kinds
}

// Account is the identity anchor owning zero, one or two sub-profiles
type Account struct {
	ID           AccountID   `json:"id"`
	Role         AccountRole `json:"role"`
	DisplayName  string      `json:"display_name"`
	ProfileImage string      `json:"profile_image,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Credentials holds login data for an account.
// Stored separately from the account so password hashes never travel with profile reads.
type Credentials struct {
	AccountID    AccountID `json:"account_id"`
	Email        string    `json:"email"` // login identifier (immutable)
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountUpdate carries account-level display fields. Nil fields are left untouched.
type AccountUpdate struct {
	DisplayName  *string   `json:"display_name,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	At           time.Time `json:"at"`
}

// Apply writes the update onto the account
func (a *Account) Apply(u *AccountUpdate) {
	if u.DisplayName != nil {
		a.DisplayName = *u.DisplayName
	}
	if u.ProfileImage != nil {
		a.ProfileImage = *u.ProfileImage
	}
	a.UpdatedAt = u.At
}
