package model

// SharedPatch lists the shared attributes a caller wants to change.
// Nil fields keep the current value.
type SharedPatch struct {
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`
	ProfileImage      *string `json:"profile_image,omitempty"`
	Nationality       *string `json:"nationality,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Canton            *string `json:"canton,omitempty"`
	Municipality      *string `json:"municipality,omitempty"`
	PreferredLanguage *string `json:"preferred_language,omitempty"`
	Gender            *string `json:"gender,omitempty"`
	DateOfBirth       *string `json:"date_of_birth,omitempty"`
}

// ApplyTo returns base with every set field of the patch written over it
func (p SharedPatch) ApplyTo(base SharedAttributes) SharedAttributes {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	out := base
	set(&out.FirstName, p.FirstName)
	set(&out.LastName, p.LastName)
	set(&out.ProfileImage, p.ProfileImage)
	set(&out.Nationality, p.Nationality)
	set(&out.Phone, p.Phone)
	set(&out.Canton, p.Canton)
	set(&out.Municipality, p.Municipality)
	set(&out.PreferredLanguage, p.PreferredLanguage)
	set(&out.Gender, p.Gender)
	set(&out.DateOfBirth, p.DateOfBirth)
	return out
}

// PlayerFields are the player-only fields of an edit intent
type PlayerFields struct {
	Bio            *string   `json:"bio,omitempty"`
	Position       *string   `json:"position,omitempty"`
	HeightCm       *int      `json:"height_cm,omitempty"`
	DominantHand   *string   `json:"dominant_hand,omitempty"`
	LookingForClub *bool     `json:"looking_for_club,omitempty"`
	Achievements   *[]string `json:"achievements,omitempty"`
}

// RecruiterFields are the recruiter-only fields of an edit intent
type RecruiterFields struct {
	Bio             *string   `json:"bio,omitempty"`
	Age             *int      `json:"age,omitempty"` // honoured for recruiter-only accounts
	Organization    *string   `json:"organization,omitempty"`
	CoachingLicense *string   `json:"coaching_license,omitempty"`
	Achievements    *[]string `json:"achievements,omitempty"`
}

// EditIntent is one combined edit submitted by the profile-edit surface
type EditIntent struct {
	DisplayName *string          `json:"display_name,omitempty"`
	Shared      SharedPatch      `json:"shared"`
	Player      *PlayerFields    `json:"player,omitempty"`
	Recruiter   *RecruiterFields `json:"recruiter,omitempty"`
}

// ClubHistoryCandidates are the submitted club history lists per sub-profile.
// A nil list means the caller did not edit that sub-profile's history.
type ClubHistoryCandidates struct {
	Player    []ClubHistoryEntry `json:"player,omitempty"`
	Recruiter []ClubHistoryEntry `json:"recruiter,omitempty"`
}
