package model

import "time"

// ProfileKind names one of the two role-specific sub-profile variants
type ProfileKind string

const (
	KindPlayer    ProfileKind = "player"
	KindRecruiter ProfileKind = "recruiter"
)

// DateLayout is the canonical wire format for calendar dates
const DateLayout = "2006-01-02"

// SharedAttributes are mirrored across both sub-profiles of a DUAL account
type SharedAttributes struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ProfileImage      string `json:"profile_image,omitempty"`
	Nationality       string `json:"nationality,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Canton            string `json:"canton,omitempty"`
	Municipality      string `json:"municipality,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	Gender            string `json:"gender,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"` // DateLayout, empty when unknown
}

// BirthDate parses the date of birth. It returns nil when none is set or the value is malformed.
func (s SharedAttributes) BirthDate() *time.Time {
	if s.DateOfBirth == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s.DateOfBirth)
	if err != nil {
		return nil
	}
	return &t
}

// Diff returns the names of the attributes that differ between s and other
func (s SharedAttributes) Diff(other SharedAttributes) []string {
	var fields []string
	check := func(name, a, b string) {
		if a != b {
			fields = append(fields, name)
		}
	}
	check("first_name", s.FirstName, other.FirstName)
	check("last_name", s.LastName, other.LastName)
	check("profile_image", s.ProfileImage, other.ProfileImage)
	check("nationality", s.Nationality, other.Nationality)
	check("phone", s.Phone, other.Phone)
	check("canton", s.Canton, other.Canton)
	check("municipality", s.Municipality, other.Municipality)
	check("preferred_language", s.PreferredLanguage, other.PreferredLanguage)
	check("gender", s.Gender, other.Gender)
	check("date_of_birth", s.DateOfBirth, other.DateOfBirth)
	return fields
}

// Achievement is a free-text entry with an ordinal position
type Achievement struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// PlayerProfile is the athlete-facing sub-profile
type PlayerProfile struct {
	AccountID      AccountID          `json:"account_id"`
	Shared         SharedAttributes   `json:"shared"`
	Bio            string             `json:"bio,omitempty"`
	Position       string             `json:"position,omitempty"`
	HeightCm       int                `json:"height_cm,omitempty"`
	DominantHand   string             `json:"dominant_hand,omitempty"`
	LookingForClub bool               `json:"looking_for_club"`
	ClubHistory    []ClubHistoryEntry `json:"club_history"`
	Achievements   []Achievement      `json:"achievements"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Clone returns a deep copy of the profile
func (p *PlayerProfile) Clone() *PlayerProfile {
	c := *p
	c.ClubHistory = cloneHistory(p.ClubHistory)
	c.Achievements = append([]Achievement(nil), p.Achievements...)
	return &c
}

// RecruiterProfile is the scout/coach-facing sub-profile
type RecruiterProfile struct {
	AccountID       AccountID          `json:"account_id"`
	Shared          SharedAttributes   `json:"shared"`
	Bio             string             `json:"bio,omitempty"`
	Age             *int               `json:"age,omitempty"`
	Organization    string             `json:"organization,omitempty"`
	CoachingLicense string             `json:"coaching_license,omitempty"`
	ClubHistory     []ClubHistoryEntry `json:"club_history"`
	Achievements    []Achievement      `json:"achievements"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Clone returns a deep copy of the profile
func (p *RecruiterProfile) Clone() *RecruiterProfile {
	c := *p
	if p.Age != nil {
		age := *p.Age
		c.Age = &age
	}
	c.ClubHistory = cloneHistory(p.ClubHistory)
	c.Achievements = append([]Achievement(nil), p.Achievements...)
	return &c
}

// PlayerUpdate is the per-role write for a player profile.
// Shared is always the full attribute set; nil pointers leave the stored value unchanged.
type PlayerUpdate struct {
	Shared         SharedAttributes    `json:"shared"`
	Bio            *string             `json:"bio,omitempty"`
	Position       *string             `json:"position,omitempty"`
	HeightCm       *int                `json:"height_cm,omitempty"`
	DominantHand   *string             `json:"dominant_hand,omitempty"`
	LookingForClub *bool               `json:"looking_for_club,omitempty"`
	ClubHistory    *[]ClubHistoryEntry `json:"club_history,omitempty"`
	Achievements   *[]Achievement      `json:"achievements,omitempty"`
	At             time.Time           `json:"at"`
}

// Apply writes the update onto the profile
func (p *PlayerProfile) Apply(u *PlayerUpdate) {
	p.Shared = u.Shared
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Position != nil {
		p.Position = *u.Position
	}
	if u.HeightCm != nil {
		p.HeightCm = *u.HeightCm
	}
	if u.DominantHand != nil {
		p.DominantHand = *u.DominantHand
	}
	if u.LookingForClub != nil {
		p.LookingForClub = *u.LookingForClub
	}
	if u.ClubHistory != nil {
		p.ClubHistory = cloneHistory(*u.ClubHistory)
	}
	if u.Achievements != nil {
		p.Achievements = append([]Achievement(nil), (*u.Achievements)...)
	}
	p.UpdatedAt = u.At
}

// RecruiterUpdate is the per-role write for a recruiter profile.
// Age is only written when SetAge is true, which lets a derived nil age clear a stale value.
type RecruiterUpdate struct {
	Shared          SharedAttributes    `json:"shared"`
	Bio             *string             `json:"bio,omitempty"`
	Age             *int                `json:"age,omitempty"`
	SetAge          bool                `json:"set_age"`
	Organization    *string             `json:"organization,omitempty"`
	CoachingLicense *string             `json:"coaching_license,omitempty"`
	ClubHistory     *[]ClubHistoryEntry `json:"club_history,omitempty"`
	Achievements    *[]Achievement      `json:"achievements,omitempty"`
	At              time.Time           `json:"at"`
}

// Apply writes the update onto the profile
func (p *RecruiterProfile) Apply(u *RecruiterUpdate) {
	p.Shared = u.Shared
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.SetAge {
		p.Age = nil
		if u.Age != nil {
			age := *u.Age
			p.Age = &age
		}
	}
	if u.Organization != nil {
		p.Organization = *u.Organization
	}
	if u.CoachingLicense != nil {
		p.CoachingLicense = *u.CoachingLicense
	}
	if u.ClubHistory != nil {
		p.ClubHistory = cloneHistory(*u.ClubHistory)
	}
	if u.Achievements != nil {
		p.Achievements = append([]Achievement(nil), (*u.Achievements)...)
	}
	p.UpdatedAt = u.At
}

// NewAchievements assigns ordinal positions to free-text entries, skipping blanks
func NewAchievements(texts []string) []Achievement {
	out := make([]Achievement, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		out = append(out, Achievement{Position: len(out), Text: t})
	}
	return out
}
