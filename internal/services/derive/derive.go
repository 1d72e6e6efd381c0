// Package derive computes attributes that are derived at write time rather than entered directly.
package derive

import (
	"time"

	"github.com/talentboard/profiledir/internal/model"
)

// Age returns the age in whole years on asOf for someone born on dob.
// The year difference is reduced by one when asOf falls before the birthday in asOf's year.
// It returns nil when dob is nil.
func Age(dob *time.Time, asOf time.Time) *int {
	if dob == nil {
		return nil
	}
	by, bm, bd := dob.Date()
	ay, am, ad := asOf.Date()

	age := ay - by
	if am < bm || (am == bm && ad < bd) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return &age
}

// ActiveLeagues returns the league codes of the current club history entry.
// It returns an empty set when no entry is current.
func ActiveLeagues(history []model.ClubHistoryEntry) []string {
	for _, e := range history {
		if e.IsCurrent {
			return append([]string{}, e.Leagues...)
		}
	}
	return []string{}
}

// RecruiterAge resolves the recruiter-facing age for an account.
// DUAL accounts always derive it from the shared birth date and ignore supplied.
// Recruiter-only accounts keep the directly entered value.
func RecruiterAge(role model.AccountRole, shared model.SharedAttributes, supplied *int, asOf time.Time) *int {
	if role == model.RoleDual {
		return Age(shared.BirthDate(), asOf)
	}
	return supplied
}
