// Package clubhistory enforces the invariants of a sub-profile's career list:
// at most one current entry, completed date ranges and duplicate-free league sets.
package clubhistory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/talentboard/profiledir/internal/model"
)

// Policy decides what happens to entries that are not complete enough to persist
type Policy int

const (
	// PolicyReject surfaces incomplete entries as violations
	PolicyReject Policy = iota
	// PolicyDropIncomplete silently leaves incomplete entries out of the persisted list.
	// Legacy behaviour; callers must opt in explicitly.
	PolicyDropIncomplete
)

// ParsePolicy parses "reject" or "drop"
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, nil
	case "drop":
		return PolicyDropIncomplete, nil
	}
	return PolicyReject, fmt.Errorf("unknown incomplete entry policy %q", s)
}

func (p Policy) String() string {
	if p == PolicyDropIncomplete {
		return "drop"
	}
	return "reject"
}

// Options configures one validation run
type Options struct {
	Policy Policy
	// Field prefixes violation field names, e.g. "player.club_history"
	Field string
	// AllowCoachRole keeps coaching-role tags; they are stripped otherwise
	AllowCoachRole bool
}

// Result is the outcome of validating one list.
// Entries is nil whenever Violations is non-empty.
type Result struct {
	Entries    []model.ClubHistoryEntry
	Dropped    []int // submitted indices left out of Entries
	Violations []model.Violation
}

// Valid reports whether the list passed validation
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Validate checks and normalizes a submitted club history list.
// The check runs on its own; it does not trust that a UI already enforced anything.
func Validate(entries []model.ClubHistoryEntry, opts Options) Result {
	field := opts.Field
	if field == "" {
		field = "club_history"
	}

	var res Result
	out := make([]model.ClubHistoryEntry, 0, len(entries))
	current := -1

	for i, raw := range entries {
		e := normalize(raw, opts.AllowCoachRole)

		// Blank form rows carry nothing worth keeping
		if e.ClubName == "" {
			res.Dropped = append(res.Dropped, i)
			continue
		}

		var issues []model.Violation
		startOK := e.StartYear == "" || isYear(e.StartYear)
		endOK := e.EndYear == "" || isYear(e.EndYear)
		if !startOK {
			issues = append(issues, violation(field+".start_year", i, model.CodeInvalidYear, "start year must be a four digit year"))
		}
		if !endOK {
			issues = append(issues, violation(field+".end_year", i, model.CodeInvalidYear, "end year must be a four digit year"))
		}

		var incomplete []model.Violation
		if e.StartYear == "" {
			incomplete = append(incomplete, violation(field+".start_year", i, model.CodeMissingStartYear, "start year is required"))
		}
		if !e.IsCurrent && e.EndYear == "" {
			incomplete = append(incomplete, violation(field+".end_year", i, model.CodeMissingEndYear, "end year is required unless this is the current club"))
		}
		if len(incomplete) > 0 && opts.Policy == PolicyDropIncomplete && len(issues) == 0 {
			res.Dropped = append(res.Dropped, i)
			continue
		}
		issues = append(issues, incomplete...)

		if startOK && endOK && e.StartYear != "" && e.EndYear != "" && e.EndYear < e.StartYear {
			issues = append(issues, violation(field+".end_year", i, model.CodeEndBeforeStart, "end year is before start year"))
		}

		if e.IsCurrent {
			if current >= 0 {
				issues = append(issues, violation(field+".is_current", i,
					model.CodeMultipleCurrent, fmt.Sprintf("entry %d is already marked as the current club", current)))
			} else {
				current = i
			}
		}

		res.Violations = append(res.Violations, issues...)
		out = append(out, e)
	}

	if len(res.Violations) == 0 {
		res.Entries = out
	}
	return res
}

// normalize trims text fields, dedupes leagues and clears the end year of a current entry
func normalize(e model.ClubHistoryEntry, allowCoachRole bool) model.ClubHistoryEntry {
	e.ClubName = strings.TrimSpace(e.ClubName)
	e.Country = strings.TrimSpace(e.Country)
	e.StartYear = strings.TrimSpace(e.StartYear)
	e.EndYear = strings.TrimSpace(e.EndYear)
	e.CoachRole = strings.TrimSpace(e.CoachRole)
	if !allowCoachRole {
		e.CoachRole = ""
	}
	if e.IsCurrent {
		e.EndYear = ""
	}
	if e.ClubID != nil {
		id := *e.ClubID
		e.ClubID = &id
	}
	e.Leagues = DedupeLeagues(e.Leagues)
	return e
}

// DedupeLeagues returns the upper-cased, trimmed league codes with duplicates and blanks removed.
// First occurrence order is kept so output is stable.
func DedupeLeagues(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// MarkCurrent makes entries[idx] the only current entry.
// It returns a new list; the input is not modified.
func MarkCurrent(entries []model.ClubHistoryEntry, idx int) ([]model.ClubHistoryEntry, error) {
	if idx < 0 || idx >= len(entries) {
		return nil, fmt.Errorf("club history index %d out of range", idx)
	}
	out := model.CloneHistory(entries)
	for i := range out {
		out[i].IsCurrent = i == idx
	}
	out[idx].EndYear = ""
	return out, nil
}

// CurrentIndex returns the index of the first current entry, or -1
func CurrentIndex(entries []model.ClubHistoryEntry) int {
	for i, e := range entries {
		if e.IsCurrent {
			return i
		}
	}
	return -1
}

// DateRange is an entry's year range expanded to calendar days
type DateRange struct {
	Start time.Time
	End   *time.Time // nil while the stint is current
}

// Expand turns the entry's years into the first day of the start year and
// the last day of the end year, both in UTC.
func Expand(e model.ClubHistoryEntry) (DateRange, error) {
	start, err := strconv.Atoi(e.StartYear)
	if err != nil || !isYear(e.StartYear) {
		return DateRange{}, fmt.Errorf("invalid start year %q", e.StartYear)
	}
	r := DateRange{Start: time.Date(start, time.January, 1, 0, 0, 0, 0, time.UTC)}
	if e.IsCurrent || e.EndYear == "" {
		return r, nil
	}
	end, err := strconv.Atoi(e.EndYear)
	if err != nil || !isYear(e.EndYear) {
		return DateRange{}, fmt.Errorf("invalid end year %q", e.EndYear)
	}
	last := time.Date(end, time.December, 31, 0, 0, 0, 0, time.UTC)
	r.End = &last
	return r, nil
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func violation(field string, idx int, code, msg string) model.Violation {
	return model.Violation{Field: field, Index: &idx, Code: code, Message: msg}
}
