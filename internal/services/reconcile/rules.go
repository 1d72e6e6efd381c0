package reconcile

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/talentboard/profiledir/internal/model"
)

var (
	languages = set("de", "fr", "it", "rm", "en")
	genders   = set("female", "male", "diverse")
	hands     = set("left", "right", "both")
	cantons   = set(
		"AG", "AI", "AR", "BE", "BL", "BS", "FR", "GE", "GL", "GR", "JU", "LU", "NE",
		"NW", "OW", "SG", "SH", "SO", "SZ", "TG", "TI", "UR", "VD", "VS", "ZG", "ZH",
	)
)

const (
	minHeightCm     = 100
	maxHeightCm     = 250
	minRecruiterAge = 14
	maxRecruiterAge = 120
	minPhoneDigits  = 6
	maxPhoneDigits  = 15
)

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func member(m map[string]struct{}, v string) bool {
	_, ok := m[v]
	return ok
}

func violation(field, code, format string, args ...any) model.Violation {
	return model.Violation{Field: field, Code: code, Message: fmt.Sprintf(format, args...)}
}

// normalizeShared trims every attribute and canonicalizes case on coded ones
func normalizeShared(s model.SharedAttributes) model.SharedAttributes {
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.ProfileImage = strings.TrimSpace(s.ProfileImage)
	s.Nationality = strings.ToUpper(strings.TrimSpace(s.Nationality))
	s.Phone = strings.TrimSpace(s.Phone)
	s.Canton = strings.ToUpper(strings.TrimSpace(s.Canton))
	s.Municipality = strings.TrimSpace(s.Municipality)
	s.PreferredLanguage = strings.ToLower(strings.TrimSpace(s.PreferredLanguage))
	s.Gender = strings.ToLower(strings.TrimSpace(s.Gender))
	s.DateOfBirth = strings.TrimSpace(s.DateOfBirth)
	return s
}

// checkShared validates the merged shared attribute set
func checkShared(s model.SharedAttributes, patch model.SharedPatch, asOf time.Time, creating bool) []model.Violation {
	var vs []model.Violation

	required := func(field, value string, patched *string) {
		if value == "" && (creating || patched != nil) {
			vs = append(vs, violation("shared."+field, model.CodeRequired, "%s is required", field))
		}
	}
	required("first_name", s.FirstName, patch.FirstName)
	required("last_name", s.LastName, patch.LastName)

	if s.DateOfBirth != "" {
		dob, err := time.Parse(model.DateLayout, s.DateOfBirth)
		switch {
		case err != nil:
			vs = append(vs, violation("shared.date_of_birth", model.CodeInvalidDate,
				"date of birth %q is not a YYYY-MM-DD date", s.DateOfBirth))
		case dob.After(asOf):
			vs = append(vs, violation("shared.date_of_birth", model.CodeFutureDate,
				"date of birth %s is in the future", s.DateOfBirth))
		}
	}

	if s.Nationality != "" && !isCountryCode(s.Nationality) {
		vs = append(vs, violation("shared.nationality", model.CodeInvalidValue,
			"nationality %q is not a two-letter country code", s.Nationality))
	}
	if s.Canton != "" && !member(cantons, s.Canton) {
		vs = append(vs, violation("shared.canton", model.CodeInvalidValue, "unknown canton %q", s.Canton))
	}
	if s.PreferredLanguage != "" && !member(languages, s.PreferredLanguage) {
		vs = append(vs, violation("shared.preferred_language", model.CodeInvalidValue,
			"unsupported language %q", s.PreferredLanguage))
	}
	if s.Gender != "" && !member(genders, s.Gender) {
		vs = append(vs, violation("shared.gender", model.CodeInvalidValue, "unknown gender %q", s.Gender))
	}
	if s.Phone != "" && !isPhone(s.Phone) {
		vs = append(vs, violation("shared.phone", model.CodeInvalidValue, "phone %q is not a phone number", s.Phone))
	}

	return vs
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isPhone(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '/':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

func checkPlayer(f *model.PlayerFields) []model.Violation {
	var vs []model.Violation
	if f.HeightCm != nil && (*f.HeightCm < minHeightCm || *f.HeightCm > maxHeightCm) {
		vs = append(vs, violation("player.height_cm", model.CodeInvalidValue,
			"height %d cm is outside %d-%d", *f.HeightCm, minHeightCm, maxHeightCm))
	}
	if f.DominantHand != nil {
		hand := strings.ToLower(strings.TrimSpace(*f.DominantHand))
		if hand != "" && !member(hands, hand) {
			vs = append(vs, violation("player.dominant_hand", model.CodeInvalidValue, "unknown hand %q", *f.DominantHand))
		}
	}
	return vs
}

func checkRecruiterAge(age *int) []model.Violation {
	if age == nil || (*age >= minRecruiterAge && *age <= maxRecruiterAge) {
		return nil
	}
	return []model.Violation{violation("recruiter.age", model.CodeInvalidValue,
		"age %d is outside %d-%d", *age, minRecruiterAge, maxRecruiterAge)}
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func lowered(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*p))
	return &v
}

func achievements(texts *[]string) *[]model.Achievement {
	if texts == nil {
		return nil
	}
	clean := make([]string, len(*texts))
	for i, t := range *texts {
		clean[i] = strings.TrimSpace(t)
	}
	out := model.NewAchievements(clean)
	return &out
}
