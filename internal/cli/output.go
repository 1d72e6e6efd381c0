package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Account:
		o.printAccount(v)
	case AuthResult:
		o.printAuthResult(v)
	case RegisterResult:
		o.printAuthResult(v.AuthResult)
		o.printOutcome(v.Outcome)
	case ProfileView:
		o.printProfileView(v)
	case EditResult:
		o.printOutcome(v.Outcome)
		if v.Profile != nil {
			fmt.Println()
			o.printProfileView(*v.Profile)
		}
	case ValidateResult:
		o.printValidateResult(v)
	case ClubList:
		o.printClubList(v)
	case Club:
		o.printClub(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Account response type (matches API)
type Account struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	DisplayName  string `json:"display_name"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// AuthResult combines account and token
type AuthResult struct {
	Account      Account `json:"account"`
	SessionToken string  `json:"session_token"`
	ExpiresAt    string  `json:"expires_at"`
}

// Operation is one persisted leg of an edit
type Operation struct {
	Operation string `json:"operation"`
	Succeeded bool   `json:"succeeded"`
	Reason    string `json:"reason,omitempty"`
}

// Outcome is the aggregate commit result
type Outcome struct {
	Status     string      `json:"status"`
	Operations []Operation `json:"operations"`
}

// RegisterResult is the registration response
type RegisterResult struct {
	AuthResult
	Outcome Outcome `json:"outcome"`
}

// Shared holds the attributes mirrored across both sub-profiles
type Shared struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ProfileImage      string `json:"profile_image,omitempty"`
	Nationality       string `json:"nationality,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Canton            string `json:"canton,omitempty"`
	Municipality      string `json:"municipality,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	Gender            string `json:"gender,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"`
}

// ClubHistoryEntry response type
type ClubHistoryEntry struct {
	ClubID    *string  `json:"club_id,omitempty"`
	ClubName  string   `json:"club_name"`
	Leagues   []string `json:"leagues,omitempty"`
	StartYear string   `json:"start_year,omitempty"`
	EndYear   string   `json:"end_year,omitempty"`
	IsCurrent bool     `json:"is_current"`
	CoachRole string   `json:"coach_role,omitempty"`
}

// SubProfile holds the fields shared by both sub-profile kinds that the CLI shows
type SubProfile struct {
	Shared          Shared             `json:"shared"`
	Bio             string             `json:"bio,omitempty"`
	Position        string             `json:"position,omitempty"`
	Age             *int               `json:"age,omitempty"`
	Organization    string             `json:"organization,omitempty"`
	CoachingLicense string             `json:"coaching_license,omitempty"`
	ClubHistory     []ClubHistoryEntry `json:"club_history"`
}

// PlayerView response type
type PlayerView struct {
	Profile       SubProfile `json:"profile"`
	Age           *int       `json:"age"`
	ActiveLeagues []string   `json:"active_leagues"`
}

// RecruiterView response type
type RecruiterView struct {
	Profile       SubProfile `json:"profile"`
	Age           *int       `json:"age"`
	ActiveLeagues []string   `json:"active_leagues"`
}

// ProfileView response type
type ProfileView struct {
	Account   Account        `json:"account"`
	Player    *PlayerView    `json:"player,omitempty"`
	Recruiter *RecruiterView `json:"recruiter,omitempty"`
	Skew      []string       `json:"skew,omitempty"`
}

// EditResult is the profile edit response
type EditResult struct {
	Outcome
	Dropped map[string][]int `json:"dropped,omitempty"`
	Profile *ProfileView     `json:"profile,omitempty"`
}

// ValidateResult is the dry-run response
type ValidateResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
	Shared     *Shared     `json:"shared,omitempty"`
	Operations []string    `json:"operations,omitempty"`
}

// Club response type
type Club struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Town    string   `json:"town,omitempty"`
	Canton  string   `json:"canton,omitempty"`
}

// ClubList response type
type ClubList struct {
	Clubs []Club `json:"clubs"`
}

// HealthResult response type
type HealthResult struct {
	Status          string `json:"status"`
	DirectoryLoaded bool   `json:"directory_loaded"`
}

func (o *Output) printAccount(a Account) {
	fmt.Printf("Account: %s (%s)\n", a.DisplayName, a.ID)
	fmt.Printf("Role: %s\n", a.Role)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printAccount(a.Account)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printOutcome(out Outcome) {
	fmt.Printf("Save: %s\n", out.Status)
	for _, op := range out.Operations {
		if op.Succeeded {
			fmt.Printf("  - %s: ok\n", op.Operation)
		} else {
			fmt.Printf("  - %s: failed (%s)\n", op.Operation, op.Reason)
		}
	}
}

func (o *Output) printProfileView(v ProfileView) {
	o.printAccount(v.Account)
	if v.Player != nil {
		fmt.Println("\nPlayer profile:")
		o.printSubProfile(v.Player.Profile, v.Player.Age, v.Player.ActiveLeagues)
	}
	if v.Recruiter != nil {
		fmt.Println("\nRecruiter profile:")
		o.printSubProfile(v.Recruiter.Profile, v.Recruiter.Age, v.Recruiter.ActiveLeagues)
		if v.Recruiter.Profile.Organization != "" {
			fmt.Printf("  Organization: %s\n", v.Recruiter.Profile.Organization)
		}
	}
	if len(v.Skew) > 0 {
		fmt.Printf("\nWarning: shared fields differ between profiles: %s\n", strings.Join(v.Skew, ", "))
	}
}

func (o *Output) printSubProfile(p SubProfile, age *int, leagues []string) {
	fmt.Printf("  Name: %s %s\n", p.Shared.FirstName, p.Shared.LastName)
	if age != nil {
		fmt.Printf("  Age: %d\n", *age)
	}
	if p.Shared.Canton != "" || p.Shared.Municipality != "" {
		fmt.Printf("  Location: %s %s\n", p.Shared.Municipality, p.Shared.Canton)
	}
	if p.Bio != "" {
		fmt.Printf("  Bio: %s\n", p.Bio)
	}
	if len(leagues) > 0 {
		fmt.Printf("  Active leagues: %s\n", strings.Join(leagues, ", "))
	}
	if len(p.ClubHistory) > 0 {
		fmt.Println("  Clubs:")
		for _, e := range p.ClubHistory {
			years := e.StartYear + "-" + e.EndYear
			if e.IsCurrent {
				years = e.StartYear + "-now"
			}
			external := ""
			if e.ClubID == nil {
				external = " [external]"
			}
			fmt.Printf("    - %s (%s)%s\n", e.ClubName, years, external)
		}
	}
}

func (o *Output) printValidateResult(v ValidateResult) {
	if v.Valid {
		fmt.Printf("Valid. Would write: %s\n", strings.Join(v.Operations, ", "))
		return
	}
	fmt.Printf("Invalid (%d problems):\n", len(v.Violations))
	for _, vi := range v.Violations {
		fmt.Printf("  - %s\n", vi.String())
	}
}

func (o *Output) printClub(c Club) {
	fmt.Printf("%s  %s", c.ID, c.Name)
	if c.Canton != "" {
		fmt.Printf(" (%s)", c.Canton)
	}
	fmt.Println()
}

func (o *Output) printClubList(l ClubList) {
	if len(l.Clubs) == 0 {
		fmt.Println("No clubs found")
		return
	}
	for _, c := range l.Clubs {
		o.printClub(c)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if h.DirectoryLoaded {
		fmt.Println("Club directory: loaded")
	} else {
		fmt.Println("Club directory: unavailable (club names saved as free text)")
	}
}
