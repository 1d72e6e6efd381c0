// Package reconcile turns one combined profile edit into per-record write payloads.
// For DUAL accounts every per-role payload carries the identical full shared attribute set.
package reconcile

import (
	"log/slog"
	"strings"
	"time"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/services/clubhistory"
	"github.com/talentboard/profiledir/internal/services/derive"
	"github.com/talentboard/profiledir/internal/services/directory"
)

// Input is everything one reconciliation needs. Reconcile performs no I/O.
type Input struct {
	AccountID model.AccountID
	Role      model.AccountRole

	// Current is the shared attribute set the edit surface loaded
	Current model.SharedAttributes

	Intent      model.EditIntent
	ClubHistory model.ClubHistoryCandidates

	// Directory resolves club names; nil means the directory is unavailable
	// and every club history entry is kept as free text
	Directory *directory.Directory

	AsOf time.Time

	// Creating marks account creation, the only time one role's bio seeds the other
	Creating bool
}

// Result holds either payloads or violations, never both
type Result struct {
	Payloads   []model.Payload
	Violations []model.Violation

	// Shared is the merged, normalized attribute set written to every sub-profile
	Shared model.SharedAttributes

	// Dropped lists club history indices left out under PolicyDropIncomplete
	Dropped map[model.ProfileKind][]int

	// DirectoryFallback is set when club history was kept as free text
	// because no directory was available
	DirectoryFallback bool
}

// Valid reports whether reconciliation produced payloads
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Err returns a *model.ValidationError when there are violations
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &model.ValidationError{Violations: r.Violations}
}

// Payload returns the payload for op, if present
func (r Result) Payload(op model.Operation) (model.Payload, bool) {
	for _, p := range r.Payloads {
		if p.Operation == op {
			return p, true
		}
	}
	return model.Payload{}, false
}

// Reconciler splits edit intents into payloads
type Reconciler struct {
	policy clubhistory.Policy
	logger *slog.Logger
}

// New creates a Reconciler using policy for incomplete club history entries
func New(policy clubhistory.Policy, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		policy: policy,
		logger: logger,
	}
}

// Policy returns the incomplete entry policy in use
func (r *Reconciler) Policy() clubhistory.Policy {
	return r.policy
}

// Reconcile validates the intent and produces payloads.
// Any violation fails the whole reconciliation: no payloads are returned at all.
func (r *Reconciler) Reconcile(in Input) Result {
	if !in.Role.IsValid() {
		return r.reject(in, []model.Violation{
			violation("role", model.CodeInvalidValue, "unknown account role %q", in.Role),
		})
	}

	shared := normalizeShared(in.Intent.Shared.ApplyTo(in.Current))
	violations := checkShared(shared, in.Intent.Shared, in.AsOf, in.Creating)

	if in.Intent.DisplayName != nil && strings.TrimSpace(*in.Intent.DisplayName) == "" {
		violations = append(violations, violation("display_name", model.CodeRequired, "display name is required"))
	}

	violations = append(violations, r.checkRoles(in)...)
	if in.Intent.Player != nil {
		violations = append(violations, checkPlayer(in.Intent.Player)...)
	}
	if in.Intent.Recruiter != nil && in.Role != model.RoleDual {
		violations = append(violations, checkRecruiterAge(in.Intent.Recruiter.Age)...)
	}

	histories := make(map[model.ProfileKind]clubhistory.Result, 2)
	for _, kind := range in.Role.Kinds() {
		candidates := in.historyFor(kind)
		if candidates == nil {
			continue
		}
		res := clubhistory.Validate(candidates, clubhistory.Options{
			Policy:         r.policy,
			Field:          string(kind) + ".club_history",
			AllowCoachRole: kind == model.KindRecruiter,
		})
		violations = append(violations, res.Violations...)
		histories[kind] = res
	}

	if len(violations) > 0 {
		return r.reject(in, violations)
	}

	result := Result{Shared: shared}
	if p, ok := accountPayload(in, shared); ok {
		result.Payloads = append(result.Payloads, p)
	}

	playerBio, recruiterBio := bios(in)

	if in.Role.HasPlayer() {
		update := &model.PlayerUpdate{Shared: shared, Bio: playerBio, At: in.AsOf}
		if f := in.Intent.Player; f != nil {
			update.Position = trimmed(f.Position)
			update.HeightCm = f.HeightCm
			update.DominantHand = lowered(f.DominantHand)
			update.LookingForClub = f.LookingForClub
			update.Achievements = achievements(f.Achievements)
		}
		if res, ok := histories[model.KindPlayer]; ok {
			update.ClubHistory = resolved(in.Directory, res)
			result.noteDropped(model.KindPlayer, res.Dropped)
		}
		result.Payloads = append(result.Payloads, model.Payload{
			Operation: model.OpPlayer,
			AccountID: in.AccountID,
			Player:    update,
		})
	}

	if in.Role.HasRecruiter() {
		update := &model.RecruiterUpdate{Shared: shared, Bio: recruiterBio, At: in.AsOf}
		var supplied *int
		if f := in.Intent.Recruiter; f != nil {
			supplied = f.Age
			update.Organization = trimmed(f.Organization)
			update.CoachingLicense = trimmed(f.CoachingLicense)
			update.Achievements = achievements(f.Achievements)
		}
		// DUAL accounts always get the age derived from the shared birth date
		update.Age = derive.RecruiterAge(in.Role, shared, supplied, in.AsOf)
		update.SetAge = in.Role == model.RoleDual || supplied != nil
		if in.Role == model.RoleDual && supplied != nil {
			r.logger.Debug("ignoring client supplied recruiter age on dual account",
				slog.String("account_id", string(in.AccountID)))
		}
		if res, ok := histories[model.KindRecruiter]; ok {
			update.ClubHistory = resolved(in.Directory, res)
			result.noteDropped(model.KindRecruiter, res.Dropped)
		}
		result.Payloads = append(result.Payloads, model.Payload{
			Operation: model.OpRecruiter,
			AccountID: in.AccountID,
			Recruiter: update,
		})
	}

	if in.Directory == nil && len(histories) > 0 {
		result.DirectoryFallback = true
		r.logger.Warn("club directory unavailable, keeping club history as free text",
			slog.String("account_id", string(in.AccountID)))
	}

	return result
}

func (r *Reconciler) reject(in Input, violations []model.Violation) Result {
	r.logger.Info("edit rejected",
		slog.String("account_id", string(in.AccountID)),
		slog.Int("violations", len(violations)))
	return Result{Violations: violations}
}

// checkRoles flags intent sections for sub-profiles the account does not own
func (r *Reconciler) checkRoles(in Input) []model.Violation {
	var vs []model.Violation
	if !in.Role.HasPlayer() && (in.Intent.Player != nil || in.ClubHistory.Player != nil) {
		vs = append(vs, violation("player", model.CodeRoleMismatch,
			"account with role %s has no player profile", in.Role))
	}
	if !in.Role.HasRecruiter() && (in.Intent.Recruiter != nil || in.ClubHistory.Recruiter != nil) {
		vs = append(vs, violation("recruiter", model.CodeRoleMismatch,
			"account with role %s has no recruiter profile", in.Role))
	}
	return vs
}

func (in Input) historyFor(kind model.ProfileKind) []model.ClubHistoryEntry {
	if kind == model.KindPlayer {
		return in.ClubHistory.Player
	}
	return in.ClubHistory.Recruiter
}

func (r *Result) noteDropped(kind model.ProfileKind, dropped []int) {
	if len(dropped) == 0 {
		return
	}
	if r.Dropped == nil {
		r.Dropped = make(map[model.ProfileKind][]int, 2)
	}
	r.Dropped[kind] = dropped
}

// accountPayload covers the account-level display fields. The profile image lives
// on the account as well as in the shared set, so changing it touches both.
func accountPayload(in Input, shared model.SharedAttributes) (model.Payload, bool) {
	if in.Intent.DisplayName == nil && in.Intent.Shared.ProfileImage == nil {
		return model.Payload{}, false
	}
	update := &model.AccountUpdate{At: in.AsOf}
	if in.Intent.DisplayName != nil {
		update.DisplayName = trimmed(in.Intent.DisplayName)
	}
	if in.Intent.Shared.ProfileImage != nil {
		image := shared.ProfileImage
		update.ProfileImage = &image
	}
	return model.Payload{
		Operation: model.OpAccount,
		AccountID: in.AccountID,
		Account:   update,
	}, true
}

// bios applies the bio rules: each role keeps its own bio; a lone bio seeds the
// other role of a DUAL account only at creation time.
func bios(in Input) (player, recruiter *string) {
	if in.Intent.Player != nil {
		player = trimmed(in.Intent.Player.Bio)
	}
	if in.Intent.Recruiter != nil {
		recruiter = trimmed(in.Intent.Recruiter.Bio)
	}
	if in.Creating && in.Role == model.RoleDual {
		switch {
		case player != nil && recruiter == nil:
			v := *player
			recruiter = &v
		case recruiter != nil && player == nil:
			v := *recruiter
			player = &v
		}
	}
	return player, recruiter
}

func resolved(dir *directory.Directory, res clubhistory.Result) *[]model.ClubHistoryEntry {
	entries := directory.ResolveEntries(dir, res.Entries)
	if entries == nil {
		entries = []model.ClubHistoryEntry{}
	}
	return &entries
}
