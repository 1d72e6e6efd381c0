package model

// Operation identifies one independently persisted leg of a commit
type Operation string

const (
	OpAccount   Operation = "account"
	OpPlayer    Operation = "player"
	OpRecruiter Operation = "recruiter"
)

// Payload is a single per-record write produced by reconciliation.
// Exactly one of Account, Player or Recruiter is set, matching Operation.
type Payload struct {
	Operation Operation        `json:"operation"`
	AccountID AccountID        `json:"account_id"`
	Account   *AccountUpdate   `json:"account,omitempty"`
	Player    *PlayerUpdate    `json:"player,omitempty"`
	Recruiter *RecruiterUpdate `json:"recruiter,omitempty"`
}

// Valid reports whether the payload body matches its operation
func (p Payload) Valid() bool {
	switch p.Operation {
	case OpAccount:
		return p.Account != nil && p.Player == nil && p.Recruiter == nil
	case OpPlayer:
		return p.Player != nil && p.Account == nil && p.Recruiter == nil
	case OpRecruiter:
		return p.Recruiter != nil && p.Account == nil && p.Player == nil
	}
	return false
}
