// Package commit runs a reconciled edit's independent writes concurrently and
// reports the combined outcome. Nothing is retried and nothing is rolled back.
package commit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talentboard/profiledir/internal/dependencies/clock"
	"github.com/talentboard/profiledir/internal/events"
	"github.com/talentboard/profiledir/internal/metrics"
	"github.com/talentboard/profiledir/internal/model"
)

// Status is the aggregate result of a commit
type Status string

const (
	StatusAllSucceeded   Status = "ALL_SUCCEEDED"
	StatusPartialFailure Status = "PARTIAL_FAILURE"
	StatusAllFailed      Status = "ALL_FAILED"
)

// maxPayloads is one write per record: account, player and recruiter
const maxPayloads = 3

// publishTimeout bounds the best-effort outcome event after the join
const publishTimeout = 2 * time.Second

// Errors for payload sets that cannot be committed at all
var (
	ErrNoPayloads         = errors.New("commit: no payloads")
	ErrTooManyPayloads    = errors.New("commit: more than three payloads")
	ErrDuplicateOperation = errors.New("commit: duplicate operation")
	ErrInvalidPayload     = errors.New("commit: payload body does not match its operation")
	ErrMixedAccounts      = errors.New("commit: payloads target different accounts")
)

// Persister is the per-record update interface the coordinator writes through.
// storage.Storage satisfies it.
type Persister interface {
	UpdateAccount(ctx context.Context, id model.AccountID, update *model.AccountUpdate) (*model.Account, error)
	UpdatePlayerProfile(ctx context.Context, id model.AccountID, update *model.PlayerUpdate) (*model.PlayerProfile, error)
	UpdateRecruiterProfile(ctx context.Context, id model.AccountID, update *model.RecruiterUpdate) (*model.RecruiterProfile, error)
}

// Detail is the outcome of one operation
type Detail struct {
	Operation model.Operation `json:"operation"`
	Succeeded bool            `json:"succeeded"`
	Reason    string          `json:"reason,omitempty"`
	Err       error           `json:"-"`
}

// Outcome is the combined result of a commit. Details follow payload order.
// The persisted records are set for the legs that succeeded.
type Outcome struct {
	Status  Status   `json:"status"`
	Details []Detail `json:"details"`

	Account   *model.Account          `json:"-"`
	Player    *model.PlayerProfile    `json:"-"`
	Recruiter *model.RecruiterProfile `json:"-"`
}

// Failed returns the details of the operations that did not persist
func (o Outcome) Failed() []Detail {
	var failed []Detail
	for _, d := range o.Details {
		if !d.Succeeded {
			failed = append(failed, d)
		}
	}
	return failed
}

// Coordinator fans payloads out to the persister
type Coordinator struct {
	persister Persister
	publisher events.Publisher
	metrics   *metrics.Metrics
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a Coordinator
func New(persister Persister, publisher events.Publisher, m *metrics.Metrics, clock clock.Clock, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		persister: persister,
		publisher: publisher,
		metrics:   m,
		clock:     clock,
		logger:    logger,
	}
}

// Commit runs every payload concurrently and waits for all of them to settle.
// A failed leg never cancels its siblings, and writes that landed are kept.
// The returned error is only for payload sets that are malformed; persistence
// failures are reported through the Outcome.
func (c *Coordinator) Commit(ctx context.Context, payloads []model.Payload) (Outcome, error) {
	if err := checkPayloads(payloads); err != nil {
		return Outcome{}, err
	}

	start := c.clock.Now()
	outcome := Outcome{Details: make([]Detail, len(payloads))}

	// In-flight writes may already have reached storage, so they are not
	// cancelled when the caller goes away.
	legCtx := context.WithoutCancel(ctx)

	// Each leg writes only its own slot, so the results need no locking
	var (
		account   *model.Account
		player    *model.PlayerProfile
		recruiter *model.RecruiterProfile
	)

	var g errgroup.Group
	for i, p := range payloads {
		i, p := i, p
		g.Go(func() error {
			err := c.run(legCtx, p, &account, &player, &recruiter)
			outcome.Details[i] = detail(p.Operation, err)
			return nil
		})
	}
	_ = g.Wait()

	outcome.Account, outcome.Player, outcome.Recruiter = account, player, recruiter
	outcome.Status = aggregate(outcome.Details)

	elapsed := c.clock.Now().Sub(start)
	c.record(payloads[0].AccountID, outcome, elapsed)
	c.publish(legCtx, payloads[0].AccountID, outcome)

	return outcome, nil
}

func (c *Coordinator) run(
	ctx context.Context,
	p model.Payload,
	account **model.Account,
	player **model.PlayerProfile,
	recruiter **model.RecruiterProfile,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s update: %v", p.Operation, r)
		}
	}()

	switch p.Operation {
	case model.OpAccount:
		*account, err = c.persister.UpdateAccount(ctx, p.AccountID, p.Account)
	case model.OpPlayer:
		*player, err = c.persister.UpdatePlayerProfile(ctx, p.AccountID, p.Player)
	case model.OpRecruiter:
		*recruiter, err = c.persister.UpdateRecruiterProfile(ctx, p.AccountID, p.Recruiter)
	}
	return err
}

func (c *Coordinator) record(id model.AccountID, outcome Outcome, elapsed time.Duration) {
	for _, d := range outcome.Details {
		c.metrics.ObserveLeg(string(d.Operation), d.Succeeded)
		if !d.Succeeded {
			c.logger.Error("profile update leg failed",
				slog.String("account_id", string(id)),
				slog.String("operation", string(d.Operation)),
				slog.String("error", d.Reason))
		}
	}
	c.metrics.ObserveCommit(string(outcome.Status), elapsed)

	level := slog.LevelInfo
	if outcome.Status != StatusAllSucceeded {
		level = slog.LevelWarn
	}
	c.logger.Log(context.Background(), level, "profile commit finished",
		slog.String("account_id", string(id)),
		slog.String("status", string(outcome.Status)),
		slog.Int("operations", len(outcome.Details)),
		slog.Duration("elapsed", elapsed))
}

func (c *Coordinator) publish(ctx context.Context, id model.AccountID, outcome Outcome) {
	if c.publisher == nil {
		return
	}

	event := events.CommitEvent{
		AccountID: id,
		Status:    string(outcome.Status),
		Legs:      make([]events.LegResult, len(outcome.Details)),
		At:        c.clock.Now(),
	}
	for i, d := range outcome.Details {
		event.Legs[i] = events.LegResult{Operation: d.Operation, Succeeded: d.Succeeded, Reason: d.Reason}
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := c.publisher.PublishCommit(ctx, event); err != nil {
		c.logger.Warn("failed to publish commit event",
			slog.String("account_id", string(id)),
			slog.String("error", err.Error()))
	}
}

func detail(op model.Operation, err error) Detail {
	if err != nil {
		return Detail{Operation: op, Reason: err.Error(), Err: err}
	}
	return Detail{Operation: op, Succeeded: true}
}

func aggregate(details []Detail) Status {
	failed := 0
	for _, d := range details {
		if !d.Succeeded {
			failed++
		}
	}
	switch failed {
	case 0:
		return StatusAllSucceeded
	case len(details):
		return StatusAllFailed
	}
	return StatusPartialFailure
}

func checkPayloads(payloads []model.Payload) error {
	if len(payloads) == 0 {
		return ErrNoPayloads
	}
	if len(payloads) > maxPayloads {
		return ErrTooManyPayloads
	}
	seen := make(map[model.Operation]struct{}, len(payloads))
	for _, p := range payloads {
		if !p.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidPayload, p.Operation)
		}
		if _, ok := seen[p.Operation]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateOperation, p.Operation)
		}
		seen[p.Operation] = struct{}{}
		if p.AccountID != payloads[0].AccountID {
			return ErrMixedAccounts
		}
	}
	return nil
}
