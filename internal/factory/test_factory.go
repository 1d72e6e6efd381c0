package factory

import (
	"context"
	"sync"
	"time"

	"github.com/talentboard/profiledir/internal/dependencies/mocks"
	"github.com/talentboard/profiledir/internal/events"
	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/services/auth"
	"github.com/talentboard/profiledir/internal/services/clubhistory"
	"github.com/talentboard/profiledir/internal/storage"
	"github.com/talentboard/profiledir/internal/storage/memory"
	"github.com/talentboard/profiledir/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Events    *RecordingPublisher
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a test App on top of the given storage, which lets
// tests inject persistence failures
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC))
	publisher := &RecordingPublisher{}

	app := newWithDependencies(store, mockClock, publisher, clubhistory.PolicyReject, auth.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Events:    publisher,
	}
}

// TestClubs is a small club directory for tests
func TestClubs() []model.Club {
	return []model.Club{
		{ID: "c-example", Name: "FC Example", Aliases: []string{"Example SC"}, Canton: "BE"},
		{ID: "c-zurich", Name: "VBC Zürich Nord", Aliases: []string{"Zuri Nord"}, Canton: "ZH"},
		{ID: "c-bern", Name: "Volley Bern", Canton: "BE"},
	}
}

// LoadTestDirectory stores and loads the test club directory
func (t *TestApp) LoadTestDirectory(ctx context.Context) error {
	if err := t.Storage.SaveClubs(ctx, TestClubs()); err != nil {
		return err
	}
	return t.DirectoryService.LoadFromStorage(ctx)
}

// RecordingPublisher keeps published commit events in memory
type RecordingPublisher struct {
	mu        sync.Mutex
	published []events.CommitEvent
}

func (p *RecordingPublisher) PublishCommit(_ context.Context, event events.CommitEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
	return nil
}

// Published returns a copy of the events seen so far
func (p *RecordingPublisher) Published() []events.CommitEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.CommitEvent(nil), p.published...)
}

func (p *RecordingPublisher) Close() error {
	return nil
}
