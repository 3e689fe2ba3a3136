package factory

import (
	"time"

	"github.com/mcoot/dicegame/internal/dependencies/mocks"
	"github.com/mcoot/dicegame/internal/events"
	"github.com/mcoot/dicegame/internal/events/feed"
	"github.com/mcoot/dicegame/internal/services/escrow"
	"github.com/mcoot/dicegame/internal/storage/memory"
	"github.com/mcoot/dicegame/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockPublisher *mocks.MockPublisher
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithTerms(escrow.DefaultTerms())
}

// NewTestAppWithTerms creates a test App with a custom stake
func NewTestAppWithTerms(terms escrow.Terms) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockPublisher := mocks.NewMockPublisher()
	logger := testutil.NopLogger()
	eventFeed := feed.New(logger, nil)

	app := newWithDependencies(store, mockClock, mockRandom, terms, events.Multi{eventFeed, mockPublisher}, logger)
	app.Feed = eventFeed

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockPublisher: mockPublisher,
	}
}
