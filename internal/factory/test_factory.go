package factory

import (
	"time"

	"github.com/mcoot/codingworldcup/internal/dependencies/mocks"
	"github.com/mcoot/codingworldcup/internal/services/match"
	"github.com/mcoot/codingworldcup/internal/storage/memory"
	"github.com/mcoot/codingworldcup/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MemoryStore *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and a short match: two outfield players a side and four seconds of play
func NewTestApp() *TestApp {
	cfg := match.DefaultConfig()
	cfg.Engine.PlayersPerTeam = 2
	cfg.Engine.GameLengthSeconds = 4
	return NewTestAppWithConfig(cfg)
}

// NewTestAppWithConfig creates a test App with the given match settings.
// It panics if the settings are invalid.
func NewTestAppWithConfig(cfg match.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MemoryStore: store,
	}
}
