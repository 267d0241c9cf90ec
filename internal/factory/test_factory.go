package factory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/ranktracker/internal/dependencies/mocks"
	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/auth"
	"github.com/mcoot/ranktracker/internal/services/game"
	"github.com/mcoot/ranktracker/internal/storage/memory"
	"github.com/mcoot/ranktracker/internal/testutil"
)

// TestAuthSecret signs tokens issued by a TestApp
const TestAuthSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithPolicy(game.DeletePolicyRestrict)
}

// NewTestAppWithPolicy creates a TestApp whose game service uses the given delete policy
func NewTestAppWithPolicy(policy game.DeletePolicy) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	authCfg := auth.DefaultConfig()
	authCfg.Secret = TestAuthSecret

	app, err := newWithDependencies(store, mockClock, authCfg, policy, prometheus.NewRegistry(), testutil.NopLogger())
	if err != nil {
		// Only reachable if the fixed secret above is empty
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}

// Token issues a bearer token for the user with the default lifetime
func (t *TestApp) Token(userID string, roles ...model.Role) string {
	token, err := t.AuthService.Issue(model.UserID(userID), userID, roles, 0)
	if err != nil {
		panic(err)
	}
	return token
}
