package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/ranktracker/internal/api"
	"github.com/mcoot/ranktracker/internal/api/response"
	"github.com/mcoot/ranktracker/internal/factory"
	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/testutil"
)

type cliHarness struct {
	t         *testing.T
	app       *factory.TestApp
	serverURL string
	tokenFile string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()

	for _, key := range []string{"RANKCTL_SERVER", "RANKCTL_TOKEN", "RANKCTL_OUTPUT", "AUTH_SECRET", "AUTH_ISSUER"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	tokenFile := filepath.Join(t.TempDir(), "token")
	t.Setenv("RANKCTL_TOKEN_FILE", tokenFile)

	app := factory.NewTestApp()
	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:             testutil.NopLogger(),
		Metrics:            app.Metrics,
		AuthService:        app.AuthService,
		UserService:        app.UserService,
		GameService:        app.GameService,
		RankEntryService:   app.RankEntryService,
		ProgressionService: app.ProgressionService,
	}))
	t.Cleanup(srv.Close)

	return &cliHarness{t: t, app: app, serverURL: srv.URL, tokenFile: tokenFile}
}

// run executes rankctl with JSON output and returns stdout
func (h *cliHarness) run(token string, args ...string) (string, error) {
	h.t.Helper()

	full := []string{"--server", h.serverURL, "--output", "json"}
	if token != "" {
		full = append(full, "--token", token)
	}
	full = append(full, args...)

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return stdout.String(), err
}

func (h *cliHarness) mustRun(token string, args ...string) string {
	h.t.Helper()
	out, err := h.run(token, args...)
	require.NoError(h.t, err, out)
	return out
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "health")
	result := decodeOutput[HealthResult](t, out)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, h.serverURL, result.Server)
}

func TestHealthFailsWhenServerNotOK(t *testing.T) {
	h := newHarness(t)
	degraded := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "degraded"})
	}))
	t.Cleanup(degraded.Close)
	h.serverURL = degraded.URL

	_, err := h.run("", "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degraded")
}

func TestGameAndEntryWorkflow(t *testing.T) {
	h := newHarness(t)
	token := h.app.Token("u1")

	g := decodeOutput[response.Game](t, h.mustRun(token, "games", "create", "Chess"))
	assert.Equal(t, int64(1), g.ID)
	assert.Equal(t, "u1", g.OwnerUserID)

	games := decodeOutput[[]response.Game](t, h.mustRun(token, "games", "list"))
	require.Len(t, games, 1)

	e := decodeOutput[response.RankEntry](t, h.mustRun(token, "entries", "add", "--game", "1", "--rank", "1300", "--date", "2024-03-01"))
	assert.Equal(t, 1300, e.Rank)
	h.mustRun(token, "entries", "add", "--game", "1", "--rank", "1200", "--date", "2024-01-01T00:00:00Z", "--description", "first")

	h.mustRun(token, "entries", "update", "1", "--rank", "1350")
	updated := decodeOutput[response.RankEntry](t, h.mustRun(token, "entries", "get", "1"))
	assert.Equal(t, 1350, updated.Rank)
	assert.Equal(t, "2024-03-01", updated.Date.Format(dateLayout))

	points := decodeOutput[[]response.ProgressionPoint](t, h.mustRun(token, "progression", "--game", "1"))
	require.Len(t, points, 2)
	assert.Equal(t, 1200, points[0].Rank)
	assert.Equal(t, 1350, points[1].Rank)

	entries := decodeOutput[[]response.RankEntry](t, h.mustRun(token, "entries", "list", "--user", "u1", "--game", "1"))
	assert.Len(t, entries, 2)

	h.mustRun(token, "games", "rename", "1", "Xiangqi")
	g = decodeOutput[response.Game](t, h.mustRun(token, "games", "get", "1"))
	assert.Equal(t, "Xiangqi", g.Name)
}

func TestAPIErrorsSurface(t *testing.T) {
	h := newHarness(t)
	owner := h.app.Token("u1")
	h.mustRun(owner, "games", "create", "Chess")

	_, err := h.run(h.app.Token("u2"), "games", "delete", "1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)

	_, err = h.run(owner, "entries", "add", "--game", "1", "--rank", "5001")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "rank", apiErr.Field)

	_, err = h.run("", "games", "list")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestInvalidArguments(t *testing.T) {
	h := newHarness(t)
	token := h.app.Token("u1")

	_, err := h.run(token, "games", "get", "abc")
	assert.ErrorContains(t, err, "invalid id")

	_, err = h.run(token, "entries", "add", "--game", "1", "--rank", "1", "--date", "yesterday")
	assert.ErrorContains(t, err, "invalid date")
}

func TestTokenIssueAndSave(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "token", "issue", "root", "--role", "admin", "--secret", factory.TestAuthSecret, "--save")
	result := decodeOutput[TokenResult](t, out)
	assert.Equal(t, []string{"Admin"}, result.Roles)

	identity, err := h.app.AuthService.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, model.UserID("root"), identity.Principal.ID)
	assert.True(t, identity.Principal.IsAdmin())

	saved, err := os.ReadFile(h.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, result.Token, string(saved))

	// Later commands pick the token up from the file
	me := decodeOutput[response.User](t, h.mustRun("", "users", "whoami"))
	assert.Equal(t, "root", me.ID)
	assert.Equal(t, []string{"Admin"}, me.Roles)
}

func TestTokenIssueRequiresSecret(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "token", "issue", "u1")
	assert.Error(t, err)

	_, err = h.run("", "token", "issue", "u1", "--secret", "x", "--role", "viewer")
	assert.ErrorContains(t, err, "unknown role")
}

func TestTextOutput(t *testing.T) {
	var stdout bytes.Buffer
	out := NewOutput("text", &stdout, &stdout)

	out.Print([]response.ProgressionPoint{})
	assert.Contains(t, stdout.String(), "No rank history")

	stdout.Reset()
	out.Print([]response.Game{{ID: 3, Name: "Go", OwnerUserID: "u1"}})
	assert.Contains(t, stdout.String(), "NAME")
	assert.Contains(t, stdout.String(), "Go")

	stdout.Reset()
	out.Print(response.RankEntry{ID: 7, Rank: 42, GameID: 9})
	assert.Contains(t, stdout.String(), "Game: #9")
	assert.Contains(t, stdout.String(), "Rank: 42")
}
