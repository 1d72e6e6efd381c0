package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentboard/profiledir/internal/api"
	"github.com/talentboard/profiledir/internal/factory"
	"github.com/talentboard/profiledir/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "profilectl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/profilectl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestDirectory(context.Background()))

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:           testutil.NopLogger(),
		AuthService:      app.AuthService,
		ProfileService:   app.ProfileService,
		DirectoryService: app.DirectoryService,
		Metrics:          app.Metrics,
		Ping:             app.Ping,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type accountResponse struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

type registerResponse struct {
	Account      accountResponse `json:"account"`
	SessionToken string          `json:"session_token"`
	Outcome      struct {
		Status string `json:"status"`
	} `json:"outcome"`
}

type sharedResponse struct {
	FirstName    string `json:"first_name"`
	Municipality string `json:"municipality"`
}

type profileResponse struct {
	Account accountResponse `json:"account"`
	Player  *struct {
		Profile struct {
			Shared      sharedResponse `json:"shared"`
			Bio         string         `json:"bio"`
			ClubHistory []struct {
				ClubID   *string `json:"club_id"`
				ClubName string  `json:"club_name"`
			} `json:"club_history"`
		} `json:"profile"`
		Age *int `json:"age"`
	} `json:"player"`
	Recruiter *struct {
		Profile struct {
			Shared sharedResponse `json:"shared"`
			Bio    string         `json:"bio"`
		} `json:"profile"`
	} `json:"recruiter"`
	Skew []string `json:"skew"`
}

type editResponse struct {
	Status  string           `json:"status"`
	Profile *profileResponse `json:"profile"`
}

type clubListResponse struct {
	Clubs []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"clubs"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AccountCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("account", "register",
		"--email", "mia@example.com", "--pass", "secret123", "--name", "Mia", "--role", "DUAL",
		"--set", "first_name=Mia", "--set", "last_name=Brunner")
	require.NoError(t, err, "output: %s", output)

	var reg registerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &reg))
	assert.Equal(t, "DUAL", reg.Account.Role)
	assert.Equal(t, "ALL_SUCCEEDED", reg.Outcome.Status)
	assert.NotEmpty(t, reg.SessionToken)

	// Token was saved to the token file
	output, err = cli.run("account", "me")
	require.NoError(t, err, "output: %s", output)

	var me accountResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, reg.Account.ID, me.ID)

	// Login from a fresh token file
	other := newCLIRunner(t, ts.addr)
	output, err = other.run("account", "login", "--email", "mia@example.com", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
}

func TestCLI_ProfileFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	profileFile := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(profileFile, []byte(`{
		"intent": {
			"shared": {"first_name": "Noah", "last_name": "Frei", "date_of_birth": "2000-01-01"},
			"player": {"bio": "Outside hitter"}
		},
		"club_history": {
			"player": [{"club_name": "example sc", "start_year": "2019", "is_current": true}]
		}
	}`), 0o600))

	output, err := cli.run("account", "register",
		"--email", "noah@example.com", "--pass", "secret123", "--role", "PLAYER_ONLY", "--file", profileFile)
	require.NoError(t, err, "output: %s", output)

	// Show
	output, err = cli.run("profile", "show")
	require.NoError(t, err, "output: %s", output)

	var view profileResponse
	require.NoError(t, json.Unmarshal([]byte(output), &view))
	require.NotNil(t, view.Player)
	assert.Nil(t, view.Recruiter)
	require.Len(t, view.Player.Profile.ClubHistory, 1)
	assert.Equal(t, "FC Example", view.Player.Profile.ClubHistory[0].ClubName)

	// Promote
	output, err = cli.run("profile", "promote")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &view))
	assert.Equal(t, "DUAL", view.Account.Role)
	require.NotNil(t, view.Recruiter)

	// Validate then edit from the recruiter side
	output, err = cli.run("profile", "validate", "--set", "municipality=Thun", "--from", "recruiter")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("profile", "edit", "--set", "municipality=Thun", "--from", "recruiter")
	require.NoError(t, err, "output: %s", output)

	var edit editResponse
	require.NoError(t, json.Unmarshal([]byte(output), &edit))
	assert.Equal(t, "ALL_SUCCEEDED", edit.Status)
	require.NotNil(t, edit.Profile)
	assert.Equal(t, "Thun", edit.Profile.Player.Profile.Shared.Municipality)
	assert.Equal(t, "Thun", edit.Profile.Recruiter.Profile.Shared.Municipality)
	assert.Empty(t, edit.Profile.Skew)
}

func TestCLI_ClubSearch(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("clubs", "search", "Zürich", "--limit", "3")
	require.NoError(t, err, "output: %s", output)

	var list clubListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	require.NotEmpty(t, list.Clubs)
	assert.Equal(t, "c-zurich", list.Clubs[0].ID)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Profile without auth
	output, err := cli.run("profile", "show")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "authentication required")

	// Invalid edit reports the violations
	output, err = cli.run("account", "register",
		"--email", "lea@example.com", "--pass", "secret123", "--role", "DUAL",
		"--set", "first_name=Lea", "--set", "last_name=Graf")
	require.NoError(t, err, "output: %s", output)
	var reg registerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &reg))

	output, err = cli.runWithToken(reg.SessionToken, "profile", "edit", "--set", "date_of_birth=2001-02-30")
	assert.Error(t, err)
	assert.Contains(t, output, "VALIDATION_FAILED")
	assert.Contains(t, output, "shared.date_of_birth")

	// Unknown club
	output, err = cli.run("clubs", "get", "c-missing")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")
}
