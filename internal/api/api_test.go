package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentboard/profiledir/internal/api"
	"github.com/talentboard/profiledir/internal/api/apierr"
	"github.com/talentboard/profiledir/internal/api/response"
	"github.com/talentboard/profiledir/internal/factory"
	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/services/profile"
	"github.com/talentboard/profiledir/internal/storage/memory"
	"github.com/talentboard/profiledir/internal/testutil"
)

// failingStorage fails profile updates for the configured operations
type failingStorage struct {
	*memory.Storage
	fail map[model.Operation]bool
}

func (f *failingStorage) UpdatePlayerProfile(ctx context.Context, id model.AccountID, u *model.PlayerUpdate) (*model.PlayerProfile, error) {
	if f.fail[model.OpPlayer] {
		return nil, errors.New("player store down")
	}
	return f.Storage.UpdatePlayerProfile(ctx, id, u)
}

func (f *failingStorage) UpdateRecruiterProfile(ctx context.Context, id model.AccountID, u *model.RecruiterUpdate) (*model.RecruiterProfile, error) {
	if f.fail[model.OpRecruiter] {
		return nil, errors.New("recruiter store down")
	}
	return f.Storage.UpdateRecruiterProfile(ctx, id, u)
}

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
	storage *failingStorage
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithPing(t, nil)
}

func newTestServerWithPing(t *testing.T, ping func(ctx context.Context) error) *testServer {
	t.Helper()

	store := &failingStorage{Storage: memory.New(), fail: map[model.Operation]bool{}}
	app := factory.NewTestAppWithStorage(store)
	require.NoError(t, app.LoadTestDirectory(t.Context()))

	router := api.NewRouter(api.RouterConfig{
		Logger:           testutil.NopLogger(),
		AuthService:      app.AuthService,
		ProfileService:   app.ProfileService,
		DirectoryService: app.DirectoryService,
		Metrics:          app.Metrics,
		Ping:             ping,
	})

	return &testServer{handler: router, app: app, storage: store}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func registerBody(email, role string) map[string]any {
	return map[string]any{
		"email":        email,
		"password":     "secret123",
		"role":         role,
		"display_name": "Alice",
		"profile": map[string]any{
			"intent": map[string]any{
				"shared": map[string]any{
					"first_name":    "Alice",
					"last_name":     "Huber",
					"date_of_birth": "1998-09-12",
				},
				"player": map[string]any{"bio": "Libero"},
			},
			"club_history": map[string]any{
				"player": []map[string]any{
					{"club_name": "FC Example", "start_year": "2020", "is_current": true, "leagues": []string{"NLA"}},
				},
			},
		},
	}
}

func (ts *testServer) register(t *testing.T, email, role string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/accounts/register", registerBody(email, role), "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[response.RegisterResponse](t, rr).SessionToken
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	health := decodeBody[response.Health](t, rr)
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.DirectoryLoaded)
}

func TestHealthCheckStorageDown(t *testing.T) {
	ts := newTestServerWithPing(t, func(context.Context) error { return errors.New("connection refused") })

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/accounts/register", registerBody("alice@example.com", "DUAL"), "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	registerResp := decodeBody[response.RegisterResponse](t, rr)
	assert.NotEmpty(t, registerResp.SessionToken)
	assert.Equal(t, "DUAL", registerResp.Account.Role)
	assert.Equal(t, "ALL_SUCCEEDED", registerResp.Outcome.Status)
	assert.Len(t, registerResp.Outcome.Operations, 2)

	loginBody := map[string]string{"email": "alice@example.com", "password": "secret123"}
	rr = ts.request(http.MethodPost, "/api/v1/accounts/login", loginBody, "")
	require.Equal(t, http.StatusOK, rr.Code)

	loginResp := decodeBody[response.AuthResponse](t, rr)
	assert.Equal(t, registerResp.Account.ID, loginResp.Account.ID)
	assert.NotEqual(t, registerResp.SessionToken, loginResp.SessionToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice@example.com", "DUAL")

	rr := ts.request(http.MethodPost, "/api/v1/accounts/register", registerBody("alice@example.com", "PLAYER_ONLY"), "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeEmailExists, decodeBody[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestRegisterInvalidProfile(t *testing.T) {
	ts := newTestServer(t)

	body := registerBody("alice@example.com", "DUAL")
	body["profile"].(map[string]any)["intent"].(map[string]any)["shared"].(map[string]any)["date_of_birth"] = "12.09.1998"

	rr := ts.request(http.MethodPost, "/api/v1/accounts/register", body, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	errResp := decodeBody[apierr.ErrorResponse](t, rr)
	assert.Equal(t, apierr.CodeValidationFailed, errResp.Error.Code)
	require.Len(t, errResp.Error.Violations, 1)
	assert.Equal(t, "shared.date_of_birth", errResp.Error.Violations[0].Field)
}

func TestRegisterRejectsUnknownFields(t *testing.T) {
	ts := newTestServer(t)

	body := registerBody("alice@example.com", "DUAL")
	body["is_admin"] = true

	rr := ts.request(http.MethodPost, "/api/v1/accounts/register", body, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice@example.com", "DUAL")

	rr := ts.request(http.MethodPost, "/api/v1/accounts/login",
		map[string]string{"email": "alice@example.com", "password": "nope-nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice@example.com", "PLAYER_ONLY")

	rr := ts.request(http.MethodGet, "/api/v1/accounts/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	me := decodeBody[response.Account](t, rr)
	assert.Equal(t, "Alice", me.DisplayName)
	assert.Equal(t, "PLAYER_ONLY", me.Role)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/accounts/me", "/api/v1/profile"} {
		rr := ts.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := ts.request(http.MethodPut, "/api/v1/profile", map[string]any{}, "bogus")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetProfile(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice@example.com", "DUAL")

	rr := ts.request(http.MethodGet, "/api/v1/profile", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	view := decodeBody[profile.View](t, rr)
	require.NotNil(t, view.Player)
	require.NotNil(t, view.Recruiter)
	assert.Equal(t, view.Player.Profile.Shared, view.Recruiter.Profile.Shared)
	assert.Equal(t, "Libero", view.Recruiter.Profile.Bio)
	assert.Equal(t, 26, *view.Player.Age)
	assert.Equal(t, []string{"NLA"}, view.Player.ActiveLeagues)
	require.Len(t, view.Player.Profile.ClubHistory, 1)
	assert.Equal(t, model.ClubID("c-example"), *view.Player.Profile.ClubHistory[0].ClubID)
}

func editBody(municipality string) map[string]any {
	return map[string]any{
		"intent": map[string]any{
			"shared": map[string]any{"municipality": municipality},
		},
	}
}

func TestEditProfile(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice@example.com", "DUAL")

	rr := ts.request(http.MethodPut, "/api/v1/profile", editBody("Biel"), token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[response.EditResponse](t, rr)
	assert.Equal(t, "ALL_SUCCEEDED", resp.Status)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "Biel", resp.Profile.Player.Profile.Shared.Municipality)
	assert.Equal(t, "Biel", resp.Profile.Recruiter.Profile.Shared.Municipality)
	assert.Empty(t, resp.Profile.Skew)
}

func TestEditProfileViolations(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice@example.com", "DUAL")

	body := editBody("Biel")
	body["club_history"] = map[string]any{
		"recruiter": []map[string]any{{"club_name": "Volley Bern", "start_year": "2018", "end_year": "2016"}},
	}

	rr := ts.request(http.MethodPut, "/api/v1/profile", body, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	errResp := decodeBody[apierr.ErrorResponse](t, rr)
	require.Len(t, errResp.Error.Violations, 1)
	assert.Equal(t, model.CodeEndBeforeStart, errResp.Error.Violations[0].Code)

	rr = ts.request(http.MethodGet, "/api/v1/profile", nil, token)
	view := decodeBody[profile.View](t, rr)
	assert.Empty(t, view.Player.Profile.Shared.Municipality)
}

func TestEditProfilePartialFailure(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice@example.com", "DUAL")
	ts.storage.fail[model.OpRecruiter] = true

	rr := ts.request(http.MethodPut, "/api/v1/profile", editBody("Biel"), token)
	require.Equal(t, http.StatusMultiStatus, rr.Code, rr.Body.String())

	resp := decodeBody[response.EditResponse](t, rr)
	assert.Equal(t, "PARTIAL_FAILURE", resp.Status)
	require.Len(t, resp.Operations, 2)
	for _, op := range resp.Operations {
		if op.Operation == "recruiter" {
			assert.False(t, op.Succeeded)
			assert.NotEmpty(t, op.Reason)
		} else {
			assert.True(t, op.Succeeded)
		}
	}
	require.NotNil(t, resp.Profile)
	assert.Equal(t, []string{"municipality"}, resp.Profile.Skew)
}

func TestEditProfileAllFailed(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice@example.com", "DUAL")
	ts.storage.fail[model.OpPlayer] = true
	ts.storage.fail[model.OpRecruiter] = true

	rr := ts.request(http.MethodPut, "/api/v1/profile", editBody("Biel"), token)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "ALL_FAILED", decodeBody[response.EditResponse](t, rr).Status)
}

func TestRegisterPartialFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.storage.fail[model.OpRecruiter] = true

	rr := ts.request(http.MethodPost, "/api/v1/accounts/register", registerBody("alice@example.com", "DUAL"), "")
	require.Equal(t, http.StatusMultiStatus, rr.Code, rr.Body.String())

	resp := decodeBody[response.RegisterResponse](t, rr)
	assert.Equal(t, "PARTIAL_FAILURE", resp.Outcome.Status)
	require.NotEmpty(t, resp.SessionToken)

	rr = ts.request(http.MethodGet, "/api/v1/profile", nil, resp.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRegisterAllFailed(t *testing.T) {
	ts := newTestServer(t)
	ts.storage.fail[model.OpPlayer] = true
	ts.storage.fail[model.OpRecruiter] = true

	rr := ts.request(http.MethodPost, "/api/v1/accounts/register", registerBody("alice@example.com", "DUAL"), "")
	require.Equal(t, http.StatusBadGateway, rr.Code, rr.Body.String())

	resp := decodeBody[response.RegisterResponse](t, rr)
	assert.Equal(t, "ALL_FAILED", resp.Outcome.Status)
	require.NotEmpty(t, resp.SessionToken)

	// The login exists, so the profile can be retried
	delete(ts.storage.fail, model.OpPlayer)
	delete(ts.storage.fail, model.OpRecruiter)
	rr = ts.request(http.MethodPut, "/api/v1/profile", editBody("Biel"), resp.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestValidateProfile(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice@example.com", "PLAYER_ONLY")

	rr := ts.request(http.MethodPost, "/api/v1/profile/validate", editBody("Biel"), token)
	require.Equal(t, http.StatusOK, rr.Code)
	ok := decodeBody[response.ValidateResponse](t, rr)
	assert.True(t, ok.Valid)
	assert.Equal(t, []string{"player"}, ok.Operations)

	body := editBody("Biel")
	body["intent"].(map[string]any)["recruiter"] = map[string]any{"organization": "Volley Bern"}
	rr = ts.request(http.MethodPost, "/api/v1/profile/validate", body, token)
	require.Equal(t, http.StatusOK, rr.Code)
	bad := decodeBody[response.ValidateResponse](t, rr)
	assert.False(t, bad.Valid)
	require.Len(t, bad.Violations, 1)
	assert.Equal(t, model.CodeRoleMismatch, bad.Violations[0].Code)
}

func TestPromote(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice@example.com", "PLAYER_ONLY")

	rr := ts.request(http.MethodPost, "/api/v1/profile/promote", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view := decodeBody[profile.View](t, rr)
	assert.Equal(t, model.RoleDual, view.Account.Role)
	require.NotNil(t, view.Recruiter)

	rr = ts.request(http.MethodPost, "/api/v1/profile/promote", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeAlreadyDual, decodeBody[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestClubSearch(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/clubs?q=zuri", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[response.ClubList](t, rr)
	require.NotEmpty(t, list.Clubs)
	assert.Equal(t, model.ClubID("c-zurich"), list.Clubs[0].ID)

	rr = ts.request(http.MethodGet, "/api/v1/clubs?q=nothing+like+it", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[response.ClubList](t, rr).Clubs)

	rr = ts.request(http.MethodGet, "/api/v1/clubs", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/clubs?q=bern&limit=500", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetClub(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/clubs/c-bern", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Volley Bern", decodeBody[model.Club](t, rr).Name)

	rr = ts.request(http.MethodGet, "/api/v1/clubs/c-missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice@example.com", "DUAL")

	rr := ts.request(http.MethodGet, "/api/v1/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `profiledir_commit_total{status="ALL_SUCCEEDED"} 1`)
	assert.Contains(t, body, `route="/api/v1/accounts/register"`)
}
