/* router_test.go
 * Contains unit tests for router.go and response.go
 */

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"numerai-bot/api/api"
	"numerai-bot/api/external"
	"numerai-bot/api/store"
	"numerai-bot/api/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (http.Handler, *api.MockUpstream, *api.MockStore) {
	upstream := api.NewMockUpstream(store.CreateSampleCompetition())
	upstream.Users["alice"] = store.CreateSampleUserEarnings()
	s := api.NewMockStore()
	return NewRouter(&api.API{Client: upstream, Store: s}), upstream, s
}

func doGet(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

// region Upstream route tests

func TestHealth(t *testing.T) {
	h, _, _ := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestGetLeaderboard(t *testing.T) {
	h, _, s := newTestRouter()

	code, body := doGet(t, h, "/leaderboard?limit=1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(200), body["upstream_status"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "c1", data["_id"])
	assert.Len(t, data["leaderboard"], 1)
	assert.Contains(t, s.Competitions, "c1")
}

func TestGetLeaderboard_BadLimit(t *testing.T) {
	h, upstream, _ := newTestRouter()

	for _, limit := range []string{"abc", "0", "-3"} {
		code, body := doGet(t, h, "/leaderboard?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "limit must be a positive integer", body["error"])
	}
	assert.Equal(t, 0, upstream.Calls["GetLeaderboard"])
}

func TestGetLeaderboard_NoCompetition(t *testing.T) {
	h, upstream, _ := newTestRouter()
	upstream.Competitions = nil

	code, body := doGet(t, h, "/leaderboard")
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["data"])
}

func TestGetLeaderboard_StatusMapping(t *testing.T) {
	verr := &validate.ValidationError{Issues: []validate.Issue{{Path: "[0].dataset_id", Problem: "missing required key"}}}

	tests := []struct {
		name     string
		status   int
		err      error
		expected int
	}{
		{"transport failure", external.StatusTransportError, nil, http.StatusGatewayTimeout},
		{"upstream server error", http.StatusInternalServerError, nil, http.StatusBadGateway},
		{"upstream not found", http.StatusNotFound, nil, http.StatusNotFound},
		{"validation error", http.StatusOK, verr, http.StatusBadGateway},
		{"unexpected error", http.StatusOK, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, upstream, _ := newTestRouter()
			upstream.Status = tt.status
			upstream.Err = tt.err

			code, body := doGet(t, h, "/leaderboard")
			assert.Equal(t, tt.expected, code)
			assert.Equal(t, float64(tt.status), body["upstream_status"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetLeaderboard_ValidationIssues(t *testing.T) {
	h, upstream, _ := newTestRouter()
	upstream.Err = &validate.ValidationError{Issues: []validate.Issue{{Path: "[0].dataset_id", Problem: "missing required key"}}}

	code, body := doGet(t, h, "/leaderboard")
	require.Equal(t, http.StatusBadGateway, code)

	issues := body["issues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, "[0].dataset_id", issues[0].(map[string]any)["path"])
}

func TestGetCurrentCompetition(t *testing.T) {
	h, _, _ := newTestRouter()

	code, body := doGet(t, h, "/competition/current")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "d1", data["dataset_id"])
	assert.Equal(t, "c1", data["competition_id"])
}

func TestGetUser(t *testing.T) {
	h, _, _ := newTestRouter()

	code, body := doGet(t, h, "/users/alice")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, float64(1), data["rank"])
}

func TestGetUser_NotFoundWithSuggestions(t *testing.T) {
	h, _, _ := newTestRouter()

	code, body := doGet(t, h, "/users/bob")
	require.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, float64(200), body["upstream_status"])
	assert.Equal(t, []any{"bob_the_modeler"}, body["suggestions"])
}

func TestGetUser_MissingUsername(t *testing.T) {
	h, upstream, _ := newTestRouter()
	upstream.Status = external.StatusTransportError
	upstream.Err = external.ErrUsernameRequired

	code, _ := doGet(t, h, "/users/alice")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetEarningsAndScores(t *testing.T) {
	h, _, _ := newTestRouter()

	code, body := doGet(t, h, "/users/alice/earnings")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"10", "15.5", "0"}, body["data"])

	code, body = doGet(t, h, "/users/alice/scores")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 2)

	code, _ = doGet(t, h, "/users/nobody/earnings")
	assert.Equal(t, http.StatusNotFound, code)
}

// endregion

// region Archive route tests

func TestArchiveRoutes(t *testing.T) {
	h, _, s := newTestRouter()

	code, _ := doGet(t, h, "/archive/competitions/c1")
	assert.Equal(t, http.StatusNotFound, code)

	s.Competitions["c1"] = store.CreateSampleCompetition()
	code, body := doGet(t, h, "/archive/competitions/c1")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "upstream_status")
	assert.Equal(t, "c1", body["data"].(map[string]any)["_id"])

	s.UserEarnings["alice"] = store.CreateSampleUserEarnings()
	code, body = doGet(t, h, "/archive/users/alice")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u1", body["data"].(map[string]any)["_id"])
}

func TestArchiveRoutes_StoreDisabled(t *testing.T) {
	h := NewRouter(&api.API{Client: api.NewMockUpstream()})

	code, body := doGet(t, h, "/archive/users/alice")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, api.ErrStoreDisabled.Error(), body["error"])
}

func TestArchiveRoutes_StoreError(t *testing.T) {
	h, _, s := newTestRouter()
	s.FetchCompetitionError = errors.New("database error")

	code, body := doGet(t, h, "/archive/competitions/c1")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "failed to read archive", body["error"])
}

// endregion
