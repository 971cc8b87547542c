/* api_test.go
 * Contains unit tests for api.go and models.go - testing all public API methods
 */

package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"numerai-bot/api/config"
	"numerai-bot/api/external"
	"numerai-bot/api/store"
	"numerai-bot/api/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI() (*API, *MockUpstream, *MockStore) {
	upstream := NewMockUpstream(store.CreateSampleCompetition())
	upstream.Users["alice"] = store.CreateSampleUserEarnings()
	s := NewMockStore()
	return &API{Client: upstream, Store: s}, upstream, s
}

// region NewAPI tests

func TestNewAPI_RequiresConfig(t *testing.T) {
	_, err := NewAPI(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}

func TestNewAPI_WithoutStore(t *testing.T) {
	cfg := &config.Config{
		Numerai: config.NumeraiConfig{
			BaseURL:           config.DefaultBaseURL,
			Email:             "modeler@example.com",
			Password:          "secret",
			Timeout:           time.Second,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Mongo: config.MongoConfig{Database: "numerai"},
	}

	a, err := NewAPI(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &external.Client{}, a.Client)
	assert.Nil(t, a.Store)
	assert.NoError(t, a.Close(context.Background()))
}

func TestNewAPI_InvalidClientConfig(t *testing.T) {
	cfg := &config.Config{Numerai: config.NumeraiConfig{BaseURL: config.DefaultBaseURL}}

	_, err := NewAPI(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize client")
}

// endregion

// region Leaderboard tests

func TestLeaderboard_ArchivesCompetition(t *testing.T) {
	a, _, s := newTestAPI()

	competition, status, err := a.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, competition)
	assert.Len(t, competition.Leaderboard, 2)
	assert.Contains(t, s.Competitions, "c1")
}

func TestLeaderboard_Limit(t *testing.T) {
	a, _, s := newTestAPI()

	competition, _, err := a.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, competition.Leaderboard, 1)
	assert.Equal(t, "alice", competition.Leaderboard[0].Username)
	// The archived snapshot keeps the full leaderboard
	assert.Len(t, s.Competitions["c1"].Leaderboard, 2)
}

func TestLeaderboard_NotArchived(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		empty  bool
	}{
		{"transport failure", external.StatusTransportError, nil, false},
		{"server error", http.StatusInternalServerError, nil, false},
		{"validation error", http.StatusOK, &validate.ValidationError{Issues: []validate.Issue{{Path: "[0]._id", Problem: "missing required key"}}}, false},
		{"no competition open", http.StatusOK, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, upstream, s := newTestAPI()
			upstream.Status = tt.status
			upstream.Err = tt.err
			if tt.empty {
				upstream.Competitions = nil
			}

			competition, status, err := a.Leaderboard(context.Background(), 0)
			assert.Nil(t, competition)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.err, err)
			assert.Empty(t, s.Competitions)
		})
	}
}

func TestLeaderboard_StoreFailureDoesNotFailRead(t *testing.T) {
	a, _, s := newTestAPI()
	s.StoreCompetitionError = errors.New("database error")

	competition, status, err := a.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, competition)
}

func TestLeaderboard_WithoutStore(t *testing.T) {
	a, _, _ := newTestAPI()
	a.Store = nil

	competition, _, err := a.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "c1", competition.ID)
}

// endregion

// region User tests

func TestLookupUser_Found(t *testing.T) {
	a, upstream, s := newTestAPI()

	lookup, status, err := a.LookupUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	require.True(t, lookup.Found())
	assert.Equal(t, 1, lookup.Summary.Rank)
	assert.InDelta(t, 0.6851, lookup.Summary.Logloss, 1e-9)
	assert.Empty(t, lookup.Suggestions)
	assert.Equal(t, 1, upstream.Calls["GetLeaderboard"])
	assert.Contains(t, s.Competitions, "c1")
}

func TestLookupUser_SuggestionsFromSameLeaderboard(t *testing.T) {
	a, upstream, s := newTestAPI()

	lookup, status, err := a.LookupUser(context.Background(), "alcie")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, lookup.Found())
	assert.Equal(t, []string{"alice"}, lookup.Suggestions)
	assert.Equal(t, 1, upstream.Calls["GetLeaderboard"])
	assert.Contains(t, s.Competitions, "c1")
}

func TestLookupUser_SuggestionsWithoutStore(t *testing.T) {
	upstream := NewMockUpstream(store.CreateSampleCompetition())
	a := &API{Client: upstream}

	lookup, status, err := a.LookupUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"bob_the_modeler"}, lookup.Suggestions)
	assert.Equal(t, 1, upstream.Calls["GetLeaderboard"])
}

func TestLookupUser_NoOpenCompetition(t *testing.T) {
	upstream := NewMockUpstream()
	s := NewMockStore()
	require.NoError(t, s.StoreCompetition(context.Background(), store.CreateSampleCompetition()))
	a := &API{Client: upstream, Store: s}

	lookup, status, err := a.LookupUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, lookup.Found())
	assert.Equal(t, []string{"bob_the_modeler"}, lookup.Suggestions)
	assert.Equal(t, 1, upstream.Calls["GetLeaderboard"])

	// Nothing archived either
	lookup, _, err = (&API{Client: upstream}).LookupUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.False(t, lookup.Found())
	assert.Empty(t, lookup.Suggestions)
}

func TestLookupUser_EmptyUsername(t *testing.T) {
	a, upstream, _ := newTestAPI()

	lookup, status, err := a.LookupUser(context.Background(), "")
	assert.ErrorIs(t, err, external.ErrUsernameRequired)
	assert.Equal(t, external.StatusTransportError, status)
	assert.Nil(t, lookup)
	assert.Zero(t, upstream.Calls["GetLeaderboard"])
}

func TestLookupUser_UpstreamFailure(t *testing.T) {
	a, upstream, _ := newTestAPI()
	upstream.Status = http.StatusServiceUnavailable

	lookup, status, err := a.LookupUser(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Nil(t, lookup)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestUserEarnings_Archives(t *testing.T) {
	a, _, s := newTestAPI()

	record, status, err := a.UserEarnings(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u1", record.ID)
	assert.Contains(t, s.UserEarnings, "alice")

	archived, err := a.ArchivedUserEarnings(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", archived.ID)
}

func TestUserEarnings_NotFoundUpstream(t *testing.T) {
	a, _, s := newTestAPI()

	record, status, err := a.UserEarnings(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Empty(t, s.UserEarnings)
}

func TestEarningsAndScores(t *testing.T) {
	a, _, _ := newTestAPI()

	earnings, status, err := a.EarningsPerRound(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, earnings, 3)

	scores, _, err := a.Scores(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestCurrentCompetition(t *testing.T) {
	a, _, _ := newTestAPI()

	current, status, err := a.CurrentCompetition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "c1", current.CompetitionID)
	assert.Equal(t, "d1", current.DatasetID)
}

// endregion

// region Archive tests

func TestArchivedCompetition(t *testing.T) {
	a, _, _ := newTestAPI()

	_, err := a.ArchivedCompetition(context.Background(), "c1")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, _, err = a.Leaderboard(context.Background(), 0)
	require.NoError(t, err)

	competition, err := a.ArchivedCompetition(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "d1", competition.DatasetID)
}

func TestArchive_StoreDisabled(t *testing.T) {
	a := &API{Client: NewMockUpstream()}

	_, err := a.ArchivedCompetition(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrStoreDisabled)

	_, err = a.ArchivedUserEarnings(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrStoreDisabled)
}

// endregion

// region SuggestUsernames tests

func TestSuggestUsernames(t *testing.T) {
	known := []string{"alice", "Alicia", "bob_the_modeler", "carol", "zed"}

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"subsequence", "bob", []string{"bob_the_modeler"}},
		{"case insensitive", "ALICE", []string{"alice", "Alicia"}},
		{"typo", "carl", []string{"carol"}},
		{"nothing close", "xxxxxxxx", []string{}},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestUsernames(tt.input, known)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSuggestUsernames_AtMostThree(t *testing.T) {
	known := []string{"model1", "model2", "model3", "model4"}

	got := SuggestUsernames("model", known)
	assert.Len(t, got, 3)
}

// endregion
