/* test_mocks.go
 * Contains mock implementations of Upstream and store.Interface for testing the API package and its consumers
 */

package api

import (
	"context"
	"fmt"
	"net/http"

	"numerai-bot/api/shared"
	"numerai-bot/api/store"

	"github.com/shopspring/decimal"
)

// MockUpstream implements Upstream for testing. Every operation returns the configured status; Err is returned
// alongside it when set
type MockUpstream struct {
	Status       int
	Err          error
	Competitions []shared.CompetitionMetadata
	Users        map[string]shared.UserEarningsRecord

	// Calls counts the requests made, keyed by operation name
	Calls map[string]int
}

// NewMockUpstream creates a MockUpstream answering 200 with the given competitions
func NewMockUpstream(competitions ...shared.CompetitionMetadata) *MockUpstream {
	return &MockUpstream{
		Status:       http.StatusOK,
		Competitions: competitions,
		Users:        make(map[string]shared.UserEarningsRecord),
		Calls:        make(map[string]int),
	}
}

func (m *MockUpstream) respond(op string) (bool, int, error) {
	m.Calls[op]++
	if m.Err != nil || m.Status != http.StatusOK {
		return false, m.Status, m.Err
	}
	return true, m.Status, nil
}

func (m *MockUpstream) GetLeaderboard(ctx context.Context) ([]shared.CompetitionMetadata, int, error) {
	ok, status, err := m.respond("GetLeaderboard")
	if !ok {
		return nil, status, err
	}
	return append([]shared.CompetitionMetadata{}, m.Competitions...), status, nil
}

func (m *MockUpstream) GetCurrentCompetition(ctx context.Context) (*shared.CurrentCompetition, int, error) {
	ok, status, err := m.respond("GetCurrentCompetition")
	if !ok || len(m.Competitions) == 0 {
		return nil, status, err
	}
	c := m.Competitions[0]
	return &shared.CurrentCompetition{DatasetID: c.DatasetID, CompetitionID: c.ID}, status, nil
}

func (m *MockUpstream) GetUserEarnings(ctx context.Context, username string) (*shared.UserEarningsRecord, int, error) {
	return m.user("GetUserEarnings", username)
}

func (m *MockUpstream) GetEarningsPerRound(ctx context.Context, username string) ([]decimal.Decimal, int, error) {
	record, status, err := m.user("GetEarningsPerRound", username)
	if record == nil {
		return nil, status, err
	}
	return append([]decimal.Decimal{}, record.Earnings...), status, nil
}

func (m *MockUpstream) GetScores(ctx context.Context, username string) ([]float64, int, error) {
	record, status, err := m.user("GetScores", username)
	if record == nil {
		return nil, status, err
	}
	submissions, err := record.ScoredSubmissions()
	if err != nil {
		return nil, status, err
	}
	scores := make([]float64, len(submissions))
	for i, s := range submissions {
		scores[i] = s.Logloss.Public.InexactFloat64()
	}
	return scores, status, nil
}

// user answers the operations backed by the users endpoint, which replies 404 for unknown usernames
func (m *MockUpstream) user(op string, username string) (*shared.UserEarningsRecord, int, error) {
	ok, status, err := m.respond(op)
	if !ok {
		return nil, status, err
	}
	record, found := m.Users[username]
	if !found {
		return nil, http.StatusNotFound, nil
	}
	return &record, status, nil
}

// MockStore implements store.Interface for testing
type MockStore struct {
	Competitions map[string]shared.CompetitionMetadata
	Latest       string
	UserEarnings map[string]shared.UserEarningsRecord

	// Error injection for testing error paths
	StoreCompetitionError  error
	FetchCompetitionError  error
	StoreUserEarningsError error
	Closed                 bool
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		Competitions: make(map[string]shared.CompetitionMetadata),
		UserEarnings: make(map[string]shared.UserEarningsRecord),
	}
}

func (m *MockStore) StoreCompetition(ctx context.Context, competition shared.CompetitionMetadata) error {
	if m.StoreCompetitionError != nil {
		return m.StoreCompetitionError
	}
	m.Competitions[competition.ID] = competition
	m.Latest = competition.ID
	return nil
}

func (m *MockStore) FetchCompetition(ctx context.Context, id string) (shared.CompetitionMetadata, error) {
	if m.FetchCompetitionError != nil {
		return shared.CompetitionMetadata{}, m.FetchCompetitionError
	}
	competition, ok := m.Competitions[id]
	if !ok {
		return shared.CompetitionMetadata{}, fmt.Errorf("competition: %w", store.ErrNotFound)
	}
	return competition, nil
}

func (m *MockStore) FetchLatestCompetition(ctx context.Context) (shared.CompetitionMetadata, error) {
	if m.Latest == "" {
		if m.FetchCompetitionError != nil {
			return shared.CompetitionMetadata{}, m.FetchCompetitionError
		}
		return shared.CompetitionMetadata{}, fmt.Errorf("competition: %w", store.ErrNotFound)
	}
	return m.FetchCompetition(ctx, m.Latest)
}

func (m *MockStore) StoreUserEarnings(ctx context.Context, record shared.UserEarningsRecord) error {
	if m.StoreUserEarningsError != nil {
		return m.StoreUserEarningsError
	}
	m.UserEarnings[record.Username] = record
	return nil
}

func (m *MockStore) FetchUserEarnings(ctx context.Context, username string) (shared.UserEarningsRecord, error) {
	record, ok := m.UserEarnings[username]
	if !ok {
		return shared.UserEarningsRecord{}, fmt.Errorf("earnings for %s: %w", username, store.ErrNotFound)
	}
	return record, nil
}

func (m *MockStore) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}

var _ store.Interface = (*MockStore)(nil)
