/* api.go
 * This file contains the public methods for interacting with this package. The bot, the web gateway and main
 * should only go through API, not the client and store sub packages. Every read is a single call to the Numerai
 * API and returns the upstream status alongside the result. Successful reads are archived in the store when one
 * is configured
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"numerai-bot/api/config"
	"numerai-bot/api/external"
	"numerai-bot/api/shared"
	"numerai-bot/api/store"

	"github.com/shopspring/decimal"
)

// ErrStoreDisabled is returned by archive reads when no store is configured
var ErrStoreDisabled = errors.New("snapshot store is not configured")

// Upstream is the set of Numerai API operations used by API. *external.Client implements it
type Upstream interface {
	GetLeaderboard(ctx context.Context) ([]shared.CompetitionMetadata, int, error)
	GetCurrentCompetition(ctx context.Context) (*shared.CurrentCompetition, int, error)
	GetUserEarnings(ctx context.Context, username string) (*shared.UserEarningsRecord, int, error)
	GetEarningsPerRound(ctx context.Context, username string) ([]decimal.Decimal, int, error)
	GetScores(ctx context.Context, username string) ([]float64, int, error)
}

var _ Upstream = (*external.Client)(nil)

// API provides methods for reading the competition data and archiving it
type API struct {
	Client Upstream
	Store  store.Interface // nil disables archiving
}

// NewAPI creates a new API instance with the provided configuration
// Preconditions: Receives context and a validated Config
// Postconditions: Returns the API, or an error if the client or the store could not be set up. The store is only
// connected when a mongo URI is configured
func NewAPI(ctx context.Context, cfg *config.Config) (*API, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	client, err := external.NewClient(cfg.Numerai)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}

	a := &API{Client: client}
	if cfg.Mongo.URI == "" {
		log.Println("MONGO_URI not set, snapshots will not be archived")
		return a, nil
	}

	s, err := store.NewStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	a.Store = s
	return a, nil
}

// Close releases the store connection, if any
func (a *API) Close(ctx context.Context) error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close(ctx)
}

// Leaderboard fetches the current competition and archives it
// Preconditions: Receives context and the number of entries to keep; limit <= 0 keeps them all
// Postconditions: Returns the competition (nil when none is open or the status is not 200), the upstream status,
// and a validation error if the response had the wrong shape
func (a *API) Leaderboard(ctx context.Context, limit int) (*shared.CompetitionMetadata, int, error) {
	competitions, status, err := a.Client.GetLeaderboard(ctx)
	if err != nil || status != http.StatusOK || len(competitions) == 0 {
		return nil, status, err
	}

	competition := competitions[0]
	a.archiveCompetition(ctx, competition)

	if limit > 0 && len(competition.Leaderboard) > limit {
		competition.Leaderboard = competition.Leaderboard[:limit]
	}
	return &competition, status, nil
}

// CurrentCompetition fetches the ids of the running competition and its dataset
func (a *API) CurrentCompetition(ctx context.Context) (*shared.CurrentCompetition, int, error) {
	return a.Client.GetCurrentCompetition(ctx)
}

// LookupUser finds a user on the current leaderboard. When the user is not on it, the lookup carries the
// usernames that are close to the one given. The leaderboard is fetched once and archived, and the suggestions come
// from that same leaderboard, or from the last archived one when no competition is open
// Preconditions: Receives context and username
// Postconditions: Returns the lookup, the upstream status and a validation or argument error. The lookup is nil
// only when the status is not 200 or an error is returned
func (a *API) LookupUser(ctx context.Context, username string) (*UserLookup, int, error) {
	if username == "" {
		return nil, external.StatusTransportError, external.ErrUsernameRequired
	}

	competition, status, err := a.Leaderboard(ctx, 0)
	if err != nil || status != http.StatusOK {
		return nil, status, err
	}
	if competition == nil {
		return &UserLookup{Suggestions: SuggestUsernames(username, a.archivedUsernames(ctx))}, status, nil
	}

	for _, entry := range competition.Leaderboard {
		if entry.Username == username {
			summary := shared.NewUserSummary(entry)
			return &UserLookup{Summary: &summary}, status, nil
		}
	}
	return &UserLookup{Suggestions: SuggestUsernames(username, usernames(*competition))}, status, nil
}

// UserEarnings fetches the whole user document and archives it
func (a *API) UserEarnings(ctx context.Context, username string) (*shared.UserEarningsRecord, int, error) {
	record, status, err := a.Client.GetUserEarnings(ctx, username)
	if err != nil || status != http.StatusOK {
		return nil, status, err
	}

	if a.Store != nil {
		if err := a.Store.StoreUserEarnings(ctx, *record); err != nil {
			log.Printf("failed to archive earnings for %s: %v", username, err)
		}
	}
	return record, status, nil
}

// EarningsPerRound fetches one earnings value per scored round
func (a *API) EarningsPerRound(ctx context.Context, username string) ([]decimal.Decimal, int, error) {
	return a.Client.GetEarningsPerRound(ctx, username)
}

// Scores fetches the public logloss of each submission, ordered by round
func (a *API) Scores(ctx context.Context, username string) ([]float64, int, error) {
	return a.Client.GetScores(ctx, username)
}

// ArchivedCompetition returns a stored competition snapshot
// Postconditions: Returns ErrStoreDisabled without a store, or an error wrapping store.ErrNotFound
func (a *API) ArchivedCompetition(ctx context.Context, id string) (*shared.CompetitionMetadata, error) {
	if a.Store == nil {
		return nil, ErrStoreDisabled
	}
	competition, err := a.Store.FetchCompetition(ctx, id)
	if err != nil {
		return nil, err
	}
	return &competition, nil
}

// ArchivedUserEarnings returns the last stored user document for a username
func (a *API) ArchivedUserEarnings(ctx context.Context, username string) (*shared.UserEarningsRecord, error) {
	if a.Store == nil {
		return nil, ErrStoreDisabled
	}
	record, err := a.Store.FetchUserEarnings(ctx, username)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (a *API) archiveCompetition(ctx context.Context, competition shared.CompetitionMetadata) {
	if a.Store == nil {
		return
	}
	if err := a.Store.StoreCompetition(ctx, competition); err != nil {
		log.Printf("failed to archive competition %s: %v", competition.ID, err)
	}
}

// archivedUsernames returns the usernames on the latest archived competition, if any
func (a *API) archivedUsernames(ctx context.Context) []string {
	if a.Store == nil {
		return nil
	}
	competition, err := a.Store.FetchLatestCompetition(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("failed to read archived competition: %v", err)
		}
		return nil
	}
	return usernames(competition)
}

func usernames(competition shared.CompetitionMetadata) []string {
	names := make([]string, len(competition.Leaderboard))
	for i, entry := range competition.Leaderboard {
		names[i] = entry.Username
	}
	return names
}
