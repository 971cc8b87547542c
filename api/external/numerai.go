/* numerai.go
 * Contains the Numerai API operations. Every operation returns its result together with the HTTP status code:
 * transport failures and non-200 responses are reported only through the status, and the error is reserved for
 * responses that do not match their expected shape
 */

package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"numerai-bot/api/shared"
	"numerai-bot/api/validate"

	"github.com/shopspring/decimal"
)

// ErrUsernameRequired is returned without making a request when an empty username is given
var ErrUsernameRequired = errors.New("username is required")

// How far back the leaderboard filter reaches for competitions that are still open
const leaderboardWindow = time.Duration(55296e5) * time.Microsecond

// GetLeaderboard fetches the current competition with its leaderboard
// Preconditions: Receives context
// Postconditions: Returns a slice holding at most one CompetitionMetadata and the status code. The slice is empty
// when no competition is open. Returns a *validate.ValidationError if the response has the wrong shape
func (c *Client) GetLeaderboard(ctx context.Context) ([]shared.CompetitionMetadata, int, error) {
	since := c.now().Add(-leaderboardWindow).UTC().Format("2006-01-02T15:04:05.000000Z")
	query := url.Values{}
	query.Set("filter", fmt.Sprintf(`{"where":{"end_date":{"gt":"%s"}}}`, since))

	body, status := c.get(ctx, "/competitions", query)
	if status != http.StatusOK {
		return nil, status, nil
	}

	var competitions []shared.CompetitionMetadata
	if err := c.decode("/competitions", body, leaderboardSchema, &competitions); err != nil {
		return nil, status, err
	}
	return competitions, status, nil
}

// GetCurrentCompetition returns the dataset id and competition id of the running competition
// Preconditions: Receives context
// Postconditions: Returns CurrentCompetition and the status code, the result is nil if no competition is open
func (c *Client) GetCurrentCompetition(ctx context.Context) (*shared.CurrentCompetition, int, error) {
	competitions, status, err := c.GetLeaderboard(ctx)
	if err != nil || status != http.StatusOK || len(competitions) == 0 {
		return nil, status, err
	}
	return &shared.CurrentCompetition{
		DatasetID:     competitions[0].DatasetID,
		CompetitionID: competitions[0].ID,
	}, status, nil
}

// GetUser looks a user up on the current leaderboard
// Preconditions: Receives context and the exact username
// Postconditions: Returns the UserSummary and the status code. The summary is nil when the user is not on the
// leaderboard or no competition is open
func (c *Client) GetUser(ctx context.Context, username string) (*shared.UserSummary, int, error) {
	if username == "" {
		return nil, StatusTransportError, ErrUsernameRequired
	}

	competitions, status, err := c.GetLeaderboard(ctx)
	if err != nil || status != http.StatusOK || len(competitions) == 0 {
		return nil, status, err
	}

	for _, entry := range competitions[0].Leaderboard {
		if entry.Username == username {
			summary := shared.NewUserSummary(entry)
			return &summary, status, nil
		}
	}
	return nil, status, nil
}

// GetUserEarnings fetches the full user record that per round earnings are read from
// Preconditions: Receives context and username
// Postconditions: Returns the UserEarningsRecord and the status code
func (c *Client) GetUserEarnings(ctx context.Context, username string) (*shared.UserEarningsRecord, int, error) {
	var record shared.UserEarningsRecord
	status, err := c.fetchUser(ctx, username, userEarningsSchema, &record)
	if err != nil || status != http.StatusOK {
		return nil, status, err
	}
	return &record, status, nil
}

// GetEarningsPerRound returns a user's earnings, one value per scored round with the earliest round first
// Preconditions: Receives context and username
// Postconditions: Returns the earnings and the status code
func (c *Client) GetEarningsPerRound(ctx context.Context, username string) ([]decimal.Decimal, int, error) {
	record, status, err := c.GetUserEarnings(ctx, username)
	if record == nil {
		return nil, status, err
	}
	earnings := record.Earnings
	if earnings == nil {
		earnings = []decimal.Decimal{}
	}
	return earnings, status, nil
}

// scoredUser is the part of a user document that scores are read from
type scoredUser struct {
	Submissions []shared.Submission `json:"submissions" validate:"dive"`
}

// GetScores returns the public logloss of each of a user's submissions, sorted by round ascending. Scores come
// from the same user endpoint as earnings
// Preconditions: Receives context and username
// Postconditions: Returns the scores and the status code, or a validation error if a submission has no round or
// public logloss
func (c *Client) GetScores(ctx context.Context, username string) ([]float64, int, error) {
	var user scoredUser
	status, err := c.fetchUser(ctx, username, userScoresSchema, &user)
	if err != nil || status != http.StatusOK {
		return nil, status, err
	}

	submissions := user.Submissions
	sort.SliceStable(submissions, func(i, j int) bool {
		return submissions[i].Round < submissions[j].Round
	})

	scores := make([]float64, len(submissions))
	for i, submission := range submissions {
		scores[i] = submission.Logloss.Public.InexactFloat64()
	}
	return scores, status, nil
}

// fetchUser reads a user document into out
// Postconditions: out is populated only when the status is 200 and the error is nil
func (c *Client) fetchUser(ctx context.Context, username string, schema *validate.Schema, out any) (int, error) {
	if username == "" {
		return StatusTransportError, ErrUsernameRequired
	}

	path := "/users/" + url.PathEscape(username)
	body, status := c.get(ctx, path, nil)
	if status != http.StatusOK {
		return status, nil
	}
	if err := c.decode(path, body, schema, out); err != nil {
		return status, err
	}
	return status, nil
}
