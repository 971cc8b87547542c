/* models.go
 * This file contains the records returned by the Numerai API. They are shared between the client, the store
 * and the consumers of the api package
 */

package shared

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CompetitionMetadata is a single competition as returned by the competitions endpoint
type CompetitionMetadata struct {
	ID          string             `json:"_id" validate:"required"`
	DatasetID   string             `json:"dataset_id" validate:"required"`
	StartDate   Timestamp          `json:"start_date"`
	EndDate     Timestamp          `json:"end_date"`
	Updated     Timestamp          `json:"updated"`
	Leaderboard []LeaderboardEntry `json:"leaderboard" validate:"dive"`
}

// LeaderboardEntry is one participant on a competition leaderboard
type LeaderboardEntry struct {
	Username     string          `json:"username" validate:"required"`
	Rank         Rank            `json:"rank"`
	Logloss      Logloss         `json:"logloss"`
	Earned       decimal.Decimal `json:"earned"`
	Earnings     Earnings        `json:"earnings"`
	SubmissionID string          `json:"submission_id" validate:"required"`
}

type Rank struct {
	Public int `json:"public" validate:"gte=0"`
}

type Logloss struct {
	Public decimal.Decimal `json:"public" validate:"gte=0"`
}

type Earnings struct {
	Career CareerEarnings `json:"career"`
}

// CareerEarnings holds lifetime earnings. The API sends both amounts as strings
type CareerEarnings struct {
	NMR string `json:"nmr" validate:"numeric"`
	USD string `json:"usd" validate:"numeric"`
}

// NMRAmount returns the NMR earnings as a decimal
func (c CareerEarnings) NMRAmount() decimal.Decimal {
	return decimal.RequireFromString(c.NMR)
}

// USDAmount returns the USD earnings as a decimal
func (c CareerEarnings) USDAmount() decimal.Decimal {
	return decimal.RequireFromString(c.USD)
}

// UserEarningsRecord is the user document returned by the users endpoint. The API gives no fixed item shape for
// followers, rewards and submissions, so their items are kept as the JSON they arrived as
type UserEarningsRecord struct {
	ID          string            `json:"_id" validate:"required"`
	Username    string            `json:"username" validate:"required"`
	Created     Timestamp         `json:"created"`
	Followers   []json.RawMessage `json:"followers"`
	Rewards     []json.RawMessage `json:"rewards"`
	Submissions []json.RawMessage `json:"submissions"`
	Earnings    []decimal.Decimal `json:"earnings"` // one value per round
}

// ScoredSubmissions decodes every submission into its round and public logloss
// Postconditions: Returns an error naming the first submission that is not an object of that shape
func (r UserEarningsRecord) ScoredSubmissions() ([]Submission, error) {
	submissions := make([]Submission, len(r.Submissions))
	for i, raw := range r.Submissions {
		if err := json.Unmarshal(raw, &submissions[i]); err != nil {
			return nil, fmt.Errorf("submission %d: %w", i, err)
		}
	}
	return submissions, nil
}

type Submission struct {
	Round   int     `json:"round" validate:"gte=0"`
	Logloss Logloss `json:"logloss"`
}

// UserSummary is the (username, logloss, rank, earned) tuple for a user on the current leaderboard
type UserSummary struct {
	Username string          `json:"username"`
	Logloss  float64         `json:"logloss"`
	Rank     int             `json:"rank"`
	Earned   decimal.Decimal `json:"earned"`
}

// CurrentCompetition identifies the running competition and its dataset
type CurrentCompetition struct {
	DatasetID     string `json:"dataset_id"`
	CompetitionID string `json:"competition_id"`
}

// NewUserSummary builds a UserSummary from a leaderboard entry
func NewUserSummary(entry LeaderboardEntry) UserSummary {
	return UserSummary{
		Username: entry.Username,
		Logloss:  entry.Logloss.Public.InexactFloat64(),
		Rank:     entry.Rank.Public,
		Earned:   entry.Earned,
	}
}
