/* models.go
 * Contains the bson documents stored in mongo and the conversions to and from the shared models.
 * Decimal amounts are stored as strings so no precision is lost
 */

package store

import (
	"encoding/json"
	"fmt"
	"time"

	"numerai-bot/api/shared"

	"github.com/shopspring/decimal"
)

// CompetitionRecord is a snapshot of one competition, stored in the competitions collection
type CompetitionRecord struct {
	ID             string                   `bson:"_id"`
	DatasetID      string                   `bson:"dataset_id"`
	StartDate      time.Time                `bson:"start_date"`
	EndDate        time.Time                `bson:"end_date"`
	Updated        time.Time                `bson:"updated"`
	Leaderboard    []LeaderboardEntryRecord `bson:"leaderboard"`
	FirstFetchedAt time.Time                `bson:"first_fetched_at"`
	FetchedAt      time.Time                `bson:"fetched_at"`
}

type LeaderboardEntryRecord struct {
	Username     string `bson:"username"`
	Rank         int    `bson:"rank"`
	Logloss      string `bson:"logloss"`
	Earned       string `bson:"earned"`
	CareerNMR    string `bson:"career_nmr"`
	CareerUSD    string `bson:"career_usd"`
	SubmissionID string `bson:"submission_id"`
}

// UserEarningsRecord is the latest user document for a username, stored in the user_earnings collection.
// Followers, rewards and submissions hold the JSON text of each item
type UserEarningsRecord struct {
	Username    string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Created     time.Time `bson:"created"`
	Followers   []string  `bson:"followers"`
	Rewards     []string  `bson:"rewards"`
	Submissions []string  `bson:"submissions"`
	Earnings    []string  `bson:"earnings"`
	FetchedAt   time.Time `bson:"fetched_at"`
}

// NewCompetitionRecord converts a competition returned by the API into its stored form
func NewCompetitionRecord(c shared.CompetitionMetadata, fetchedAt time.Time) CompetitionRecord {
	entries := make([]LeaderboardEntryRecord, len(c.Leaderboard))
	for i, e := range c.Leaderboard {
		entries[i] = LeaderboardEntryRecord{
			Username:     e.Username,
			Rank:         e.Rank.Public,
			Logloss:      e.Logloss.Public.String(),
			Earned:       e.Earned.String(),
			CareerNMR:    e.Earnings.Career.NMR,
			CareerUSD:    e.Earnings.Career.USD,
			SubmissionID: e.SubmissionID,
		}
	}

	return CompetitionRecord{
		ID:             c.ID,
		DatasetID:      c.DatasetID,
		StartDate:      c.StartDate.Time,
		EndDate:        c.EndDate.Time,
		Updated:        c.Updated.Time,
		Leaderboard:    entries,
		FirstFetchedAt: fetchedAt,
		FetchedAt:      fetchedAt,
	}
}

// ToShared converts the stored competition back into the shared model
// Postconditions: Returns error if a stored amount is not a valid decimal
func (r CompetitionRecord) ToShared() (shared.CompetitionMetadata, error) {
	entries := make([]shared.LeaderboardEntry, len(r.Leaderboard))
	for i, e := range r.Leaderboard {
		logloss, err := decimal.NewFromString(e.Logloss)
		if err != nil {
			return shared.CompetitionMetadata{}, fmt.Errorf("invalid logloss for %s: %w", e.Username, err)
		}
		earned, err := decimal.NewFromString(e.Earned)
		if err != nil {
			return shared.CompetitionMetadata{}, fmt.Errorf("invalid earned amount for %s: %w", e.Username, err)
		}
		entries[i] = shared.LeaderboardEntry{
			Username:     e.Username,
			Rank:         shared.Rank{Public: e.Rank},
			Logloss:      shared.Logloss{Public: logloss},
			Earned:       earned,
			Earnings:     shared.Earnings{Career: shared.CareerEarnings{NMR: e.CareerNMR, USD: e.CareerUSD}},
			SubmissionID: e.SubmissionID,
		}
	}

	return shared.CompetitionMetadata{
		ID:          r.ID,
		DatasetID:   r.DatasetID,
		StartDate:   shared.Timestamp{Time: r.StartDate.UTC()},
		EndDate:     shared.Timestamp{Time: r.EndDate.UTC()},
		Updated:     shared.Timestamp{Time: r.Updated.UTC()},
		Leaderboard: entries,
	}, nil
}

// NewUserEarningsRecord converts a user document returned by the API into its stored form
func NewUserEarningsRecord(u shared.UserEarningsRecord, fetchedAt time.Time) UserEarningsRecord {
	earnings := make([]string, len(u.Earnings))
	for i, e := range u.Earnings {
		earnings[i] = e.String()
	}

	return UserEarningsRecord{
		Username:    u.Username,
		UserID:      u.ID,
		Created:     u.Created.Time,
		Followers:   itemStrings(u.Followers),
		Rewards:     itemStrings(u.Rewards),
		Submissions: itemStrings(u.Submissions),
		Earnings:    earnings,
		FetchedAt:   fetchedAt,
	}
}

// ToShared converts the stored user document back into the shared model
// Postconditions: Returns error if a stored item is not valid JSON or an amount is not a valid decimal
func (r UserEarningsRecord) ToShared() (shared.UserEarningsRecord, error) {
	followers, err := itemMessages("followers", r.Followers)
	if err != nil {
		return shared.UserEarningsRecord{}, err
	}
	rewards, err := itemMessages("rewards", r.Rewards)
	if err != nil {
		return shared.UserEarningsRecord{}, err
	}
	submissions, err := itemMessages("submissions", r.Submissions)
	if err != nil {
		return shared.UserEarningsRecord{}, err
	}
	earnings := make([]decimal.Decimal, len(r.Earnings))
	for i, e := range r.Earnings {
		amount, err := decimal.NewFromString(e)
		if err != nil {
			return shared.UserEarningsRecord{}, fmt.Errorf("invalid earnings at index %d: %w", i, err)
		}
		earnings[i] = amount
	}

	return shared.UserEarningsRecord{
		ID:          r.UserID,
		Username:    r.Username,
		Created:     shared.Timestamp{Time: r.Created.UTC()},
		Followers:   followers,
		Rewards:     rewards,
		Submissions: submissions,
		Earnings:    earnings,
	}, nil
}

func itemStrings(items []json.RawMessage) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = string(item)
	}
	return out
}

func itemMessages(field string, items []string) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(items))
	for i, item := range items {
		if !json.Valid([]byte(item)) {
			return nil, fmt.Errorf("invalid %s item at index %d", field, i)
		}
		out[i] = json.RawMessage(item)
	}
	return out, nil
}
