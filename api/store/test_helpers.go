/* test_helpers.go
 * Contains test helper functions and sample data for store package tests and the packages that use the store
 */

package store

import (
	"context"
	"encoding/json"
	"time"

	"numerai-bot/api/shared"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewStoreWithCollection creates a Store whose collections are all backed by coll. Used with mtest mock clients,
// where every collection points at the same mocked namespace
func NewStoreWithCollection(client *mongo.Client, db *mongo.Database, coll *mongo.Collection, now func() time.Time) *Store {
	s := &Store{
		Client:   client,
		Database: db,
		now:      now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.Collections.Competitions = coll
	s.Collections.UserEarnings = coll
	return s
}

// CreateTestStore creates a Store connected to a test database.
// Returns the store and a cleanup function that drops the database.
func CreateTestStore(ctx context.Context, mongoURI string) (*Store, func(), error) {
	s, err := NewStore(ctx, mongoURI, "test_numerai")
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if s.Client != nil {
			s.Database.Drop(context.TODO())
			s.Client.Disconnect(context.TODO())
		}
	}

	return s, cleanup, nil
}

// CreateSampleCompetition creates a competition with two leaderboard entries for testing.
func CreateSampleCompetition() shared.CompetitionMetadata {
	return shared.CompetitionMetadata{
		ID:          "c1",
		DatasetID:   "d1",
		StartDate:   shared.Timestamp{Time: time.Date(2017, 4, 1, 0, 0, 0, 0, time.UTC)},
		EndDate:     shared.Timestamp{Time: time.Date(2017, 4, 8, 0, 0, 0, 0, time.UTC)},
		Updated:     shared.Timestamp{Time: time.Date(2017, 4, 7, 12, 0, 0, 0, time.UTC)},
		Leaderboard: []shared.LeaderboardEntry{
			{
				Username:     "alice",
				Rank:         shared.Rank{Public: 1},
				Logloss:      shared.Logloss{Public: decimal.RequireFromString("0.6851")},
				Earned:       decimal.RequireFromString("12.5"),
				Earnings:     shared.Earnings{Career: shared.CareerEarnings{NMR: "40.25", USD: "310.00"}},
				SubmissionID: "s1",
			},
			{
				Username:     "bob_the_modeler",
				Rank:         shared.Rank{Public: 2},
				Logloss:      shared.Logloss{Public: decimal.RequireFromString("0.6902")},
				Earned:       decimal.Zero,
				Earnings:     shared.Earnings{Career: shared.CareerEarnings{NMR: "0", USD: "5.5"}},
				SubmissionID: "s2",
			},
		},
	}
}

// CreateSampleUserEarnings creates a user document for testing.
func CreateSampleUserEarnings() shared.UserEarningsRecord {
	return shared.UserEarningsRecord{
		ID:        "u1",
		Username:  "alice",
		Created:   shared.Timestamp{Time: time.Date(2016, 12, 1, 0, 0, 0, 0, time.UTC)},
		Followers: []json.RawMessage{json.RawMessage(`"bob_the_modeler"`)},
		Rewards: []json.RawMessage{
			json.RawMessage(`{"round":50,"amount":"10.00"}`),
			json.RawMessage(`{"round":51,"amount":"15.5"}`),
		},
		Submissions: []json.RawMessage{
			json.RawMessage(`{"round":51,"logloss":{"public":"0.6899"}}`),
			json.RawMessage(`{"round":50,"logloss":{"public":"0.6912"}}`),
		},
		Earnings: []decimal.Decimal{
			decimal.RequireFromString("10.00"),
			decimal.RequireFromString("15.5"),
			decimal.Zero,
		},
	}
}
