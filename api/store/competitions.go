/* competitions.go
 * Contains the methods for storing and fetching competition snapshots
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"numerai-bot/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoreCompetition stores a snapshot of a competition. If the competition was stored before, the snapshot is
// replaced and the time it was first fetched is kept
// Preconditions: Receives context and a competition with a non-empty ID
// Postconditions: Returns error if the competition could not be stored
func (s *Store) StoreCompetition(ctx context.Context, competition shared.CompetitionMetadata) error {
	if competition.ID == "" {
		return fmt.Errorf("competition id is required")
	}

	record := NewCompetitionRecord(competition, s.now().UTC())
	filter := bson.M{"_id": competition.ID}

	var existing CompetitionRecord
	err := s.Collections.Competitions.FindOne(ctx, filter).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		_, err = s.Collections.Competitions.InsertOne(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to insert competition %s: %w", competition.ID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check existing competition %s: %w", competition.ID, err)
	}

	record.FirstFetchedAt = existing.FirstFetchedAt
	_, err = s.Collections.Competitions.ReplaceOne(ctx, filter, record)
	if err != nil {
		return fmt.Errorf("failed to update competition %s: %w", competition.ID, err)
	}
	return nil
}

// FetchCompetition fetches the stored snapshot of a competition
// Preconditions: Receives context and competition ID
// Postconditions: Returns the competition, or an error wrapping ErrNotFound if it was never stored
func (s *Store) FetchCompetition(ctx context.Context, id string) (shared.CompetitionMetadata, error) {
	return s.fetchCompetition(ctx, bson.M{"_id": id}, nil)
}

// FetchLatestCompetition fetches the stored competition with the latest end date
// Preconditions: Receives context
// Postconditions: Returns the competition, or an error wrapping ErrNotFound if nothing has been stored
func (s *Store) FetchLatestCompetition(ctx context.Context) (shared.CompetitionMetadata, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "end_date", Value: -1}})
	return s.fetchCompetition(ctx, bson.M{}, opts)
}

func (s *Store) fetchCompetition(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (shared.CompetitionMetadata, error) {
	var record CompetitionRecord
	var err error
	if opts != nil {
		err = s.Collections.Competitions.FindOne(ctx, filter, opts).Decode(&record)
	} else {
		err = s.Collections.Competitions.FindOne(ctx, filter).Decode(&record)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return shared.CompetitionMetadata{}, fmt.Errorf("competition: %w", ErrNotFound)
	}
	if err != nil {
		return shared.CompetitionMetadata{}, fmt.Errorf("failed to fetch competition from database: %w", err)
	}

	return record.ToShared()
}
