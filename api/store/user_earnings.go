/* user_earnings.go
 * Contains the methods for storing and fetching the latest user earnings document for a username
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

// StoreUserEarnings stores the user document, replacing any earlier one for the same username
// Preconditions: Receives context and a user document with a non-empty username
// Postconditions: Returns error if the document could not be stored
func (s *Store) StoreUserEarnings(ctx context.Context, record shared.UserEarningsRecord) error {
	if record.Username == "" {
		return fmt.Errorf("username is required")
	}

	doc := NewUserEarningsRecord(record, s.now().UTC())
	_, err := s.Collections.UserEarnings.ReplaceOne(
		ctx,
		bson.M{"_id": record.Username},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store earnings for %s: %w", record.Username, err)
	}
	return nil
}

// FetchUserEarnings fetches the stored user document for a username
// Preconditions: Receives context and username
// Postconditions: Returns the document, or an error wrapping ErrNotFound if it was never stored
func (s *Store) FetchUserEarnings(ctx context.Context, username string) (shared.UserEarningsRecord, error) {
	var doc UserEarningsRecord
	err := s.Collections.UserEarnings.FindOne(ctx, bson.M{"_id": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return shared.UserEarningsRecord{}, fmt.Errorf("earnings for %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return shared.UserEarningsRecord{}, fmt.Errorf("failed to fetch earnings from database: %w", err)
	}

	return doc.ToShared()
}
