/* store.go
 * Contains the store struct and NewStore function. The store archives the competitions and user earnings records
 * fetched from the Numerai API. The methods are split between competitions.go and user_earnings.go
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no stored record matches a lookup
var ErrNotFound = errors.New("record not found")

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Competitions *mongo.Collection
		UserEarnings *mongo.Collection
	}
	now func() time.Time
}

// NewStore connects to MongoDB and returns a Store for the given database
// Preconditions: Receives context, mongo URI and database name
// Postconditions: Returns pointer to the Store object, or error if the connection could not be set up
func NewStore(ctx context.Context, mongoURI string, dbName string) (*Store, error) {
	if mongoURI == "" || dbName == "" {
		return nil, fmt.Errorf("mongo uri and database name are required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return newStore(client, client.Database(dbName)), nil
}

func newStore(client *mongo.Client, db *mongo.Database) *Store {
	s := &Store{
		Client:   client,
		Database: db,
		now:      time.Now,
	}
	s.Collections.Competitions = db.Collection("competitions")
	s.Collections.UserEarnings = db.Collection("user_earnings")
	return s
}

// Close disconnects the mongo client
func (s *Store) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}
