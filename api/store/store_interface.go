/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import (
	"context"

	"numerai-bot/api/shared"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	StoreCompetition(ctx context.Context, competition shared.CompetitionMetadata) error
	FetchCompetition(ctx context.Context, id string) (shared.CompetitionMetadata, error)
	FetchLatestCompetition(ctx context.Context) (shared.CompetitionMetadata, error)
	StoreUserEarnings(ctx context.Context, record shared.UserEarningsRecord) error
	FetchUserEarnings(ctx context.Context, username string) (shared.UserEarningsRecord, error)
	Close(ctx context.Context) error
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)
