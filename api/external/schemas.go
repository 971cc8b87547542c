/* schemas.go
 * Contains the expected shapes of the Numerai API responses
 */

package external

import (
	v "numerai-bot/api/validate"
)

var leaderboardEntrySchema = v.Object(map[string]*v.Schema{
	"username":      v.String(),
	"rank":          v.Object(map[string]*v.Schema{"public": v.Integer()}).AllowExtra(),
	"logloss":       v.Object(map[string]*v.Schema{"public": v.Number()}).AllowExtra(),
	"earned":        v.Number().AllowNull(),
	"submission_id": v.String(),
	"earnings": v.Object(map[string]*v.Schema{
		"career": v.Object(map[string]*v.Schema{
			"nmr": v.NumericString(),
			"usd": v.NumericString(),
		}),
	}).AllowExtra(),
})

var competitionSchema = v.Object(map[string]*v.Schema{
	"_id":         v.String(),
	"dataset_id":  v.String(),
	"start_date":  v.Timestamp(),
	"end_date":    v.Timestamp(),
	"updated":     v.Timestamp(),
	"leaderboard": v.Array(leaderboardEntrySchema),
})

// The competitions endpoint is filtered down to the current competition, so never more than one
var leaderboardSchema = v.Array(competitionSchema).AtMost(1)

var submissionLoglossSchema = v.Object(map[string]*v.Schema{"public": v.Number()}).AllowExtra()

// Scores are read from submissions, so there every item must carry a round and public logloss
var scoredSubmissionSchema = v.Object(map[string]*v.Schema{
	"round":   v.Integer(),
	"logloss": submissionLoglossSchema,
}).AllowExtra()

// Followers, rewards and submissions have no fixed item shape
func userSchema(submissions *v.Schema) *v.Schema {
	return v.Object(map[string]*v.Schema{
		"_id":         v.String(),
		"username":    v.String(),
		"created":     v.Timestamp(),
		"followers":   v.Array(v.Any()),
		"rewards":     v.Array(v.Any()),
		"submissions": v.Array(submissions),
		"earnings":    v.Array(v.Number()),
	})
}

var userEarningsSchema = userSchema(v.Any())

var userScoresSchema = userSchema(scoredSubmissionSchema)
