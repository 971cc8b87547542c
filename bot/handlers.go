/* handlers.go
 * Contains testable handler methods that accept DiscordSession interface
 */

package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"numerai-bot/api/external"
	"numerai-bot/api/validate"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 50
)

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Numerai Bot v1.0\n")
	res.WriteString("`$competition`: shows the id of the running competition and its dataset\n")
	res.WriteString("`$leaderboard [n]`: shows the top n users of the running competition (default 10, at most 50)\n")
	res.WriteString("`$user name`: shows a user's rank, logloss and earnings on the current leaderboard\n")
	res.WriteString("`$earnings name`: shows a user's earnings for each round and in total\n")
	res.WriteString("`$scores name`: shows the public logloss of each of a user's submissions, oldest round first\n")
	res.WriteString("Names that contain spaces need to be encased in \" (e.g. \"my model\")\n")
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// competitionHandler handles the $competition command with a DiscordSession interface
func (b *Bot) competitionHandler(session DiscordSession, message *discordgo.MessageCreate) {
	current, status, err := b.APIPtr.CurrentCompetition(context.Background())
	if err != nil || status != http.StatusOK {
		session.ChannelMessageSend(message.ChannelID, upstreamFailureMessage("the current competition", status, err))
		return
	}
	if current == nil {
		session.ChannelMessageSend(message.ChannelID, "No competition is currently running")
		return
	}
	session.ChannelMessageSend(message.ChannelID,
		fmt.Sprintf("Current competition: `%s` (dataset `%s`)", current.CompetitionID, current.DatasetID))
}

// leaderboardHandler handles the $leaderboard command with a DiscordSession interface
func (b *Bot) leaderboardHandler(session DiscordSession, message *discordgo.MessageCreate, args []string) {
	size := defaultLeaderboardSize
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			session.ChannelMessageSend(message.ChannelID, "Usage: `$leaderboard [n]` where n is a positive number")
			return
		}
		size = min(n, maxLeaderboardSize)
	}

	competition, status, err := b.APIPtr.Leaderboard(context.Background(), size)
	if err != nil || status != http.StatusOK {
		session.ChannelMessageSend(message.ChannelID, upstreamFailureMessage("the leaderboard", status, err))
		return
	}
	if competition == nil || len(competition.Leaderboard) == 0 {
		session.ChannelMessageSend(message.ChannelID, "The leaderboard is empty, the competition has not started yet")
		return
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("Leaderboard for competition `%s`:\n", competition.ID))
	for _, entry := range competition.Leaderboard {
		res.WriteString(fmt.Sprintf("%d. %s - logloss %s, earned %s\n",
			entry.Rank.Public, entry.Username, entry.Logloss.Public.StringFixed(5), entry.Earned.String()))
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// userHandler handles the $user command with a DiscordSession interface
func (b *Bot) userHandler(session DiscordSession, message *discordgo.MessageCreate, args []string) {
	username, ok := requireUsername(session, message, "$user", args)
	if !ok {
		return
	}

	lookup, status, err := b.APIPtr.LookupUser(context.Background(), username)
	if err != nil || status != http.StatusOK {
		session.ChannelMessageSend(message.ChannelID, upstreamFailureMessage(username, status, err))
		return
	}
	if !lookup.Found() {
		res := fmt.Sprintf("%s is not on the current leaderboard", username)
		if len(lookup.Suggestions) > 0 {
			res += fmt.Sprintf(". Did you mean: %s?", strings.Join(lookup.Suggestions, ", "))
		}
		session.ChannelMessageSend(message.ChannelID, res)
		return
	}

	summary := lookup.Summary
	session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%s: rank %d, logloss %.5f, earned %s",
		summary.Username, summary.Rank, summary.Logloss, summary.Earned.String()))
}

// earningsHandler handles the $earnings command with a DiscordSession interface
func (b *Bot) earningsHandler(session DiscordSession, message *discordgo.MessageCreate, args []string) {
	username, ok := requireUsername(session, message, "$earnings", args)
	if !ok {
		return
	}

	record, status, err := b.APIPtr.UserEarnings(context.Background(), username)
	if err != nil || status != http.StatusOK {
		session.ChannelMessageSend(message.ChannelID, upstreamFailureMessage(username, status, err))
		return
	}
	if len(record.Earnings) == 0 {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%s has no earnings yet", record.Username))
		return
	}

	amounts := make([]string, len(record.Earnings))
	for i, amount := range record.Earnings {
		amounts[i] = amount.String()
	}
	total := decimal.Sum(decimal.Zero, record.Earnings...)
	session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("Earnings for %s over %d rounds: %s (total %s)",
		record.Username, len(record.Earnings), strings.Join(amounts, ", "), total.String()))
}

// scoresHandler handles the $scores command with a DiscordSession interface
func (b *Bot) scoresHandler(session DiscordSession, message *discordgo.MessageCreate, args []string) {
	username, ok := requireUsername(session, message, "$scores", args)
	if !ok {
		return
	}

	scores, status, err := b.APIPtr.Scores(context.Background(), username)
	if err != nil || status != http.StatusOK {
		session.ChannelMessageSend(message.ChannelID, upstreamFailureMessage(username, status, err))
		return
	}
	if len(scores) == 0 {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%s has no scored submissions", username))
		return
	}

	formatted := make([]string, len(scores))
	for i, score := range scores {
		formatted[i] = strconv.FormatFloat(score, 'f', 5, 64)
	}
	session.ChannelMessageSend(message.ChannelID,
		fmt.Sprintf("Scores for %s: %s", username, strings.Join(formatted, ", ")))
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author.ID == botUserID {
		return
	}
	if !strings.HasPrefix(message.Content, "$") {
		return
	}

	command, args, err := parseCommand(message.Content)
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, "Could not read that command, check that every \" is closed")
		return
	}

	switch command {
	case "$help":
		b.helpMessageHandler(session, message)

	case "$competition":
		b.competitionHandler(session, message)

	case "$leaderboard":
		b.leaderboardHandler(session, message, args)

	case "$user":
		b.userHandler(session, message, args)

	case "$earnings":
		b.earningsHandler(session, message, args)

	case "$scores":
		b.scoresHandler(session, message, args)
	}
}

func requireUsername(session DiscordSession, message *discordgo.MessageCreate, command string, args []string) (string, bool) {
	if len(args) != 1 {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("Usage: `%s name`", command))
		return "", false
	}
	return args[0], true
}

// upstreamFailureMessage turns a failed read into the message shown in the channel
// Preconditions: Receives what was being read, and the status and error returned by the read
// Postconditions: Returns the message. Validation errors and unexpected statuses are logged
func upstreamFailureMessage(subject string, status int, err error) string {
	var verr *validate.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Printf("unexpected response reading %s: %v", subject, verr)
		return "The Numerai API returned an unexpected response, try again later"
	case errors.Is(err, external.ErrUsernameRequired):
		return "A username is required"
	case err != nil:
		log.Printf("error reading %s: %v", subject, err)
		return fmt.Sprintf("An error occurred getting %s", subject)
	case status == external.StatusTransportError:
		return "Could not reach the Numerai API, try again later"
	case status == http.StatusNotFound:
		return fmt.Sprintf("%s was not found on Numerai", subject)
	default:
		log.Printf("status %d reading %s", status, subject)
		return fmt.Sprintf("The Numerai API returned status %d", status)
	}
}
