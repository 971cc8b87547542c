/* bot.go
 * Contains the Bot struct and the parsing of chat commands. Requires a discord bot token, and APIPtr both of which
 * are passed in from main.go
 */

package bot

import (
	"fmt"
	"strings"

	"numerai-bot/api/api"

	"github.com/go-andiamo/splitter"
)

type Bot struct {
	BotToken string
	APIPtr   *api.API
}

func NewBot(botToken string, apiPtr *api.API) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if apiPtr == nil {
		return nil, fmt.Errorf("apiPtr is required but none was provided")
	}

	return &Bot{
		BotToken: botToken,
		APIPtr:   apiPtr,
	}, nil
}

// parseCommand splits a message into the command and its arguments
// Preconditions: Receives the message content
// Postconditions: Returns the command (e.g. "$user") and the arguments with their quotes removed, or an error if the
// quotes are unbalanced. Quoted arguments are kept together, e.g. `$user "my model"` has one argument
func parseCommand(content string) (string, []string, error) {
	// splitter keeps "quoted words" as one part, which strings.Fields would break up
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return "", nil, err
	}
	parts, err := spaceSplitter.Split(strings.TrimSpace(content))
	if err != nil {
		return "", nil, err
	}

	var fields []string
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), "\"“”")
		if part != "" {
			fields = append(fields, part)
		}
	}
	if len(fields) == 0 {
		return "", nil, nil
	}
	if len(fields) == 1 {
		return strings.ToLower(fields[0]), nil, nil
	}
	return strings.ToLower(fields[0]), fields[1:], nil
}
