/* main.go
 * The "main" method for running the bot and the web gateway
 * Usage: go run . -bot="true" -serve="true" -sample="false" -user="<username>"
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"numerai-bot/api/api"
	"numerai-bot/api/config"
	"numerai-bot/bot"
	"numerai-bot/web"
)

func main() {
	//Flags
	botPtr := flag.String("bot", "false", "Run the Discord bot: takes true or false as argument")
	servePtr := flag.String("serve", "false", "Run the HTTP gateway: takes true or false as argument")
	samplePtr := flag.String("sample", "true", "Call every API operation once and print the results: takes true or false as argument")
	userPtr := flag.String("user", "", "Username used by the sample run, defaults to the leaderboard leader")

	flag.Parse()

	runBot, err := convertStrToBool(*botPtr)
	if err != nil {
		log.Fatal("Invalid \"bot\" flag. Should be true or false")
	}
	runServer, err := convertStrToBool(*servePtr)
	if err != nil {
		log.Fatal("Invalid \"serve\" flag. Should be true or false")
	}
	runSample, err := convertStrToBool(*samplePtr)
	if err != nil {
		log.Fatal("Invalid \"sample\" flag. Should be true or false")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()
	a, err := api.NewAPI(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize API: %v", err)
	}
	defer func() {
		if err := a.Close(context.TODO()); err != nil {
			log.Printf("failed to close store: %v", err)
		}
	}()

	// API Testing
	if runSample {
		ClientTesting(ctx, os.Stdout, a, *userPtr)
	}

	switch {
	case runBot && runServer:
		go func() {
			if err := web.Start(web.Config{Addr: cfg.Server.Addr, API: a}); err != nil && err != http.ErrServerClosed {
				log.Printf("HTTP server stopped: %v", err)
			}
		}()
		startBot(cfg.Discord.Token, a)
	case runBot:
		startBot(cfg.Discord.Token, a)
	case runServer:
		if err := web.Start(web.Config{Addr: cfg.Server.Addr, API: a}); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}
}

func startBot(token string, a *api.API) {
	b, err := bot.NewBot(token, a)
	if err != nil {
		log.Printf("failed to initialize bot: %v", err)
		return
	}
	if err := b.Run(); err != nil {
		log.Printf("bot stopped: %v", err)
	}
}

// ClientTesting provides a sample of how the api functions work and how they can be incorporated into the bot.
// Every operation is called once and its status and result are written to w
// Preconditions: Receives context, writer, API and an optional username
// Postconditions: Results are written to w. Stops early if the leaderboard cannot be read
func ClientTesting(ctx context.Context, w io.Writer, a *api.API, username string) {
	fmt.Fprintln(w, "Getting current competition")
	current, status, err := a.CurrentCompetition(ctx)
	fmt.Fprintf(w, "status %d: %+v %v\n", status, current, errString(err))

	fmt.Fprintln(w, "Getting leaderboard")
	competition, status, err := a.Leaderboard(ctx, 5)
	fmt.Fprintf(w, "status %d %v\n", status, errString(err))
	if err != nil || status != http.StatusOK {
		return
	}
	if competition == nil || len(competition.Leaderboard) == 0 {
		fmt.Fprintln(w, "Leaderboard is empty")
		if username == "" {
			return
		}
	} else {
		for _, entry := range competition.Leaderboard {
			fmt.Fprintf(w, "%d. %s %s\n", entry.Rank.Public, entry.Username, entry.Logloss.Public.String())
		}
		if username == "" {
			username = competition.Leaderboard[0].Username
		}
	}

	fmt.Fprintf(w, "Getting user %s\n", username)
	lookup, status, err := a.LookupUser(ctx, username)
	if lookup.Found() {
		fmt.Fprintf(w, "status %d: %+v\n", status, *lookup.Summary)
	} else {
		fmt.Fprintf(w, "status %d: not found %v\n", status, errString(err))
	}

	fmt.Fprintf(w, "Getting earnings for %s\n", username)
	earnings, status, err := a.EarningsPerRound(ctx, username)
	fmt.Fprintf(w, "status %d: %v %v\n", status, earnings, errString(err))

	fmt.Fprintf(w, "Getting scores for %s\n", username)
	scores, status, err := a.Scores(ctx, username)
	fmt.Fprintf(w, "status %d: %v %v\n", status, scores, errString(err))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
