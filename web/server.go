//go:build !test

/* server.go
 * Contains the HTTP server Start function that listens for incoming connections.
 * Excluded from test coverage as it blocks and requires real network binding.
 */

package web

import (
	"fmt"
	"log"
	"net/http"
	"time"
)

// Start initializes and starts the HTTP gateway with the given configuration
func Start(cfg Config) error {
	if cfg.API == nil {
		return fmt.Errorf("web server requires an API")
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg.API),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 65 * time.Second, // longer than the router timeout
	}

	log.Println("HTTP server listening on", cfg.Addr)
	return srv.ListenAndServe()
}
