/* server.go
 * Contains the HTTP server Start function that listens for incoming connections until its context is done.
 * Author: Zachary Bower
 */

package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// NewHandler builds the routes of the server
func NewHandler(cfg Config) http.Handler {
	s := &Server{
		api: cfg.API,
	}

	mux := http.NewServeMux()
	// bind handler methods that have access to s.api
	mux.Handle("/metrics", cfg.API.Metrics.Handler())
	mux.HandleFunc("/healthz", s.HealthzHandler)
	mux.HandleFunc("/tweets", s.TweetsHandler)
	mux.HandleFunc("/players", s.PlayersHandler)
	return mux
}

// Start initializes and starts the HTTP server with the given configuration
// Preconditions: Receives context, cancelling it shuts the server down
// Postconditions: Returns nil after a clean shutdown, or the error that stopped the server
func Start(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewHandler(cfg),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Str("category", "web").Err(err).Msg("error shutting down http server")
		}
	}()

	log.Info().Str("category", "web").Str("addr", cfg.Addr).Msg("HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
