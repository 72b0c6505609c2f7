/* handlers.go
 * Contains the HTTP handlers used to inspect the bot while it runs
 * Authors: Zachary Bower
 */

package web

import (
	"net/http"
	"strconv"

	"lolpro-bot/api/store"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	defaultTweetsLimit = 20
	maxTweetsLimit     = 200
)

// HealthzHandler reports whether setup has finished and how many players are tracked
// Preconditions: HTTP server has been started, receives HTTP ResponseWriter and Http Request
// Postconditions: Writes 200 once the roster is loaded, 503 before that
func (s *Server) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	l := s.api.League()
	if l == nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Players: len(l.Players())})
}

// TweetsHandler lists the most recent announcements, newest first. ?limit= caps the number returned
func (s *Server) TweetsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	limit := defaultTweetsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxTweetsLimit)
	}

	records, err := s.api.Tweets(r.Context(), limit)
	if err != nil {
		log.Error().Str("category", "web").Err(err).Msg("error listing tweets")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "error listing tweets"})
		return
	}
	if records == nil {
		records = []store.TweetRecord{}
	}
	writeJSON(w, http.StatusOK, tweetsResponse{Tweets: records})
}

// PlayersHandler searches tracked players with ?q=. Without a query every player is listed
func (s *Server) PlayersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	l := s.api.League()
	if l == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "roster not loaded yet"})
		return
	}

	players := []playerResponse{}
	for _, player := range l.Search(r.URL.Query().Get("q")) {
		accounts := make([]string, 0, len(player.Accounts))
		for _, account := range player.Accounts {
			accounts = append(accounts, account.Name)
		}
		players = append(players, playerResponse{
			Name:          player.Name,
			Role:          string(player.Role),
			Team:          player.Team,
			TwitterHandle: player.TwitterHandle,
			TwitchChannel: player.TwitchChannel,
			Accounts:      accounts,
		})
	}
	writeJSON(w, http.StatusOK, players)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Str("category", "web").Err(err).Msg("error writing response")
	}
}
