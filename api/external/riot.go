/* riot.go
 * Contains the client used to look up summoners and their active games on the Riot api
 * Authors: Zachary Bower
 */

package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Name used to probe the api on startup. Any well formed name works since 404 also counts as reachable
const reachabilityProbeName = "Doublelift"

// RiotConfig holds the settings of a RiotClient
type RiotConfig struct {
	APIKey string
	// Region is the platform routing value, e.g. na1
	Region string
	// BaseURL overrides https://{region}.api.riotgames.com
	BaseURL       string
	CallDelay     time.Duration
	Backoff       time.Duration
	HTTPClient    *http.Client
	OnRateLimited func(api string)
}

// RiotClient wraps the summoner and spectator endpoints
type RiotClient struct {
	apiKey    string
	baseURL   string
	requester *Requester
}

// NewRiotClient creates a RiotClient from cfg
func NewRiotClient(cfg RiotConfig) *RiotClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.api.riotgames.com", strings.ToLower(cfg.Region))
	}

	return &RiotClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		requester: NewRequester(RequesterConfig{
			API:           "riot",
			CallDelay:     cfg.CallDelay,
			Backoff:       cfg.Backoff,
			HTTPClient:    cfg.HTTPClient,
			OnRateLimited: cfg.OnRateLimited,
		}),
	}
}

// CheckReachable issues one summoner lookup without retrying
// Preconditions: Receives context
// Postconditions: Returns true if the api answered 200, 404 or 429, false for any other status or a transport error
func (c *RiotClient) CheckReachable(ctx context.Context) bool {
	code, err := c.requester.Probe(ctx, c.summonerRequest(reachabilityProbeName))
	if err != nil {
		log.Error().Str("category", "riot").Err(err).Msg("riot api unreachable")
		return false
	}

	switch code {
	case http.StatusOK, http.StatusNotFound, http.StatusTooManyRequests:
		return true
	default:
		log.Error().Str("category", "riot").Int("status", code).Msg("riot api unreachable")
		return false
	}
}

// ResolveAccountID looks up the summoner ID of an account name
// Preconditions: Receives context and the account name as shown in game
// Postconditions: Returns the summoner ID, an empty string with a nil error if the name does not exist, or an error
func (c *RiotClient) ResolveAccountID(ctx context.Context, name string) (string, error) {
	summoner, found, err := Fetch(ctx, c.requester, c.summonerRequest(name), decodeJSON[Summoner])
	if err != nil {
		return "", fmt.Errorf("error resolving account %q: %w", name, err)
	}
	if !found {
		log.Debug().Str("category", "riot").Str("account", name).Msg("account not found")
		return "", nil
	}
	return summoner.ID, nil
}

// PollActiveMatch fetches the game the account is currently playing
// Preconditions: Receives context and a resolved summoner ID
// Postconditions: Returns the active game, nil with a nil error if the account is not in game, or an error
func (c *RiotClient) PollActiveMatch(ctx context.Context, accountID string) (*ActiveGame, error) {
	newRequest := c.newRequest("/lol/spectator/v4/active-games/by-summoner/" + url.PathEscape(accountID))
	game, found, err := Fetch(ctx, c.requester, newRequest, decodeJSON[ActiveGame])
	if err != nil {
		return nil, fmt.Errorf("error polling active game for %s: %w", accountID, err)
	}
	if !found {
		return nil, nil
	}
	return &game, nil
}

func (c *RiotClient) summonerRequest(name string) func(ctx context.Context) (*http.Request, error) {
	return c.newRequest("/lol/summoner/v4/summoners/by-name/" + url.PathEscape(name))
}

func (c *RiotClient) newRequest(path string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		request.Header.Set("X-Riot-Token", c.apiKey)
		request.Header.Set("Accept", "application/json")
		return request, nil
	}
}

// decodeJSON unmarshals body into a T
func decodeJSON[T any](body []byte) (T, error) {
	var value T
	err := json.Unmarshal(body, &value)
	return value, err
}
