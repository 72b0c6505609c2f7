/* twitch.go
 * Contains the client used to authenticate with Twitch and look up streamers and their viewer counts on the helix api
 * Authors: Zachary Bower
 */

package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultTwitchAuthURL  = "https://id.twitch.tv"
	defaultTwitchHelixURL = "https://api.twitch.tv/helix"

	// Maximum number of login or user_id parameters accepted by one helix call
	twitchBatchSize = 100
)

// ErrNoTwitchToken is returned by helix calls made before LoadToken succeeded
var ErrNoTwitchToken = errors.New("twitch app access token not loaded")

// TwitchConfig holds the settings of a TwitchClient
type TwitchConfig struct {
	ClientID     string
	ClientSecret string
	// AuthURL defaults to https://id.twitch.tv
	AuthURL string
	// HelixURL defaults to https://api.twitch.tv/helix
	HelixURL      string
	Backoff       time.Duration
	HTTPClient    *http.Client
	OnRateLimited func(api string)
}

// TwitchClient holds the app access token used for every helix call
type TwitchClient struct {
	clientID     string
	clientSecret string
	authURL      string
	helixURL     string
	token        string
	requester    *Requester
}

// NewTwitchClient creates a TwitchClient from cfg. LoadToken must be called before any helix call
func NewTwitchClient(cfg TwitchConfig) *TwitchClient {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = defaultTwitchAuthURL
	}
	helixURL := cfg.HelixURL
	if helixURL == "" {
		helixURL = defaultTwitchHelixURL
	}

	return &TwitchClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		authURL:      strings.TrimSuffix(authURL, "/"),
		helixURL:     strings.TrimSuffix(helixURL, "/"),
		requester: NewRequester(RequesterConfig{
			API:           "twitch",
			Backoff:       cfg.Backoff,
			HTTPClient:    cfg.HTTPClient,
			OnRateLimited: cfg.OnRateLimited,
		}),
	}
}

// HasToken reports whether an app access token is loaded
func (c *TwitchClient) HasToken() bool {
	return c.token != ""
}

// LoadToken requests an app access token with the client credentials grant
// Preconditions: Receives context
// Postconditions: Stores the token on the client, or returns an error if the token could not be obtained
func (c *TwitchClient) LoadToken(ctx context.Context) error {
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("grant_type", "client_credentials")

	token, found, err := Fetch(ctx, c.requester, c.postRequest("/oauth2/token", params), decodeJSON[twitchToken])
	if err != nil {
		return fmt.Errorf("error loading twitch token: %w", err)
	}
	if !found || token.AccessToken == "" {
		return errors.New("error loading twitch token: no access token in response")
	}

	c.token = token.AccessToken
	log.Info().Str("category", "twitch").Int64("expires_in", token.ExpiresIn).Msg("twitch token loaded")
	return nil
}

// RevokeToken revokes the app access token. Does nothing if no token is loaded
// Preconditions: Receives context
// Postconditions: Clears the stored token, or returns an error if the revoke call failed
func (c *TwitchClient) RevokeToken(ctx context.Context) error {
	if c.token == "" {
		return nil
	}

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("token", c.token)

	_, _, err := Fetch(ctx, c.requester, c.postRequest("/oauth2/revoke", params), func([]byte) (struct{}, error) {
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("error revoking twitch token: %w", err)
	}

	c.token = ""
	log.Info().Str("category", "twitch").Msg("twitch token revoked")
	return nil
}

// LookupUserIDs resolves Twitch logins to user IDs, 100 logins per call
// Preconditions: Receives context and the logins to look up. A token must be loaded
// Postconditions: Returns a map of lowercased login to user ID. Logins that don't exist are absent from the map
func (c *TwitchClient) LookupUserIDs(ctx context.Context, logins []string) (map[string]string, error) {
	ids := make(map[string]string, len(logins))
	if len(logins) == 0 {
		return ids, nil
	}
	if c.token == "" {
		return nil, ErrNoTwitchToken
	}

	for _, batch := range batches(logins, twitchBatchSize) {
		params := url.Values{}
		for _, login := range batch {
			params.Add("login", strings.ToLower(login))
		}

		users, found, err := Fetch(ctx, c.requester, c.helixRequest("/users", params), decodeJSON[twitchUsers])
		if err != nil {
			return nil, fmt.Errorf("error looking up twitch users: %w", err)
		}
		if !found {
			continue
		}
		for _, user := range users.Data {
			ids[strings.ToLower(user.Login)] = user.ID
		}
	}

	log.Debug().Str("category", "twitch").Int("requested", len(logins)).Int("found", len(ids)).Msg("twitch users resolved")
	return ids, nil
}

// StreamViewers returns the current viewer count of every live stream among userIDs, 100 users per call
// Preconditions: Receives context and Twitch user IDs. A token must be loaded
// Postconditions: Returns a map of user ID to viewer count. Users that are not live are absent from the map
func (c *TwitchClient) StreamViewers(ctx context.Context, userIDs []string) (map[string]int, error) {
	viewers := make(map[string]int, len(userIDs))
	if len(userIDs) == 0 {
		return viewers, nil
	}
	if c.token == "" {
		return nil, ErrNoTwitchToken
	}

	for _, batch := range batches(userIDs, twitchBatchSize) {
		params := url.Values{}
		for _, id := range batch {
			params.Add("user_id", id)
		}

		streams, found, err := Fetch(ctx, c.requester, c.helixRequest("/streams", params), decodeJSON[twitchStreams])
		if err != nil {
			return nil, fmt.Errorf("error fetching twitch streams: %w", err)
		}
		if !found {
			continue
		}
		for _, stream := range streams.Data {
			if stream.Type == "" || stream.Type == "live" {
				viewers[stream.UserID] = stream.ViewerCount
			}
		}
	}
	return viewers, nil
}

func (c *TwitchClient) postRequest(path string, params url.Values) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPost, c.authURL+path+"?"+params.Encode(), nil)
	}
}

func (c *TwitchClient) helixRequest(path string, params url.Values) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.helixURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		request.Header.Set("Client-ID", c.clientID)
		request.Header.Set("Authorization", "Bearer "+c.token)
		return request, nil
	}
}

// batches splits values into consecutive slices of at most size elements
func batches(values []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		out = append(out, values[start:end])
	}
	return out
}
