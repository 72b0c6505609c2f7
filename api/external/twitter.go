/* twitter.go
 * Contains the client used to post status updates to Twitter
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

	"github.com/rs/zerolog/log"
)

const (
	defaultTwitterBaseURL = "https://api.twitter.com"
	statusUpdatePath      = "/1.1/statuses/update.json"
)

// TwitterConfig holds the settings of a TwitterClient
type TwitterConfig struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	// BaseURL defaults to https://api.twitter.com
	BaseURL       string
	Backoff       time.Duration
	HTTPClient    *http.Client
	OnRateLimited func(api string)
	// Signer overrides the signer built from the credentials above
	Signer *OAuth1Signer
}

// TwitterClient posts OAuth1 signed status updates
type TwitterClient struct {
	baseURL   string
	signer    *OAuth1Signer
	requester *Requester
}

// NewTwitterClient creates a TwitterClient from cfg
func NewTwitterClient(cfg TwitterConfig) *TwitterClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultTwitterBaseURL
	}

	signer := cfg.Signer
	if signer == nil {
		signer = &OAuth1Signer{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			Token:          cfg.AccessToken,
			TokenSecret:    cfg.AccessTokenSecret,
		}
	}

	return &TwitterClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		signer:  signer,
		requester: NewRequester(RequesterConfig{
			API:           "twitter",
			Backoff:       cfg.Backoff,
			HTTPClient:    cfg.HTTPClient,
			OnRateLimited: cfg.OnRateLimited,
		}),
	}
}

// Tweet posts status as a new tweet
// Preconditions: Receives context and the status text
// Postconditions: Returns the receipt of the created tweet, or an error if the tweet was not created
func (c *TwitterClient) Tweet(ctx context.Context, status string) (*TweetReceipt, error) {
	params := url.Values{}
	params.Set("status", status)
	endpoint := c.baseURL + statusUpdatePath + "?" + strings.ReplaceAll(params.Encode(), "+", "%20")

	// Built again on every retry so each attempt gets a fresh nonce and timestamp
	newRequest := func(ctx context.Context) (*http.Request, error) {
		header, err := c.signer.AuthorizationHeader(http.MethodPost, endpoint, nil)
		if err != nil {
			return nil, err
		}
		request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
		if err != nil {
			return nil, err
		}
		request.Header.Set("Authorization", header)
		return request, nil
	}

	receipt, found, err := Fetch(ctx, c.requester, newRequest, decodeJSON[TweetReceipt])
	if err != nil {
		return nil, fmt.Errorf("error posting tweet: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("error posting tweet: status endpoint returned not found")
	}

	log.Info().Str("category", "twitter").Str("tweet_id", receipt.ID).Msg("tweet posted")
	return &receipt, nil
}
