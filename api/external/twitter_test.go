/* twitter_test.go
 * Contains unit tests for the OAuth1 signer and the Twitter client
 * Authors: Zachary Bower
 */

package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Credentials and expected signature from the Twitter "Creating a signature" documentation
func documentedSigner() *OAuth1Signer {
	return &OAuth1Signer{
		ConsumerKey:    "xvz1evFS4wEEPTGEFPHBog",
		ConsumerSecret: "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		Token:          "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		TokenSecret:    "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
		Nonce:          func() string { return "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg" },
		Now:            func() time.Time { return time.Unix(1318622958, 0) },
	}
}

const documentedSignature = "hCtSmYh+iHYCEqBWrE7C7hYmtUk="

// region OAuth1Signer tests

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "Ladies%20%2B%20Gentlemen", percentEncode("Ladies + Gentlemen"))
	assert.Equal(t, "An%20encoded%20string%21", percentEncode("An encoded string!"))
	assert.Equal(t, "Dogs%2C%20Cats%20%26%20Mice", percentEncode("Dogs, Cats & Mice"))
	assert.Equal(t, "-._~", percentEncode("-._~"))
}

func TestSignature_DocumentedVector(t *testing.T) {
	s := documentedSigner()
	params := url.Values{
		"status":                 {"Hello Ladies + Gentlemen, a signed OAuth request!"},
		"include_entities":       {"true"},
		"oauth_consumer_key":     {s.ConsumerKey},
		"oauth_nonce":            {"kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg"},
		"oauth_signature_method": {"HMAC-SHA1"},
		"oauth_timestamp":        {"1318622958"},
		"oauth_token":            {s.Token},
		"oauth_version":          {"1.0"},
	}

	signature := s.Signature("post", "https://api.twitter.com/1.1/statuses/update.json", params)

	assert.Equal(t, documentedSignature, signature)
}

func TestAuthorizationHeader_DocumentedVector(t *testing.T) {
	s := documentedSigner()
	body := url.Values{"status": {"Hello Ladies + Gentlemen, a signed OAuth request!"}}

	header, err := s.AuthorizationHeader(http.MethodPost, "https://api.twitter.com/1.1/statuses/update.json?include_entities=true", body)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(header, "OAuth "))
	assert.Contains(t, header, `oauth_signature="`+percentEncode(documentedSignature)+`"`)
	assert.Contains(t, header, `oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog"`)
	assert.Contains(t, header, `oauth_timestamp="1318622958"`)
	assert.NotContains(t, header, "status=")
}

func TestAuthorizationHeader_FreshNonce(t *testing.T) {
	s := &OAuth1Signer{ConsumerKey: "key", ConsumerSecret: "secret", Token: "token", TokenSecret: "token-secret"}

	first, err := s.AuthorizationHeader(http.MethodPost, "https://api.twitter.com/1.1/statuses/update.json", nil)
	require.NoError(t, err)
	second, err := s.AuthorizationHeader(http.MethodPost, "https://api.twitter.com/1.1/statuses/update.json", nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

// endregion

// region Tweet tests

func TestTweet_Success(t *testing.T) {
	status := "Doublelift is live playing with Bjergsen (1634) Watch here: https://www.twitch.tv/doublelift"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/1.1/statuses/update.json", r.URL.Path)
		assert.Equal(t, status, r.URL.Query().Get("status"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "))
		assert.Contains(t, r.Header.Get("Authorization"), "oauth_signature=")
		w.Write([]byte(`{"id_str": "1050118621198921728", "text": "posted", "created_at": "Wed Oct 10 20:19:24 +0000 2018"}`))
	}))
	defer server.Close()

	c := NewTwitterClient(TwitterConfig{ConsumerKey: "key", ConsumerSecret: "secret", AccessToken: "token", AccessTokenSecret: "token-secret", BaseURL: server.URL})
	receipt, err := c.Tweet(context.Background(), status)

	require.NoError(t, err)
	assert.Equal(t, "1050118621198921728", receipt.ID)
	assert.Equal(t, "posted", receipt.Text)
}

func TestTweet_RetriesRateLimitWithNewSignature(t *testing.T) {
	var calls atomic.Int32
	var headers []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"id_str": "1"}`))
	}))
	defer server.Close()

	c := NewTwitterClient(TwitterConfig{BaseURL: server.URL, Backoff: time.Millisecond})
	receipt, err := c.Tweet(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, "1", receipt.ID)
	require.Len(t, headers, 2)
	assert.NotEqual(t, headers[0], headers[1])
}

func TestTweet_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewTwitterClient(TwitterConfig{BaseURL: server.URL})
	receipt, err := c.Tweet(context.Background(), "duplicate status")

	assert.Error(t, err)
	assert.True(t, IsStatusError(err))
	assert.Nil(t, receipt)
}

// endregion
