/* oauth1.go
 * Contains the OAuth 1.0a HMAC-SHA1 request signer used for the Twitter status update endpoint
 * Authors: Zachary Bower
 */

package external

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OAuth1Signer builds the Authorization header of a user context OAuth 1.0a request
type OAuth1Signer struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string

	// Nonce and Now default to a random hex string and time.Now. Tests replace them to get a fixed signature
	Nonce func() string
	Now   func() time.Time
}

// AuthorizationHeader signs a request and returns the value of its Authorization header
// Preconditions: Receives the HTTP method, the request URL with or without a query string, and any form body parameters
// Postconditions: Returns the OAuth header containing every oauth_ parameter and the signature
func (s *OAuth1Signer) AuthorizationHeader(method string, rawURL string, body url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	oauthParams := map[string]string{
		"oauth_consumer_key":     s.ConsumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_token":            s.Token,
		"oauth_version":          "1.0",
	}

	// Query, body and oauth parameters are all part of the signature
	params := url.Values{}
	for key, values := range u.Query() {
		params[key] = append(params[key], values...)
	}
	for key, values := range body {
		params[key] = append(params[key], values...)
	}
	for key, value := range oauthParams {
		params.Set(key, value)
	}

	baseURL := *u
	baseURL.RawQuery = ""
	baseURL.Fragment = ""
	oauthParams["oauth_signature"] = s.Signature(method, baseURL.String(), params)

	keys := make([]string, 0, len(oauthParams))
	for key := range oauthParams {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, percentEncode(key)+`="`+percentEncode(oauthParams[key])+`"`)
	}
	return "OAuth " + strings.Join(parts, ", "), nil
}

// Signature computes the base64 HMAC-SHA1 signature of a request
// Preconditions: Receives the HTTP method, the URL without query string and every request parameter including oauth_ ones
// Postconditions: Returns the signature, not percent encoded
func (s *OAuth1Signer) Signature(method string, baseURL string, params url.Values) string {
	base := strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(parameterString(params))
	key := percentEncode(s.ConsumerSecret) + "&" + percentEncode(s.TokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// parameterString encodes every key and value, sorts by key then value and joins them
func parameterString(params url.Values) string {
	type pair struct{ key, value string }
	pairs := make([]pair, 0, len(params))
	for key, values := range params {
		for _, value := range values {
			pairs = append(pairs, pair{percentEncode(key), percentEncode(value)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		encoded[i] = p.key + "=" + p.value
	}
	return strings.Join(encoded, "&")
}

// percentEncode applies RFC 3986 encoding. QueryEscape only differs by writing spaces as +
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (s *OAuth1Signer) nonce() string {
	if s.Nonce != nil {
		return s.Nonce()
	}
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (s *OAuth1Signer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
