/* requester.go
 * Contains the request/retry policy shared by every external API client. Each HTTP status code maps to one of
 * four outcomes: success, empty, retry after the rate limit backoff, or fatal. Clients only provide how to build a
 * request and how to decode a successful body
 * Authors: Zachary Bower
 */

package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Outcome is the result of classifying an HTTP status code
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmpty
	OutcomeRetry
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeRetry:
		return "retry"
	default:
		return "fatal"
	}
}

// ClassifyStatus maps an HTTP status code to an Outcome
func ClassifyStatus(code int) Outcome {
	switch {
	case code >= 200 && code < 300:
		return OutcomeSuccess
	case code == http.StatusNotFound:
		return OutcomeEmpty
	case code == http.StatusTooManyRequests:
		return OutcomeRetry
	default:
		return OutcomeFatal
	}
}

// StatusError is returned when an API answers with a status code that is neither success, not found nor rate limited
type StatusError struct {
	API  string
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api returned status %d for %s", e.API, e.Code, e.URL)
}

// IsStatusError reports whether err wraps a *StatusError
func IsStatusError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// RequesterConfig holds the policy settings of a Requester
type RequesterConfig struct {
	// API is the name used in logs and errors, e.g. riot
	API string
	// CallDelay is the minimum time between two calls. Zero disables throttling
	CallDelay time.Duration
	// Backoff is how long to wait after a 429 before retrying the same request
	Backoff time.Duration
	// HTTPClient defaults to a client with a 30 second timeout
	HTTPClient *http.Client
	// OnRateLimited is called every time the API answers 429
	OnRateLimited func(api string)
}

// Requester sends requests to one API following the shared status code policy
type Requester struct {
	api           string
	client        *http.Client
	limiter       *rate.Limiter
	backoff       time.Duration
	onRateLimited func(api string)
}

// NewRequester creates a Requester from cfg
func NewRequester(cfg RequesterConfig) *Requester {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.CallDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.CallDelay), 1)
	}

	return &Requester{
		api:           cfg.API,
		client:        client,
		limiter:       limiter,
		backoff:       cfg.Backoff,
		onRateLimited: cfg.OnRateLimited,
	}
}

// Probe sends one request without any retry and returns the status code
// Preconditions: Receives context and a function building the request
// Postconditions: Returns the status code of the response, or an error if the request could not be sent
func (r *Requester) Probe(ctx context.Context, newRequest func(ctx context.Context) (*http.Request, error)) (int, error) {
	code, _, _, err := r.send(ctx, newRequest)
	return code, err
}

// Fetch sends a request until the API gives a non rate limited answer and decodes a successful body
// Preconditions: Receives context, the requester, a function building the request and a function decoding a 2xx body
// Postconditions: Returns (value, true, nil) on success, (zero, false, nil) on 404, (zero, false, *StatusError) on
// any other status, or an error if the request, the backoff sleep or decoding failed
func Fetch[T any](ctx context.Context, r *Requester, newRequest func(ctx context.Context) (*http.Request, error), decode func(body []byte) (T, error)) (T, bool, error) {
	var zero T
	for {
		code, body, url, err := r.send(ctx, newRequest)
		if err != nil {
			return zero, false, err
		}

		switch ClassifyStatus(code) {
		case OutcomeSuccess:
			value, err := decode(body)
			if err != nil {
				return zero, false, fmt.Errorf("error decoding %s response: %w", r.api, err)
			}
			return value, true, nil

		case OutcomeEmpty:
			return zero, false, nil

		case OutcomeRetry:
			log.Warn().Str("category", r.api).Dur("backoff", r.backoff).Msg("rate limit reached, waiting before retrying")
			if r.onRateLimited != nil {
				r.onRateLimited(r.api)
			}
			if err := sleep(ctx, r.backoff); err != nil {
				return zero, false, err
			}

		default:
			statusErr := &StatusError{API: r.api, Code: code, URL: url, Body: string(body)}
			log.Error().Str("category", r.api).Int("status", code).Str("url", statusErr.URL).Msg("unexpected status code")
			return zero, false, statusErr
		}
	}
}

// send waits for the throttle, sends a single request and reads the whole body. The returned URL has no query string
func (r *Requester) send(ctx context.Context, newRequest func(ctx context.Context) (*http.Request, error)) (int, []byte, string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, nil, "", err
	}

	request, err := newRequest(ctx)
	if err != nil {
		return 0, nil, "", fmt.Errorf("error creating %s request: %w", r.api, err)
	}
	url := redact(request)

	response, err := r.client.Do(request)
	if err != nil {
		return 0, nil, url, fmt.Errorf("%s request to %s failed: %w", r.api, url, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, url, fmt.Errorf("error reading %s response body: %w", r.api, err)
	}
	return response.StatusCode, body, url, nil
}

// sleep blocks for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// redact returns the request URL without its query string, which can hold client secrets and tokens
func redact(request *http.Request) string {
	u := *request.URL
	u.RawQuery = ""
	return u.String()
}
