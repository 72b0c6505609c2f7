/* test_mocks.go
 * Contains mock api clients for testing the API package and its consumers
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"fmt"
	"sync"

	"lolpro-bot/api/external"
)

// MockRiot implements RiotAPI from fixed maps
type MockRiot struct {
	mu sync.Mutex

	Reachable bool
	// AccountIDs maps account names to IDs. Missing names are not found
	AccountIDs map[string]string
	// Games maps account IDs to the game they are in. Missing IDs are not in game
	Games map[string]*external.ActiveGame
	// PollErrors maps account IDs to the error their poll returns
	PollErrors map[string]error

	// Polled records every account ID polled, in order
	Polled []string
}

// NewMockRiot creates a reachable MockRiot with no accounts
func NewMockRiot() *MockRiot {
	return &MockRiot{
		Reachable:  true,
		AccountIDs: make(map[string]string),
		Games:      make(map[string]*external.ActiveGame),
		PollErrors: make(map[string]error),
	}
}

func (m *MockRiot) CheckReachable(context.Context) bool {
	return m.Reachable
}

func (m *MockRiot) ResolveAccountID(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.AccountIDs[name], nil
}

func (m *MockRiot) PollActiveMatch(ctx context.Context, accountID string) (*external.ActiveGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Polled = append(m.Polled, accountID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.PollErrors[accountID]; ok {
		return nil, err
	}
	return m.Games[accountID], nil
}

// PolledAccounts returns a copy of the polled account IDs
func (m *MockRiot) PolledAccounts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Polled...)
}

// MockTwitch implements TwitchAPI from fixed maps
type MockTwitch struct {
	// UserIDs maps lowercased logins to user IDs
	UserIDs map[string]string
	// Viewers maps user IDs of live streams to their viewer count
	Viewers map[string]int

	LoadTokenError     error
	StreamViewersError error

	TokenLoaded  bool
	TokenRevoked bool
}

// NewMockTwitch creates a MockTwitch with nobody live
func NewMockTwitch() *MockTwitch {
	return &MockTwitch{
		UserIDs: make(map[string]string),
		Viewers: make(map[string]int),
	}
}

func (m *MockTwitch) LoadToken(context.Context) error {
	if m.LoadTokenError != nil {
		return m.LoadTokenError
	}
	m.TokenLoaded = true
	return nil
}

func (m *MockTwitch) RevokeToken(context.Context) error {
	if m.TokenLoaded {
		m.TokenRevoked = true
		m.TokenLoaded = false
	}
	return nil
}

func (m *MockTwitch) LookupUserIDs(_ context.Context, logins []string) (map[string]string, error) {
	ids := make(map[string]string)
	for _, login := range logins {
		if id, ok := m.UserIDs[login]; ok {
			ids[login] = id
		}
	}
	return ids, nil
}

func (m *MockTwitch) StreamViewers(_ context.Context, userIDs []string) (map[string]int, error) {
	if m.StreamViewersError != nil {
		return nil, m.StreamViewersError
	}
	viewers := make(map[string]int)
	for _, id := range userIDs {
		if count, ok := m.Viewers[id]; ok {
			viewers[id] = count
		}
	}
	return viewers, nil
}

// MockTwitter implements TwitterAPI and records every posted status
type MockTwitter struct {
	mu       sync.Mutex
	Statuses []string
	Err      error
}

func (m *MockTwitter) Tweet(_ context.Context, status string) (*external.TweetReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.Statuses = append(m.Statuses, status)
	return &external.TweetReceipt{ID: fmt.Sprintf("%d", len(m.Statuses)), Text: status}, nil
}

// Posted returns a copy of the posted statuses
func (m *MockTwitter) Posted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Statuses...)
}
