/* server_test.go
 * Contains unit tests for the web server routes
 * Authors: Zachary Bower
 */

package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lolpro-bot/api/api"
	"lolpro-bot/api/roster"
	"lolpro-bot/api/store"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoster = `Name,Position,Team,Twitter,Twitch,Summoner Names
Doublelift,ADC,Team Liquid,TLDoublelift,doublelift,"Doublelift, Peter Peng"
Bjergsen,Mid,Team SoloMid,-,bjergsen,Bjergsen
`

// newTestAPI creates an API over mocks. When setup is true the roster is loaded
func newTestAPI(t *testing.T, setup bool) *api.API {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(testRoster), 0o644))

	riot := api.NewMockRiot()
	riot.AccountIDs = map[string]string{"Doublelift": "A", "Bjergsen": "B"}
	a, err := api.NewAPI(api.Config{RosterFile: path, RosterOptions: roster.Options{SkipUnknown: true}}, riot, api.NewMockTwitch(), &api.MockTwitter{}, nil, nil)
	require.NoError(t, err)
	if setup {
		require.NoError(t, a.Setup(context.Background()))
	}
	return a
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// region healthz tests

func TestHealthz_BeforeSetup(t *testing.T) {
	handler := NewHandler(Config{API: newTestAPI(t, false)})

	rec := get(t, handler, "/healthz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status": "starting", "players": 0}`, rec.Body.String())
}

func TestHealthz_Ready(t *testing.T) {
	handler := NewHandler(Config{API: newTestAPI(t, true)})

	rec := get(t, handler, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "players": 2}`, rec.Body.String())
}

// endregion

// region tweets tests

func TestTweets(t *testing.T) {
	a := newTestAPI(t, true)
	for _, record := range store.CreateSampleTweetRecords(3, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		require.NoError(t, a.Store.RecordTweet(context.Background(), record))
	}
	handler := NewHandler(Config{API: a})

	rec := get(t, handler, "/tweets?limit=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var body tweetsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tweets, 2)
	assert.Equal(t, int64(3), body.Tweets[0].MatchID)
}

func TestTweets_EmptyIsList(t *testing.T) {
	handler := NewHandler(Config{API: newTestAPI(t, true)})

	rec := get(t, handler, "/tweets")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tweets": []}`, rec.Body.String())
}

func TestTweets_BadLimit(t *testing.T) {
	handler := NewHandler(Config{API: newTestAPI(t, true)})

	assert.Equal(t, http.StatusBadRequest, get(t, handler, "/tweets?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, handler, "/tweets?limit=0").Code)
}

func TestTweets_WrongMethod(t *testing.T) {
	handler := NewHandler(Config{API: newTestAPI(t, true)})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tweets", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// endregion

// region players tests

func TestPlayers_Search(t *testing.T) {
	handler := NewHandler(Config{API: newTestAPI(t, true)})

	rec := get(t, handler, "/players?q=peter")

	require.Equal(t, http.StatusOK, rec.Code)
	var players []playerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 1)
	assert.Equal(t, "Doublelift", players[0].Name)
	assert.Equal(t, "ADC", players[0].Role)
	assert.Equal(t, []string{"Doublelift", "Peter Peng"}, players[0].Accounts)
}

func TestPlayers_All(t *testing.T) {
	handler := NewHandler(Config{API: newTestAPI(t, true)})

	rec := get(t, handler, "/players")

	var players []playerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	assert.Len(t, players, 2)
}

func TestPlayers_BeforeSetup(t *testing.T) {
	handler := NewHandler(Config{API: newTestAPI(t, false)})

	assert.Equal(t, http.StatusServiceUnavailable, get(t, handler, "/players").Code)
}

// endregion

// region metrics tests

func TestMetrics(t *testing.T) {
	a := newTestAPI(t, true)
	server := httptest.NewServer(NewHandler(Config{API: a}))
	defer server.Close()

	response, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(body), "lolpro_bot_tracked_accounts 2")
}

// endregion

// region Start tests

func TestStart_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Start(ctx, Config{Addr: "127.0.0.1:0", API: newTestAPI(t, false)}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

// endregion
