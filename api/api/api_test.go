/* api_test.go
 * Contains unit tests for api.go - testing the startup sequence, the scan, scoring and publishing
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lolpro-bot/api/external"
	"lolpro-bot/api/logic"
	"lolpro-bot/api/metrics"
	"lolpro-bot/api/roster"
	"lolpro-bot/api/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoster = `Name,Position,Team,Twitter,Twitch,Summoner Names
Doublelift,ADC,Team Liquid,TLDoublelift,doublelift,Doublelift
Bjergsen,Mid,Team SoloMid,-,bjergsen,Bjergsen
Jensen,Mid,Team Liquid Academy,-,-,Jensen
UNKNOWN,Top,FlyQuest,-,-,Mystery
`

type testEnv struct {
	api     *API
	riot    *MockRiot
	twitch  *MockTwitch
	twitter *MockTwitter
}

// newTestEnv builds an API over mocks where Doublelift, Bjergsen and Jensen have account IDs A, B and C
func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(testRoster), 0o644))
	cfg.RosterFile = path
	cfg.RosterOptions = roster.Options{SkipUnknown: true}

	riot := NewMockRiot()
	riot.AccountIDs = map[string]string{"Doublelift": "A", "Bjergsen": "B", "Jensen": "C"}
	twitch := NewMockTwitch()
	twitch.UserIDs = map[string]string{"doublelift": "uid-dl", "bjergsen": "uid-bj"}
	twitter := &MockTwitter{}

	a, err := NewAPI(cfg, riot, twitch, twitter, store.NewMemoryStore(), metrics.New())
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return &testEnv{api: a, riot: riot, twitch: twitch, twitter: twitter}
}

// liveGame builds a ranked game with the given account IDs on blue and red
func liveGame(id int64, blue []string, red []string) *external.ActiveGame {
	queue := int64(420)
	game := &external.ActiveGame{GameID: id, GameType: external.GameTypeMatched, GameQueueConfigID: &queue}
	for _, accountID := range blue {
		game.Participants = append(game.Participants, external.Participant{SummonerID: accountID, TeamID: external.TeamBlue})
	}
	for _, accountID := range red {
		game.Participants = append(game.Participants, external.Participant{SummonerID: accountID, TeamID: external.TeamRed})
	}
	return game
}

func defaultConfig() Config {
	return Config{MinimumScore: 2000, Score: logic.ScoreConfig{MinTrackedPlayers: 2}}
}

// region NewAPI tests

func TestNewAPI_MissingClients(t *testing.T) {
	_, err := NewAPI(Config{}, nil, NewMockTwitch(), &MockTwitter{}, nil, nil)
	assert.Error(t, err)
}

func TestNewAPI_Defaults(t *testing.T) {
	a, err := NewAPI(Config{}, NewMockRiot(), NewMockTwitch(), &MockTwitter{}, nil, nil)

	require.NoError(t, err)
	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.Metrics)
	assert.Nil(t, a.League())
}

// endregion

// region Setup tests

func TestSetup_Success(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	require.NoError(t, env.api.Setup(context.Background()))

	l := env.api.League()
	require.NotNil(t, l)
	assert.Len(t, l.Players(), 3)
	assert.Equal(t, []string{"A", "B", "C"}, l.AllKnownAccountIDs())
	assert.Equal(t, "Bjergsen", l.FindByTwitchUserID("uid-bj").Name)
	assert.True(t, env.twitch.TokenLoaded)
	assert.Equal(t, 3.0, testutil.ToFloat64(env.api.Metrics.TrackedAccounts))
}

func TestSetup_RiotUnreachable(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.riot.Reachable = false

	err := env.api.Setup(context.Background())

	assert.Error(t, err)
	assert.False(t, env.twitch.TokenLoaded)
}

func TestSetup_TwitchTokenFailure(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.twitch.LoadTokenError = errors.New("bad client secret")

	err := env.api.Setup(context.Background())

	assert.ErrorContains(t, err, "bad client secret")
	assert.Nil(t, env.api.League())
}

func TestSetup_MissingRoster(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.api.cfg.RosterFile = filepath.Join(t.TempDir(), "missing.csv")

	err := env.api.Setup(context.Background())

	assert.ErrorContains(t, err, "error opening roster file")
}

// endregion

// region ScanActiveMatches tests

func TestScanActiveMatches_BeforeSetup(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	_, err := env.api.ScanActiveMatches(context.Background())

	assert.Error(t, err)
}

func TestScanActiveMatches_MatchRemovesParticipantsFromQueue(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	require.NoError(t, env.api.Setup(context.Background()))
	game := liveGame(1, []string{"A", "x1", "x2", "x3", "x4"}, []string{"B", "y1", "y2", "y3", "y4"})
	env.riot.Games["A"] = game
	env.riot.Games["B"] = game

	matches, err := env.api.ScanActiveMatches(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, env.riot.PolledAccounts(), "B is accounted for by A's match, C is still polled")
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].ID)
	assert.Len(t, matches[0].TrackedPlayers(), 2)
}

func TestScanActiveMatches_DuplicateMatchIDsMerged(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	require.NoError(t, env.api.Setup(context.Background()))
	env.riot.Games["A"] = liveGame(1, []string{"A"}, []string{"B"})
	// C's poll returns the same game without listing C
	env.riot.Games["C"] = liveGame(1, []string{"A"}, []string{"B"})

	matches, err := env.api.ScanActiveMatches(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, env.riot.PolledAccounts())
	assert.Len(t, matches, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.api.Metrics.MatchesFound))
}

func TestScanActiveMatches_NobodyInGame(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	require.NoError(t, env.api.Setup(context.Background()))

	matches, err := env.api.ScanActiveMatches(context.Background())

	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, []string{"A", "B", "C"}, env.riot.PolledAccounts())
	assert.Equal(t, 3.0, testutil.ToFloat64(env.api.Metrics.Polls.WithLabelValues(metrics.PollNotInGame)))
}

func TestScanActiveMatches_StatusErrorSkipsAccount(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	require.NoError(t, env.api.Setup(context.Background()))
	env.riot.PollErrors["A"] = &external.StatusError{API: "riot", Code: 500}
	env.riot.Games["B"] = liveGame(2, []string{"B"}, []string{"C"})

	matches, err := env.api.ScanActiveMatches(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, env.riot.PolledAccounts())
	require.Len(t, matches, 1)
	assert.Equal(t, int64(2), matches[0].ID)
}

func TestScanActiveMatches_TransportErrorAborts(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	require.NoError(t, env.api.Setup(context.Background()))
	env.riot.PollErrors["B"] = errors.New("connection reset")

	matches, err := env.api.ScanActiveMatches(context.Background())

	assert.ErrorContains(t, err, "connection reset")
	assert.Nil(t, matches)
}

func TestScanActiveMatches_MalformedGameSkipped(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	require.NoError(t, env.api.Setup(context.Background()))
	env.riot.Games["A"] = &external.ActiveGame{GameID: 3}

	matches, err := env.api.ScanActiveMatches(context.Background())

	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, []string{"A", "B", "C"}, env.riot.PolledAccounts())
}

func TestRemoveAccounts(t *testing.T) {
	queue := []string{"B", "C", "D"}

	assert.Equal(t, []string{"C"}, removeAccounts(queue, []string{"B", "D", "Z"}))
	assert.Equal(t, []string{"B", "C", "D"}, queue, "input is not modified")
}

// endregion

// region ScoreMatch and Publish tests

// scanOne sets up the env with Doublelift (A) against Bjergsen (B) and returns the scored report
func scanOne(t *testing.T, env *testEnv) Report {
	t.Helper()
	require.NoError(t, env.api.Setup(context.Background()))
	env.riot.Games["A"] = liveGame(1, []string{"A"}, []string{"B"})

	matches, err := env.api.ScanActiveMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 1)

	report, err := env.api.ScoreMatch(context.Background(), matches[0])
	require.NoError(t, err)
	return report
}

func TestScoreMatch(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.twitch.Viewers["uid-dl"] = 100

	report := scanOne(t, env)

	assert.Equal(t, 2134, report.Score)
	assert.Len(t, report.Blue, 1)
	assert.Len(t, report.Red, 1)
	assert.Equal(t, 100, report.Blue[env.api.League().FindByAccountID("A")])
	assert.Equal(t, 0, report.Red[env.api.League().FindByAccountID("B")])
}

func TestScoreMatch_ViewerLookupFailureScoresZero(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.twitch.Viewers["uid-dl"] = 100
	env.twitch.StreamViewersError = errors.New("twitch down")

	report := scanOne(t, env)

	assert.Equal(t, 0, report.Score)
}

func TestPublish_IsIdempotent(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.twitch.Viewers["uid-dl"] = 100
	report := scanOne(t, env)

	first, err := env.api.Publish(context.Background(), report)
	require.NoError(t, err)
	second, err := env.api.Publish(context.Background(), report)
	require.NoError(t, err)

	require.NotNil(t, first)
	assert.Nil(t, second)
	assert.Equal(t, "1", first.TweetID)
	assert.Equal(t, int64(1), first.MatchID)
	assert.Equal(t, []string{"@TLDoublelift is live against Bjergsen (2134)\nWatch here: https://www.twitch.tv/doublelift"}, env.twitter.Posted())

	records, err := env.api.Tweets(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.api.Metrics.Publishes.WithLabelValues(metrics.PublishPosted)))
}

func TestPublish_BelowMinimum(t *testing.T) {
	cfg := defaultConfig()
	cfg.MinimumScore = 5000
	env := newTestEnv(t, cfg)
	env.twitch.Viewers["uid-dl"] = 100
	report := scanOne(t, env)

	record, err := env.api.Publish(context.Background(), report)

	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Empty(t, env.twitter.Posted())
}

func TestPublish_DryRun(t *testing.T) {
	cfg := defaultConfig()
	cfg.DryRun = true
	env := newTestEnv(t, cfg)
	env.twitch.Viewers["uid-dl"] = 100
	report := scanOne(t, env)

	record, err := env.api.Publish(context.Background(), report)

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.DryRun)
	assert.Empty(t, record.TweetID)
	assert.Empty(t, env.twitter.Posted())
}

func TestPublish_TweetFailureIsNotRecorded(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	env.twitch.Viewers["uid-dl"] = 100
	env.twitter.Err = &external.StatusError{API: "twitter", Code: 403}
	report := scanOne(t, env)

	record, err := env.api.Publish(context.Background(), report)

	assert.Error(t, err)
	assert.Nil(t, record)
	tweeted, err := env.api.Store.HasTweeted(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, tweeted)
}

// endregion

// region Close tests

func TestClose_RevokesToken(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	require.NoError(t, env.api.Setup(context.Background()))

	require.NoError(t, env.api.Close(context.Background()))

	assert.True(t, env.twitch.TokenRevoked)
}

// endregion
