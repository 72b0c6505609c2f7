/* api.go
 * This file contains the public methods for interacting with this package. For consistent results, functions should
 * only be called from this file, not the sub packages. The API owns the league of tracked players and the tweet log
 * for the whole life of the bot
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"lolpro-bot/api/external"
	"lolpro-bot/api/league"
	"lolpro-bot/api/logic"
	"lolpro-bot/api/match"
	"lolpro-bot/api/metrics"
	"lolpro-bot/api/roster"
	"lolpro-bot/api/shared"
	"lolpro-bot/api/store"

	"github.com/rs/zerolog/log"
)

// API provides methods for finding, scoring and announcing live matches
type API struct {
	Riot    RiotAPI
	Twitch  TwitchAPI
	Twitter TwitterAPI
	Store   store.Interface
	Metrics *metrics.Metrics

	cfg    Config
	league atomic.Pointer[league.League]
	now    func() time.Time
}

// NewAPI creates a new API instance with the provided configuration and clients
// Preconditions: Receives the config and the three api clients. st and m may be nil
// Postconditions: Returns the API using an in memory store and new metrics when none are given, or an error if a
// client is missing
func NewAPI(cfg Config, riot RiotAPI, twitch TwitchAPI, twitter TwitterAPI, st store.Interface, m *metrics.Metrics) (*API, error) {
	if riot == nil || twitch == nil || twitter == nil {
		return nil, fmt.Errorf("riot, twitch and twitter clients are required")
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	if m == nil {
		m = metrics.New()
	}

	return &API{
		Riot:    riot,
		Twitch:  twitch,
		Twitter: twitter,
		Store:   st,
		Metrics: m,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// League returns the tracked players, or nil before Setup
func (a *API) League() *league.League {
	return a.league.Load()
}

// Setup runs the startup sequence: check Riot is reachable, load the Twitch token, load the roster, resolve account
// IDs and resolve Twitch user IDs
// Preconditions: Receives context
// Postconditions: The league is ready to be scanned, or an error is returned that should stop the bot
func (a *API) Setup(ctx context.Context) error {
	if !a.Riot.CheckReachable(ctx) {
		return fmt.Errorf("riot api is not reachable")
	}

	if err := a.Twitch.LoadToken(ctx); err != nil {
		return err
	}

	players, err := roster.Load(a.cfg.RosterFile, a.cfg.RosterOptions)
	if err != nil {
		return err
	}
	l := league.New(players)

	if _, err := l.ResolveAccountIDs(ctx, a.Riot); err != nil {
		return fmt.Errorf("error resolving account ids: %w", err)
	}

	channels := l.TwitchChannels()
	if len(channels) > 0 {
		ids, err := a.Twitch.LookupUserIDs(ctx, channels)
		if err != nil {
			return fmt.Errorf("error resolving twitch user ids: %w", err)
		}
		count := l.SetTwitchUserIDs(ids)
		log.Info().Str("category", "twitch").Int("channels", len(channels)).Int("resolved", count).Msg("twitch user ids resolved")
	}

	accounts := len(l.AllKnownAccountIDs())
	a.Metrics.TrackedAccounts.Set(float64(accounts))
	a.league.Store(l)
	log.Info().Str("category", "bot").Int("players", len(players)).Int("accounts", accounts).Msg("setup complete")
	return nil
}

// ScanActiveMatches drains a queue of every tracked account ID against the active game endpoint. A match found for
// one account removes all of its participants from the queue, so each live game is fetched about once
// Preconditions: Receives context. Setup must have succeeded
// Postconditions: Returns the live matches, one per match ID, or an error if the scan could not finish
func (a *API) ScanActiveMatches(ctx context.Context) ([]*match.Match, error) {
	l := a.League()
	if l == nil {
		return nil, fmt.Errorf("league not loaded, setup has not run")
	}

	start := time.Now()
	queue := l.AllKnownAccountIDs()
	var found []*match.Match
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		head := queue[0]
		game, err := a.Riot.PollActiveMatch(ctx, head)
		if err != nil {
			if !external.IsStatusError(err) {
				return nil, err
			}
			a.Metrics.Polls.WithLabelValues(metrics.PollError).Inc()
			log.Warn().Str("category", "scan").Err(err).Str("account_id", head).Msg("skipping account")
			queue = queue[1:]
			continue
		}
		if game == nil {
			a.Metrics.Polls.WithLabelValues(metrics.PollNotInGame).Inc()
			queue = queue[1:]
			continue
		}
		a.Metrics.Polls.WithLabelValues(metrics.PollInGame).Inc()

		m, err := match.New(game, l)
		if err != nil {
			log.Warn().Str("category", "scan").Err(err).Str("account_id", head).Msg("ignoring malformed game")
			queue = queue[1:]
			continue
		}
		found = append(found, m)
		queue = removeAccounts(queue[1:], m.AccountIDs())
	}

	matches := match.Dedupe(found)
	a.Metrics.MatchesFound.Add(float64(len(matches)))
	a.Metrics.ScanDuration.Observe(time.Since(start).Seconds())
	log.Info().Str("category", "scan").Int("matches", len(matches)).Dur("took", time.Since(start)).Msg("scan complete")
	return matches, nil
}

// removeAccounts returns queue without any of the given account IDs, keeping its order
func removeAccounts(queue []string, accountIDs []string) []string {
	remove := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		remove[id] = true
	}

	kept := queue[:0:0]
	for _, id := range queue {
		if !remove[id] {
			kept = append(kept, id)
		}
	}
	return kept
}

// ScoreMatch looks up the viewers of every tracked streamer in the match and scores it
// Preconditions: Receives context and a match from ScanActiveMatches
// Postconditions: Returns the report. Failing to get viewer counts is logged and scores the match with no viewers
func (a *API) ScoreMatch(ctx context.Context, m *match.Match) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	viewers := a.streamViewers(ctx, m.TrackedPlayers())
	report := Report{
		Match: m,
		Blue:  sideViewership(m.Blue(), viewers),
		Red:   sideViewership(m.Red(), viewers),
	}
	report.Score = logic.ComputeScore(m, report.Blue, report.Red, a.cfg.Score)

	a.Metrics.MatchScores.Observe(float64(report.Score))
	log.Debug().Str("category", "scan").Object("game info", m).Int("score", report.Score).Msg("match scored")
	return report, nil
}

// streamViewers returns the viewer count of every live streamer among players, keyed by Twitch user ID
func (a *API) streamViewers(ctx context.Context, players []*shared.Player) map[string]int {
	var userIDs []string
	for _, player := range players {
		if player.HasStream() && player.TwitchUserID != "" {
			userIDs = append(userIDs, player.TwitchUserID)
		}
	}
	if len(userIDs) == 0 {
		return map[string]int{}
	}

	viewers, err := a.Twitch.StreamViewers(ctx, userIDs)
	if err != nil {
		log.Error().Str("category", "twitch").Err(err).Msg("error fetching viewer counts, scoring without viewers")
		return map[string]int{}
	}
	return viewers
}

// sideViewership maps every streaming tracked player of team to their viewers, 0 when not live
func sideViewership(team *match.Team, viewers map[string]int) shared.Viewership {
	viewership := shared.Viewership{}
	if team == nil {
		return viewership
	}
	for _, player := range team.Players {
		if player.HasStream() {
			viewership[player] = viewers[player.TwitchUserID]
		}
	}
	return viewership
}

// Publish announces a scored match if it passes the publication gate. Each match ID is announced at most once
// Preconditions: Receives context and a report from ScoreMatch
// Postconditions: Returns the stored record, nil with a nil error when the match was not announced, or an error if
// the tweet or the store failed
func (a *API) Publish(ctx context.Context, report Report) (*store.TweetRecord, error) {
	matchID := report.Match.ID
	tweeted, err := a.Store.HasTweeted(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !logic.ShouldPublish(report.Score, a.cfg.MinimumScore, tweeted) {
		a.Metrics.Publishes.WithLabelValues(metrics.PublishGated).Inc()
		log.Debug().Str("category", "publish").Int64("match_id", matchID).Int("score", report.Score).Bool("already_tweeted", tweeted).Msg("match not published")
		return nil, nil
	}

	text, err := logic.BuildTweetText(report.Match, report.Blue, report.Red, report.Score)
	if err != nil {
		a.Metrics.Publishes.WithLabelValues(metrics.PublishFailed).Inc()
		return nil, fmt.Errorf("error building tweet for match %d: %w", matchID, err)
	}

	record := store.TweetRecord{
		MatchID:   matchID,
		Text:      text,
		Score:     report.Score,
		DryRun:    a.cfg.DryRun,
		TweetedAt: a.now().UTC(),
	}
	if !a.cfg.DryRun {
		receipt, err := a.Twitter.Tweet(ctx, text)
		if err != nil {
			a.Metrics.Publishes.WithLabelValues(metrics.PublishFailed).Inc()
			return nil, err
		}
		record.TweetID = receipt.ID
	}

	if err := a.Store.RecordTweet(ctx, record); err != nil {
		if errors.Is(err, store.ErrAlreadyRecorded) {
			return nil, nil
		}
		return nil, fmt.Errorf("error recording tweet for match %d: %w", matchID, err)
	}

	result := metrics.PublishPosted
	if a.cfg.DryRun {
		result = metrics.PublishDryRun
	}
	a.Metrics.Publishes.WithLabelValues(result).Inc()
	log.Info().Str("category", "publish").Int64("match_id", matchID).Int("score", report.Score).Bool("dry_run", a.cfg.DryRun).Str("text", text).Msg("match published")
	return &record, nil
}

// Tweets returns the most recent tweet records, newest first
func (a *API) Tweets(ctx context.Context, limit int) ([]store.TweetRecord, error) {
	return a.Store.ListTweets(ctx, limit)
}

// Close revokes the Twitch token and closes the store. Both are attempted even if one fails
func (a *API) Close(ctx context.Context) error {
	var errs []error
	if err := a.Twitch.RevokeToken(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error closing store: %w", err))
	}
	return errors.Join(errs...)
}
