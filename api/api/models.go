/* models.go
 * This file contain the interfaces, structs and helper functions that are used by api consumers
 * Authors: Zachary Bower
 */

package api

import (
	"context"

	"lolpro-bot/api/external"
	"lolpro-bot/api/logic"
	"lolpro-bot/api/match"
	"lolpro-bot/api/roster"
	"lolpro-bot/api/shared"
)

// RiotAPI is the part of external.RiotClient used by the API
type RiotAPI interface {
	CheckReachable(ctx context.Context) bool
	ResolveAccountID(ctx context.Context, name string) (string, error)
	PollActiveMatch(ctx context.Context, accountID string) (*external.ActiveGame, error)
}

// TwitchAPI is the part of external.TwitchClient used by the API
type TwitchAPI interface {
	LoadToken(ctx context.Context) error
	RevokeToken(ctx context.Context) error
	LookupUserIDs(ctx context.Context, logins []string) (map[string]string, error)
	StreamViewers(ctx context.Context, userIDs []string) (map[string]int, error)
}

// TwitterAPI is the part of external.TwitterClient used by the API
type TwitterAPI interface {
	Tweet(ctx context.Context, status string) (*external.TweetReceipt, error)
}

// Config holds the settings of the API that don't belong to a single client
type Config struct {
	RosterFile    string
	RosterOptions roster.Options
	// MinimumScore is the lowest score that gets tweeted
	MinimumScore int
	Score        logic.ScoreConfig
	// DryRun scores and records matches without tweeting
	DryRun bool
}

// Report is a scored match along with the viewership used to score it
type Report struct {
	Match *match.Match
	Blue  shared.Viewership
	Red   shared.Viewership
	Score int
}
