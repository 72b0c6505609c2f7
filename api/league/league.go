/* league.go
 * Contains the registry of tracked players loaded from the roster. Players are looked up by account, by Twitch
 * channel or by a fuzzy search over their names, teams and account names
 * Authors: Zachary Bower
 */

package league

import (
	"context"
	"errors"
	"sort"
	"strings"

	"lolpro-bot/api/shared"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"
)

// AccountResolver converts an account name to a Riot account ID. An empty ID with a nil error means not found
type AccountResolver interface {
	ResolveAccountID(ctx context.Context, name string) (string, error)
}

// League owns every tracked player for the lifetime of the bot
type League struct {
	players []*shared.Player
}

// New creates a League from the roster players. The slice order is kept
func New(players []*shared.Player) *League {
	return &League{players: players}
}

// Players returns every tracked player in roster order
func (l *League) Players() []*shared.Player {
	return l.players
}

// FindByAccountID returns the first player owning the resolved account ID, or nil
func (l *League) FindByAccountID(accountID string) *shared.Player {
	for _, player := range l.players {
		if player.OwnsAccountID(accountID) {
			return player
		}
	}
	return nil
}

// FindByAccountName returns the first player owning an account with that name, or nil
func (l *League) FindByAccountName(accountName string) *shared.Player {
	for _, player := range l.players {
		if player.OwnsAccountName(accountName) {
			return player
		}
	}
	return nil
}

// FindByTwitchChannel returns the first player streaming on channel, or nil
func (l *League) FindByTwitchChannel(channel string) *shared.Player {
	if channel == "" {
		return nil
	}
	for _, player := range l.players {
		if strings.EqualFold(player.TwitchChannel, channel) {
			return player
		}
	}
	return nil
}

// FindByTwitchUserID returns the first player with that Twitch user ID, or nil
func (l *League) FindByTwitchUserID(userID string) *shared.Player {
	if userID == "" {
		return nil
	}
	for _, player := range l.players {
		if player.TwitchUserID == userID {
			return player
		}
	}
	return nil
}

// AllKnownAccountIDs flattens every resolved account ID of every player, in roster order and without duplicates
func (l *League) AllKnownAccountIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, player := range l.players {
		for _, account := range player.Accounts {
			if !account.Resolved() || seen[account.ID] {
				continue
			}
			seen[account.ID] = true
			ids = append(ids, account.ID)
		}
	}
	return ids
}

// ResolveAccountIDs looks up the account ID of every account of every player and stores it in place
// Preconditions: Receives context and the resolver to use, usually the Riot client
// Postconditions: Returns the number of accounts resolved. A failed lookup is logged and leaves the account
// unresolved, only a cancelled context aborts the whole resolution
func (l *League) ResolveAccountIDs(ctx context.Context, resolver AccountResolver) (int, error) {
	resolved := 0
	for _, player := range l.players {
		for i := range player.Accounts {
			account := &player.Accounts[i]
			id, err := resolver.ResolveAccountID(ctx, account.Name)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return resolved, err
				}
				log.Error().Str("category", "league").Err(err).Str("player", player.Name).Str("account", account.Name).Msg("error resolving account")
				continue
			}
			if id == "" {
				log.Warn().Str("category", "league").Str("player", player.Name).Str("account", account.Name).Msg("account not found")
				continue
			}
			account.ID = id
			resolved++
		}
	}

	log.Info().Str("category", "league").Int("resolved", resolved).Msg("account ids resolved")
	return resolved, nil
}

// TwitchChannels returns the Twitch channel of every player that streams
func (l *League) TwitchChannels() []string {
	var channels []string
	for _, player := range l.players {
		if player.HasStream() {
			channels = append(channels, player.TwitchChannel)
		}
	}
	return channels
}

// SetTwitchUserIDs stores Twitch user IDs on the players streaming on the matching channels
// Preconditions: Receives a map of lowercased channel login to Twitch user ID
// Postconditions: Returns the number of players that received an ID
func (l *League) SetTwitchUserIDs(ids map[string]string) int {
	count := 0
	for _, player := range l.players {
		if id, ok := ids[strings.ToLower(player.TwitchChannel)]; ok && player.HasStream() {
			player.TwitchUserID = id
			count++
		}
	}
	return count
}

// Search fuzzy matches query against player names, teams and account names
// Preconditions: Receives the search query. An empty query matches every player
// Postconditions: Returns matching players, best match first, each player at most once
func (l *League) Search(query string) []*shared.Player {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return l.players
	}

	var targets []string
	var owners []*shared.Player
	for _, player := range l.players {
		targets = append(targets, strings.ToLower(player.Name), strings.ToLower(player.Team))
		owners = append(owners, player, player)
		for _, account := range player.Accounts {
			targets = append(targets, strings.ToLower(account.Name))
			owners = append(owners, player)
		}
	}

	ranks := fuzzy.RankFind(query, targets)
	sort.Stable(ranks)

	seen := make(map[*shared.Player]bool)
	var results []*shared.Player
	for _, rank := range ranks {
		player := owners[rank.OriginalIndex]
		if seen[player] {
			continue
		}
		seen[player] = true
		results = append(results, player)
	}
	return results
}
