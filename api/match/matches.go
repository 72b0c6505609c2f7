/* matches.go
 * Contains the logic used to build a Match from an active game and split its participants into two sides
 * Authors: Zachary Bower
 */

package match

import (
	"fmt"
	"time"

	"lolpro-bot/api/external"
	"lolpro-bot/api/league"
	"lolpro-bot/api/shared"
)

// New builds a Match from an active game and cross references its participants against the league
// Preconditions: Receives the active game returned by the spectator endpoint and the league of tracked players
// Postconditions: Returns the match, or an error if the game has no type or a non custom game has no queue ID
func New(game *external.ActiveGame, l *league.League) (*Match, error) {
	if game == nil {
		return nil, fmt.Errorf("no active game")
	}
	if game.GameType == "" {
		return nil, fmt.Errorf("match %d has no game type", game.GameID)
	}

	var queueConfigID *int64
	if game.GameType != external.GameTypeCustom {
		if game.GameQueueConfigID == nil {
			return nil, fmt.Errorf("match %d of type %s has no queue config id", game.GameID, game.GameType)
		}
		id := *game.GameQueueConfigID
		queueConfigID = &id
	}

	m := &Match{
		ID:            game.GameID,
		MapID:         game.MapID,
		GameType:      game.GameType,
		GameMode:      game.GameMode,
		PlatformID:    game.PlatformID,
		QueueConfigID: queueConfigID,
		StartTime:     time.UnixMilli(game.GameStartTime),
		Length:        time.Duration(game.GameLength) * time.Second,
		Participants:  game.Participants,
	}
	m.Sides = partition(game.Participants, l)
	return m, nil
}

// partition splits participants into the side of the first participant and everyone else
func partition(participants []external.Participant, l *league.League) [2]*Team {
	first := &Team{Side: external.TeamBlue}
	second := &Team{Side: external.TeamRed}
	if len(participants) > 0 {
		first.Side = participants[0].TeamID
		second.Side = opposite(first.Side)
	}

	for _, participant := range participants {
		team := second
		if participant.TeamID == first.Side {
			team = first
		} else if len(second.Participants) == 0 {
			second.Side = participant.TeamID
		}
		team.Participants = append(team.Participants, participant)

		if l == nil || participant.Bot {
			continue
		}
		if player := l.FindByAccountID(participant.SummonerID); player != nil && !team.HasPlayer(player) {
			team.Players = append(team.Players, player)
		}
	}
	return [2]*Team{first, second}
}

func opposite(side int64) int64 {
	if side == external.TeamBlue {
		return external.TeamRed
	}
	return external.TeamBlue
}

// Blue returns the side with team ID 100, or the first side if neither has it
func (m *Match) Blue() *Team {
	if m.Sides[1] != nil && m.Sides[1].Side == external.TeamBlue {
		return m.Sides[1]
	}
	return m.Sides[0]
}

// Red returns the side that is not Blue
func (m *Match) Red() *Team {
	if m.Blue() == m.Sides[1] {
		return m.Sides[0]
	}
	return m.Sides[1]
}

// AccountIDs returns the account ID of every participant
func (m *Match) AccountIDs() []string {
	ids := make([]string, 0, len(m.Participants))
	for _, participant := range m.Participants {
		if participant.SummonerID != "" {
			ids = append(ids, participant.SummonerID)
		}
	}
	return ids
}

// TrackedPlayers returns the tracked players of both sides, blue first
func (m *Match) TrackedPlayers() []*shared.Player {
	var players []*shared.Player
	for _, team := range []*Team{m.Blue(), m.Red()} {
		if team != nil {
			players = append(players, team.Players...)
		}
	}
	return players
}

// Dedupe keeps the first match seen for every match ID, in order
func Dedupe(matches []*Match) []*Match {
	seen := make(map[int64]bool, len(matches))
	unique := make([]*Match, 0, len(matches))
	for _, m := range matches {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		unique = append(unique, m)
	}
	return unique
}
