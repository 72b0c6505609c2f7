/* models.go
 * Contains the structs used to describe a live match and the two sides playing it
 * Authors: Zachary Bower
 */

package match

import (
	"time"

	"lolpro-bot/api/external"
	"lolpro-bot/api/shared"

	"github.com/rs/zerolog"
)

// Match is a live game found on the spectator endpoint
type Match struct {
	ID         int64
	MapID      int64
	GameType   string
	GameMode   string
	PlatformID string
	// QueueConfigID is nil for custom games, which are not played in a queue
	QueueConfigID *int64
	StartTime     time.Time
	Length        time.Duration
	Participants  []external.Participant
	// Sides[0] is the side of the first participant
	Sides [2]*Team
}

// Team is one side of a match. Players holds the tracked players among the participants, in order of appearance
type Team struct {
	Side         int64
	Participants []external.Participant
	Players      []*shared.Player
}

// HasPlayer reports whether player is one of the tracked players of the team
func (t *Team) HasPlayer(player *shared.Player) bool {
	for _, p := range t.Players {
		if p == player {
			return true
		}
	}
	return false
}

// MarshalZerologObject writes the match summary into a log event
func (m *Match) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("match_id", m.ID).
		Str("game_type", m.GameType).
		Str("game_mode", m.GameMode).
		Str("platform", m.PlatformID).
		Time("start_time", m.StartTime).
		Dur("length", m.Length).
		Int("participants", len(m.Participants))
	if m.QueueConfigID != nil {
		e.Int64("queue_id", *m.QueueConfigID)
	}

	names := zerolog.Arr()
	for _, player := range m.TrackedPlayers() {
		names.Str(player.Name)
	}
	e.Array("tracked_players", names)
}
