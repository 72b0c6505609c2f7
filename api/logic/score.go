/* score.go
 * Contains the logic used to score a live match, decide whether it should be announced and build the tweet text
 * Authors: Zachary Bower
 */

package logic

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"lolpro-bot/api/match"
	"lolpro-bot/api/shared"
)

const (
	mainTeamPoints    = 1000
	academyTeamPoints = 500

	// The viewer term is viewerFactor * viewers^viewerExponent, rounded down
	viewerFactor   = 8.5
	viewerExponent = 0.6
)

// ErrNoStreamer is returned when a tweet is built for a match nobody is streaming
var ErrNoStreamer = errors.New("no tracked player in the match is streaming")

// ScoreConfig holds the tunables of ComputeScore
type ScoreConfig struct {
	// MinTrackedPlayers is the number of tracked players a match needs to score above 0
	MinTrackedPlayers int
}

// ComputeScore rates how interesting a match is to watch
// Preconditions: Receives the match, the viewership of the streamers on each side and the score settings
// Postconditions: Returns 0 if the match has too few tracked players or nobody is live, otherwise 1000 per main team
// player, 500 per academy player and 8.5 * maxViewers^0.6 rounded down
func ComputeScore(m *match.Match, blue shared.Viewership, red shared.Viewership, cfg ScoreConfig) int {
	players := m.TrackedPlayers()
	if len(players) == 0 || len(players) < cfg.MinTrackedPlayers {
		return 0
	}

	maxViewers := 0
	for _, viewership := range []shared.Viewership{blue, red} {
		if _, viewers := viewership.Top(); viewers > maxViewers {
			maxViewers = viewers
		}
	}
	if maxViewers == 0 {
		return 0
	}

	score := 0
	for _, player := range players {
		if player.IsAcademy() {
			score += academyTeamPoints
		} else {
			score += mainTeamPoints
		}
	}
	return score + int(math.Floor(viewerFactor*math.Pow(float64(maxViewers), viewerExponent)))
}

// ShouldPublish is the publication gate. A score of 0 never passes, whatever the minimum
func ShouldPublish(score int, minimum int, alreadyTweeted bool) bool {
	return score > 0 && score >= minimum && !alreadyTweeted
}

// BuildTweetText writes the announcement of a match, led by its most watched streamer
// Preconditions: Receives the match, the viewership of the streamers on each side and the match score
// Postconditions: Returns the tweet text, or ErrNoStreamer if no tracked player is live
func BuildTweetText(m *match.Match, blue shared.Viewership, red shared.Viewership, score int) (string, error) {
	combined := shared.Viewership{}
	for _, viewership := range []shared.Viewership{blue, red} {
		for player, viewers := range viewership {
			combined[player] = viewers
		}
	}
	streamer, viewers := combined.Top()
	if streamer == nil || viewers == 0 || !streamer.HasStream() {
		return "", ErrNoStreamer
	}

	own, other := m.Blue(), m.Red()
	if !own.HasPlayer(streamer) && other.HasPlayer(streamer) {
		own, other = other, own
	}

	var teammates []string
	for _, player := range own.Players {
		if player != streamer {
			teammates = append(teammates, player.DisplayName())
		}
	}
	var opponents []string
	for _, player := range other.Players {
		opponents = append(opponents, player.DisplayName())
	}

	var text strings.Builder
	text.WriteString(streamer.DisplayName())
	text.WriteString(" is live")
	if len(teammates) > 0 {
		text.WriteString(" playing with ")
		text.WriteString(joinNames(teammates))
	}
	if len(opponents) > 0 {
		text.WriteString(" against ")
		text.WriteString(joinNames(opponents))
	}
	fmt.Fprintf(&text, " (%d)\nWatch here: %s", score, streamer.StreamURL())
	return text.String(), nil
}

// joinNames joins names as an English list with an Oxford comma
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
