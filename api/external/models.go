/* models.go
 * This file contains the models used by the external package when decoding responses from the Riot, Twitch and
 * Twitter apis
 * Authors: Zachary Bower
 */

package external

// Game types reported by the spectator endpoint
const (
	GameTypeCustom   = "CUSTOM_GAME"
	GameTypeMatched  = "MATCHED_GAME"
	GameTypeTutorial = "TUTORIAL_GAME"
)

// Team IDs used by the spectator endpoint
const (
	TeamBlue = 100
	TeamRed  = 200
)

// Summoner is the response of the summoner by name endpoint. Only the fields the bot reads are kept
type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	Name          string `json:"name"`
	SummonerLevel int64  `json:"summonerLevel"`
}

// ActiveGame is the response of the active game by summoner endpoint
type ActiveGame struct {
	GameID            int64         `json:"gameId"`
	MapID             int64         `json:"mapId"`
	GameMode          string        `json:"gameMode"`
	GameType          string        `json:"gameType"`
	GameQueueConfigID *int64        `json:"gameQueueConfigId,omitempty"`
	PlatformID        string        `json:"platformId"`
	GameStartTime     int64         `json:"gameStartTime"`
	GameLength        int64         `json:"gameLength"`
	Participants      []Participant `json:"participants"`
}

// Participant is one player in an ActiveGame
type Participant struct {
	SummonerName string `json:"summonerName"`
	SummonerID   string `json:"summonerId"`
	TeamID       int64  `json:"teamId"`
	ChampionID   int64  `json:"championId"`
	Bot          bool   `json:"bot"`
}

// twitchToken is the response of the client credentials token endpoint
type twitchToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type twitchUsers struct {
	Data []struct {
		ID          string `json:"id"`
		Login       string `json:"login"`
		DisplayName string `json:"display_name"`
	} `json:"data"`
}

type twitchStreams struct {
	Data []struct {
		UserID      string `json:"user_id"`
		UserLogin   string `json:"user_login"`
		Type        string `json:"type"`
		ViewerCount int    `json:"viewer_count"`
	} `json:"data"`
}

// TweetReceipt is the part of the status update response kept in the tweet log
type TweetReceipt struct {
	ID        string `json:"id_str"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}
