/* models.go
 * This file contain the structs and helper functions that are shared between sub packages: tracked players,
 * their game accounts and their stream viewership
 * Authors: Zachary Bower
 */

package shared

import (
	"strings"
)

// Role is the in-game position a tracked player is rostered at
type Role string

const (
	RoleTop     Role = "TOP"
	RoleJungle  Role = "JUNGLE"
	RoleMid     Role = "MID"
	RoleADC     Role = "ADC"
	RoleSupport Role = "SUPPORT"
)

// Aliases seen in community maintained rosters
var roleAliases = map[string]Role{
	"TOP":     RoleTop,
	"JUNGLE":  RoleJungle,
	"JUNGLER": RoleJungle,
	"JG":      RoleJungle,
	"MID":     RoleMid,
	"MIDDLE":  RoleMid,
	"ADC":     RoleADC,
	"BOT":     RoleADC,
	"BOTTOM":  RoleADC,
	"SUPPORT": RoleSupport,
	"SUPP":    RoleSupport,
	"SUP":     RoleSupport,
}

// ParseRole converts a roster role string into a Role.
// Preconditions: Receives role string in any case
// Postconditions: Returns the matching Role, unrecognised strings default to SUPPORT
func ParseRole(role string) Role {
	if r, ok := roleAliases[strings.ToUpper(strings.TrimSpace(role))]; ok {
		return r
	}
	return RoleSupport
}

// Account is one game account owned by a player. ID is empty until it has been resolved against the Riot API
type Account struct {
	Name string
	ID   string
}

// Resolved reports whether the account has a Riot account ID
func (a Account) Resolved() bool {
	return a.ID != ""
}

// Player is a tracked professional player loaded from the roster
type Player struct {
	Name          string
	Role          Role
	Team          string
	TwitterHandle string
	TwitchChannel string
	TwitchUserID  string
	Accounts      []Account
}

// OwnsAccountID reports whether one of the player's resolved accounts has the given ID
func (p *Player) OwnsAccountID(accountID string) bool {
	if accountID == "" {
		return false
	}
	for _, account := range p.Accounts {
		if account.ID == accountID {
			return true
		}
	}
	return false
}

// OwnsAccountName reports whether the player owns an account with the given name. Riot names are case-insensitive
func (p *Player) OwnsAccountName(accountName string) bool {
	for _, account := range p.Accounts {
		if strings.EqualFold(account.Name, accountName) {
			return true
		}
	}
	return false
}

// IsAcademy reports whether the player is rostered on an academy team
func (p *Player) IsAcademy() bool {
	return strings.Contains(strings.ToLower(p.Team), "academy")
}

// HasStream reports whether the player has a Twitch channel in the roster
func (p *Player) HasStream() bool {
	return p.TwitchChannel != ""
}

// DisplayName returns the @handle of the player if they have one, otherwise their name
func (p *Player) DisplayName() string {
	if p.TwitterHandle != "" {
		return "@" + p.TwitterHandle
	}
	return p.Name
}

// StreamURL returns the link to the player's Twitch channel, or an empty string if they don't stream
func (p *Player) StreamURL() string {
	if !p.HasStream() {
		return ""
	}
	return "https://www.twitch.tv/" + p.TwitchChannel
}

// Viewership maps streaming players to their current viewer count. Players that are not live have a count of 0
type Viewership map[*Player]int

// Top returns the player with the highest viewer count and that count. Returns nil if the map is empty
func (v Viewership) Top() (*Player, int) {
	var top *Player
	highest := -1
	for player, viewers := range v {
		if player == nil {
			continue
		}
		// Ties are broken by name so the result does not depend on map order
		if top == nil || viewers > highest || (viewers == highest && player.Name < top.Name) {
			top = player
			highest = viewers
		}
	}
	if top == nil {
		return nil, 0
	}
	return top, highest
}
