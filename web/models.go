/* models.go
 * Contains the configuration and response structs of the web server
 * Authors: Zachary Bower
 */

package web

import (
	"lolpro-bot/api/api"
	"lolpro-bot/api/store"
)

// Config holds the configuration for the web server
type Config struct {
	Addr string
	API  *api.API
}

// Server is the HTTP server exposing metrics and the state of the bot
type Server struct {
	api *api.API
}

type healthResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
}

type tweetsResponse struct {
	Tweets []store.TweetRecord `json:"tweets"`
}

type playerResponse struct {
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Team          string   `json:"team"`
	TwitterHandle string   `json:"twitter_handle,omitempty"`
	TwitchChannel string   `json:"twitch_channel,omitempty"`
	Accounts      []string `json:"accounts"`
}

type errorResponse struct {
	Error string `json:"error"`
}
