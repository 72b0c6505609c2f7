/* handlers.go
 * Contains the Discord commands of the bot. Handlers accept the DiscordSession interface so they can be tested
 * without a connection
 * Authors: Zachary Bower
 */

package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"
	"github.com/rs/zerolog/log"
)

const (
	recentTweetsLimit = 5
	playerResultLimit = 5
	commandTimeout    = 10 * time.Second
)

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("LoL Pro Bot\n")
	res.WriteString("`$recent`: shows the most recently announced matches\n")
	res.WriteString("`$player name`: looks up tracked players by name, team or account. Names with spaces need to be encased in \" (e.g. \"Team Liquid\")\n")
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// recentHandler handles the $recent command with a DiscordSession interface
func (b *Bot) recentHandler(session DiscordSession, message *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	records, err := b.APIPtr.Tweets(ctx, recentTweetsLimit)
	if err != nil {
		log.Error().Str("category", "bot").Err(err).Msg("error listing tweets")
		session.ChannelMessageSend(message.ChannelID, "An error occurred getting recent announcements")
		return
	}
	if len(records) == 0 {
		session.ChannelMessageSend(message.ChannelID, "No matches announced yet")
		return
	}

	var res strings.Builder
	res.WriteString("Recent announcements:\n")
	for _, record := range records {
		fmt.Fprintf(&res, "- %s (%d): %s\n", record.TweetedAt.Format(time.RFC822), record.Score, strings.ReplaceAll(record.Text, "\n", " "))
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// playerHandler handles the $player command with a DiscordSession interface
func (b *Bot) playerHandler(session DiscordSession, message *discordgo.MessageCreate) {
	l := b.APIPtr.League()
	if l == nil {
		session.ChannelMessageSend(message.ChannelID, "The roster is still loading, try again shortly")
		return
	}

	// splitter keeps quoted names with spaces together, e.g. "Team Liquid"
	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	args, err := spaceSplitter.Split(message.Content)
	if err != nil || len(args) < 2 {
		session.ChannelMessageSend(message.ChannelID, "Usage: `$player name`")
		return
	}
	query := strings.Trim(strings.Join(args[1:], " "), "\"“”")

	players := l.Search(query)
	if len(players) == 0 {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("No tracked player matches '%s'", query))
		return
	}

	var res strings.Builder
	for i, player := range players {
		if i == playerResultLimit {
			fmt.Fprintf(&res, "...and %d more\n", len(players)-playerResultLimit)
			break
		}
		fmt.Fprintf(&res, "- %s (%s, %s)", player.Name, player.Team, player.Role)
		if url := player.StreamURL(); url != "" {
			fmt.Fprintf(&res, " %s", url)
		}
		res.WriteString("\n")
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author == nil || message.Author.ID == botUserID {
		return
	}

	switch {
	case startsWith(message.Content, "$help"):
		b.helpMessageHandler(session, message)

	case startsWith(message.Content, "$recent"):
		b.recentHandler(session, message)

	case startsWith(message.Content, "$player"):
		b.playerHandler(session, message)
	}
}
