/* bot_runtime.go
 * Contains runtime-only Discord methods that use *discordgo.Session directly.
 * Delegates to testable handlers in handlers.go to avoid code duplication.
 * Authors: Zachary Bower
 */

package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// OpenDiscord connects to Discord when a token is configured. Without a token the mirror stays disabled
func (b *Bot) OpenDiscord() error {
	if b.Options.DiscordToken == "" {
		log.Info().Str("category", "bot").Msg("no discord token, discord mirror disabled")
		return nil
	}

	discord, err := discordgo.New("Bot " + b.Options.DiscordToken)
	if err != nil {
		return fmt.Errorf("error creating discord session: %w", err)
	}
	discord.AddHandler(b.newMessage)
	if err := discord.Open(); err != nil {
		return fmt.Errorf("error opening discord session: %w", err)
	}

	b.discord = discord
	b.Session = discord
	log.Info().Str("category", "bot").Str("channel_id", b.Options.ChannelID).Msg("discord mirror connected")
	return nil
}

// CloseDiscord closes the Discord session if one is open
func (b *Bot) CloseDiscord() error {
	if b.discord == nil {
		return nil
	}
	err := b.discord.Close()
	b.discord = nil
	b.Session = nil
	return err
}

// newMessage delegates to the testable newMessageHandler
// *discordgo.Session implements DiscordSession interface
func (b *Bot) newMessage(discord *discordgo.Session, message *discordgo.MessageCreate) {
	b.newMessageHandler(discord, message, discord.State.User.ID)
}
