/* bot.go
 * Contains logic used for creating and running the bot. The bot scans for live matches every scan interval, publishes
 * the ones worth watching and mirrors each announcement to a Discord channel when one is configured
 * Authors: Zachary Bower
 */

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lolpro-bot/api/api"
	"lolpro-bot/api/store"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Time given to Close once the run context is done
const shutdownTimeout = 15 * time.Second

// Options holds the settings of a Bot
type Options struct {
	// DiscordToken and ChannelID enable the Discord mirror. Both are optional
	DiscordToken string
	ChannelID    string
	ScanInterval time.Duration
	// RunDuration stops the bot after that long. 0 runs until the context is cancelled
	RunDuration time.Duration
}

type Bot struct {
	APIPtr  *api.API
	Session DiscordSession
	Options Options

	discord *discordgo.Session
}

func NewBot(apiPtr *api.API, opts Options) (*Bot, error) {
	if apiPtr == nil {
		return nil, fmt.Errorf("api is required but none was provided")
	}
	if opts.ScanInterval <= 0 {
		return nil, fmt.Errorf("scan interval must be positive, got %s", opts.ScanInterval)
	}
	if opts.RunDuration < 0 {
		return nil, fmt.Errorf("run duration cannot be negative, got %s", opts.RunDuration)
	}

	return &Bot{
		APIPtr:  apiPtr,
		Options: opts,
	}, nil
}

// Run sets the API up and runs scan cycles separated by the scan interval
// Preconditions: Receives context, cancelling it stops the bot
// Postconditions: Returns nil once the context is done or the run duration elapsed, or the setup error. Close is
// always called on the API before returning
func (b *Bot) Run(ctx context.Context) (err error) {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := b.APIPtr.Close(closeCtx); closeErr != nil {
			log.Error().Str("category", "bot").Err(closeErr).Msg("error during shutdown")
		}
		log.Info().Str("category", "bot").Msg("bot stopped")
	}()

	if b.Options.RunDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Options.RunDuration)
		defer cancel()
	}

	if err := b.APIPtr.Setup(ctx); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	log.Info().Str("category", "bot").Dur("scan_interval", b.Options.ScanInterval).Dur("run_duration", b.Options.RunDuration).Msg("bot started")

	ticker := time.NewTicker(b.Options.ScanInterval)
	defer ticker.Stop()
	for {
		if _, err := b.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Str("category", "bot").Err(err).Msg("scan cycle failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunCycle scans for live matches, scores each one and publishes those that pass the gate
// Preconditions: Receives context. Setup must have succeeded
// Postconditions: Returns the records published during the cycle, or an error if the scan failed. A match that
// fails to publish is logged and the cycle moves on
func (b *Bot) RunCycle(ctx context.Context) ([]*store.TweetRecord, error) {
	matches, err := b.APIPtr.ScanActiveMatches(ctx)
	if err != nil {
		return nil, err
	}

	var published []*store.TweetRecord
	for _, m := range matches {
		report, err := b.APIPtr.ScoreMatch(ctx, m)
		if err != nil {
			return published, err
		}

		record, err := b.APIPtr.Publish(ctx, report)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return published, err
			}
			log.Error().Str("category", "publish").Err(err).Int64("match_id", m.ID).Msg("error publishing match")
			continue
		}
		if record != nil {
			published = append(published, record)
			b.announce(record)
		}
	}
	return published, nil
}

// announce mirrors a published record to the Discord channel. Failures are only logged
func (b *Bot) announce(record *store.TweetRecord) {
	if b.Session == nil || b.Options.ChannelID == "" {
		return
	}

	content := record.Text
	if record.DryRun {
		content = "[dry run] " + content
	}
	if _, err := b.Session.ChannelMessageSend(b.Options.ChannelID, content); err != nil {
		log.Warn().Str("category", "bot").Err(err).Int64("match_id", record.MatchID).Msg("error mirroring announcement to discord")
	}
}

// Helper function to check if a string starts with a given substring
// Preconditions: Receives an input string and a substring
// Postconditions: Returns true if the substring is at the start of the string, else returns false
func startsWith(inputString string, substring string) bool {
	return strings.HasPrefix(inputString, substring)
}
