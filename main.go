/* main.go
 * The "main" method for running the bot. For details about the configuration see `environment/environment.go`
 * Usage: go run main.go -env=".env" -dry-run="false"
 * Authors: Zachary Bower
 */

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"lolpro-bot/api/api"
	"lolpro-bot/api/external"
	"lolpro-bot/api/logic"
	"lolpro-bot/api/metrics"
	"lolpro-bot/api/roster"
	"lolpro-bot/api/store"
	"lolpro-bot/bot"
	"lolpro-bot/environment"
	"lolpro-bot/logging"
	"lolpro-bot/web"

	"github.com/rs/zerolog/log"
)

func main() {
	//Flags
	envFilePtr := flag.String("env", ".env", "Path to the .env file, a missing file is ignored")
	dryRunPtr := flag.String("dry-run", "false", "Score and log matches without tweeting: takes true or false as argument")
	flag.Parse()

	dryRun, err := convertStrToBool(*dryRunPtr)
	if err != nil {
		log.Fatal().Err(err).Str("flag", *dryRunPtr).Msg("invalid \"dry-run\" flag, should be true or false")
	}

	env, err := environment.Load(*envFilePtr)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading configuration")
	}

	closeLog, err := logging.Setup(logging.Config{File: env.LogFile, Level: env.Level()})
	if err != nil {
		log.Fatal().Err(err).Msg("error setting up logging")
	}
	defer func() {
		if err := closeLog(); err != nil {
			log.Error().Err(err).Msg("error closing log file")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, env, dryRun); err != nil {
		log.Error().Str("category", "bot").Err(err).Msg("bot exited with an error")
		closeLog()
		os.Exit(1)
	}
}

// run wires the clients, store and API together and runs the bot until ctx is done
// Preconditions: Receives context, validated configuration and whether tweets should only be logged
// Postconditions: Returns nil after a clean shutdown, or the error that stopped the bot
func run(ctx context.Context, env *environment.Environment, dryRun bool) error {
	log.Info().Str("category", "bot").Object("config", env).Bool("dry_run", dryRun).Msg("starting lolpro-bot")

	m := metrics.New()
	riot := external.NewRiotClient(external.RiotConfig{
		APIKey:        env.RiotAPIKey,
		Region:        env.RiotRegion,
		BaseURL:       env.RiotBaseURL,
		CallDelay:     env.RiotCallDelay,
		Backoff:       env.RiotRateLimitBackoff,
		OnRateLimited: m.OnRateLimited,
	})
	twitch := external.NewTwitchClient(external.TwitchConfig{
		ClientID:      env.TwitchClientID,
		ClientSecret:  env.TwitchClientSecret,
		Backoff:       env.TwitchRateLimitBackoff,
		OnRateLimited: m.OnRateLimited,
	})
	twitter := external.NewTwitterClient(external.TwitterConfig{
		ConsumerKey:       env.TwitterConsumerKey,
		ConsumerSecret:    env.TwitterConsumerSecret,
		AccessToken:       env.TwitterAccessToken,
		AccessTokenSecret: env.TwitterAccessTokenSecret,
		Backoff:           env.TwitterRateLimitBackoff,
		OnRateLimited:     m.OnRateLimited,
	})

	st, err := newStore(ctx, env)
	if err != nil {
		return err
	}

	apiPtr, err := api.NewAPI(api.Config{
		RosterFile:    env.RosterFile,
		RosterOptions: roster.Options{SkipUnknown: env.RosterSkipUnknown},
		MinimumScore:  env.MinimumGameScoreToTweet,
		Score:         logic.ScoreConfig{MinTrackedPlayers: env.MinTrackedPlayers},
		DryRun:        dryRun,
	}, riot, twitch, twitter, st, m)
	if err != nil {
		st.Close(context.Background())
		return err
	}

	b, err := bot.NewBot(apiPtr, bot.Options{
		DiscordToken: env.DiscordToken,
		ChannelID:    env.DiscordChannelID,
		ScanInterval: env.ScanInterval,
		RunDuration:  env.RunDuration,
	})
	if err != nil {
		apiPtr.Close(context.Background())
		return err
	}

	if err := b.OpenDiscord(); err != nil {
		apiPtr.Close(context.Background())
		return err
	}
	defer func() {
		if err := b.CloseDiscord(); err != nil {
			log.Error().Str("category", "bot").Err(err).Msg("error closing discord session")
		}
	}()

	if env.MetricsAddr != "" {
		webCtx, cancelWeb := context.WithCancel(ctx)
		defer cancelWeb()
		go func() {
			if err := web.Start(webCtx, web.Config{Addr: env.MetricsAddr, API: apiPtr}); err != nil {
				log.Error().Str("category", "web").Err(err).Msg("http server stopped")
			}
		}()
	}

	return b.Run(ctx)
}

// newStore connects to MongoDB when MONGO_URI is set, otherwise the tweet log only lives as long as the process
func newStore(ctx context.Context, env *environment.Environment) (store.Interface, error) {
	if env.MongoURI == "" {
		log.Info().Str("category", "store").Msg("MONGO_URI not set, using in memory tweet log")
		return store.NewMemoryStore(), nil
	}
	s, err := store.NewStore(ctx, env.MongoDatabase, env.MongoURI)
	if err != nil {
		return nil, err
	}
	return s, nil
}
