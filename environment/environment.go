/* environment.go
 * Contains the typed configuration of the bot, read from environment variables and an optional .env file
 * Authors: Zachary Bower
 */

package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	envLoader "github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Twitter asks clients to wait at least this long before retrying a rate limited request
const minTwitterBackoff = 5 * time.Second

// Environment holds every setting of the bot
type Environment struct {
	LogFile  string `env:"LOG_FILE" envDefault:"lolpro-bot.log"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	RosterFile        string `env:"ROSTER_FILE,required"`
	RosterSkipUnknown bool   `env:"ROSTER_SKIP_UNKNOWN" envDefault:"true"`

	RiotAPIKey           string        `env:"RIOT_API_KEY,required"`
	RiotRegion           string        `env:"RIOT_API_REGION,required"`
	RiotBaseURL          string        `env:"RIOT_BASE_URL"`
	RiotCallDelay        time.Duration `env:"RIOT_CALL_DELAY" envDefault:"1200ms"`
	RiotRateLimitBackoff time.Duration `env:"RIOT_RATE_LIMIT_BACKOFF" envDefault:"30s"`

	TwitchClientID         string        `env:"TWITCH_CLIENT_ID,required"`
	TwitchClientSecret     string        `env:"TWITCH_CLIENT_SECRET,required"`
	TwitchRateLimitBackoff time.Duration `env:"TWITCH_RATE_LIMIT_BACKOFF" envDefault:"10s"`

	TwitterConsumerKey       string        `env:"TWITTER_CONSUMER_KEY,required"`
	TwitterConsumerSecret    string        `env:"TWITTER_CONSUMER_SECRET,required"`
	TwitterAccessToken       string        `env:"TWITTER_ACCESS_TOKEN,required"`
	TwitterAccessTokenSecret string        `env:"TWITTER_ACCESS_TOKEN_SECRET,required"`
	TwitterRateLimitBackoff  time.Duration `env:"TWITTER_RATE_LIMIT_BACKOFF" envDefault:"30s"`
	MinimumGameScoreToTweet  int           `env:"MINIMUM_GAMESCORE_TO_TWEET,required"`
	MinTrackedPlayers        int           `env:"MIN_TRACKED_PLAYERS" envDefault:"2"`
	ScanInterval             time.Duration `env:"SCAN_INTERVAL,required"`
	RunDuration              time.Duration `env:"RUN_DURATION" envDefault:"0s"`

	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"lolpro_bot"`

	DiscordToken     string `env:"DISCORD_TOKEN"`
	DiscordChannelID string `env:"DISCORD_CHANNEL_ID"`

	MetricsAddr string `env:"METRICS_ADDR"`
}

// Load reads envFile into the process environment, then parses and validates the configuration.
// Preconditions: Receives path to a .env file, the file does not have to exist
// Postconditions: Returns the configuration, or an error naming every missing or invalid key
func Load(envFile string) (*Environment, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}
	return parse(envLoader.Options{})
}

// FromMap parses the configuration from vars instead of the process environment
func FromMap(vars map[string]string) (*Environment, error) {
	return parse(envLoader.Options{Environment: vars})
}

func parse(opts envLoader.Options) (*Environment, error) {
	e := &Environment{}
	if err := envLoader.ParseWithOptions(e, opts); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the values that the struct tags can't express
// Preconditions: Receives parsed configuration
// Postconditions: Returns nil if the configuration is usable, otherwise every problem joined into one error
func (e *Environment) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(e.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if e.ScanInterval <= 0 {
		errs = append(errs, fmt.Errorf("SCAN_INTERVAL must be positive, got %s", e.ScanInterval))
	}
	if e.RunDuration < 0 {
		errs = append(errs, fmt.Errorf("RUN_DURATION can't be negative, got %s", e.RunDuration))
	}
	if e.TwitterRateLimitBackoff < minTwitterBackoff {
		errs = append(errs, fmt.Errorf("TWITTER_RATE_LIMIT_BACKOFF must be at least %s, got %s", minTwitterBackoff, e.TwitterRateLimitBackoff))
	}
	if e.MinTrackedPlayers < 1 {
		errs = append(errs, fmt.Errorf("MIN_TRACKED_PLAYERS must be at least 1, got %d", e.MinTrackedPlayers))
	}
	if e.RiotCallDelay < 0 || e.RiotRateLimitBackoff < 0 || e.TwitchRateLimitBackoff < 0 {
		errs = append(errs, fmt.Errorf("call delays and backoffs can't be negative"))
	}
	if e.DiscordToken != "" && e.DiscordChannelID == "" {
		errs = append(errs, fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set"))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, info if it can't be parsed
func (e *Environment) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(e.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// MarshalZerologObject logs the configuration without any secret
func (e *Environment) MarshalZerologObject(event *zerolog.Event) {
	event.Str("roster_file", e.RosterFile).
		Bool("roster_skip_unknown", e.RosterSkipUnknown).
		Str("riot_region", e.RiotRegion).
		Dur("riot_call_delay", e.RiotCallDelay).
		Dur("scan_interval", e.ScanInterval).
		Dur("run_duration", e.RunDuration).
		Int("minimum_score", e.MinimumGameScoreToTweet).
		Int("min_tracked_players", e.MinTrackedPlayers).
		Bool("mongo", e.MongoURI != "").
		Bool("discord", e.DiscordToken != "").
		Str("metrics_addr", e.MetricsAddr)
}
