/* logging.go
 * Sets up the global zerolog logger. Every line is appended to the log file and echoed to the console
 * Authors: Zachary Bower
 */

package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the logging settings
type Config struct {
	File  string
	Level zerolog.Level
	// Console defaults to stderr
	Console io.Writer
}

// Setup replaces the global logger with one writing to cfg.File and cfg.Console
// Preconditions: Receives logging config. The directory of cfg.File must exist
// Postconditions: Returns a function that flushes and closes the log file, or an error if it can't be opened
func Setup(cfg Config) (func() error, error) {
	file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	writer := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: file, NoColor: true, TimeFormat: time.RFC3339},
		zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339},
	)
	zerolog.SetGlobalLevel(cfg.Level)
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	return func() error {
		if err := file.Sync(); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	}, nil
}
