/* roster.go
 * Contains the logic used to read the roster of tracked players from a delimited text file. The file has a header line
 * followed by rows of: name, role, team, twitter handle, twitch name, account names (comma separated)
 * Authors: Zachary Bower
 */

package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"lolpro-bot/api/shared"

	"github.com/go-andiamo/splitter"
	"github.com/rs/zerolog/log"
)

const (
	// Number of columns in a roster row. The last column holds every account name of the player
	numFields = 6

	// Name used by roster maintainers for a player whose identity is not known yet
	unknownName = "UNKNOWN"

	// Placeholder for a social handle the player does not have
	noHandle = "-"
)

// Options control which roster rows are loaded
type Options struct {
	// SkipUnknown drops rows without any account name or whose name is UNKNOWN
	SkipUnknown bool
}

// Load reads the roster file at path.
// Preconditions: Receives path to the roster file and loading options
// Postconditions: Returns the players in file order, or an error if the file can't be read or a row is malformed
func Load(path string, opts Options) ([]*shared.Player, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening roster file: %w", err)
	}
	defer file.Close()

	players, err := Parse(file, opts)
	if err != nil {
		return nil, fmt.Errorf("error reading roster file %s: %w", path, err)
	}
	return players, nil
}

// Parse reads roster rows from r. The first line is a header and is skipped.
// Preconditions: Receives reader positioned at the header line and loading options
// Postconditions: Returns the players in input order, or an error naming the first malformed line
func Parse(r io.Reader, opts Options) ([]*shared.Player, error) {
	// Quote aware so an account list can be written as "name one,name two"
	commaSplitter, err := splitter.NewSplitter(',', splitter.DoubleQuotes)
	if err != nil {
		return nil, err
	}

	players := []*shared.Player{}
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if lineNumber == 1 || line == "" {
			continue
		}

		fields, err := commaSplitter.Split(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		player, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}

		if opts.SkipUnknown && (len(player.Accounts) == 0 || player.Name == unknownName) {
			log.Debug().Str("category", "roster").Int("line", lineNumber).Str("player", player.Name).Msg("skipping roster row")
			continue
		}
		players = append(players, player)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	log.Info().Str("category", "roster").Int("players", len(players)).Msg("roster loaded")
	return players, nil
}

// parseRow converts the fields of one roster row into a Player
// Preconditions: Receives the fields of the row as split on commas outside quotes
// Postconditions: Returns the player, or an error if there are fewer than 6 fields. Fields past the 5th are all account names
func parseRow(fields []string) (*shared.Player, error) {
	if len(fields) < numFields {
		return nil, fmt.Errorf("expected %d fields, got %d", numFields, len(fields))
	}
	for i := range fields {
		fields[i] = unquote(fields[i])
	}

	var accounts []shared.Account
	for _, field := range fields[numFields-1:] {
		for _, name := range strings.Split(field, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				accounts = append(accounts, shared.Account{Name: name})
			}
		}
	}

	return &shared.Player{
		Name:          fields[0],
		Role:          shared.ParseRole(fields[1]),
		Team:          fields[2],
		TwitterHandle: handle(fields[3]),
		TwitchChannel: strings.ToLower(handle(fields[4])),
		Accounts:      accounts,
	}, nil
}

func unquote(field string) string {
	field = strings.TrimSpace(field)
	if len(field) >= 2 && strings.HasPrefix(field, "\"") && strings.HasSuffix(field, "\"") {
		field = strings.TrimSpace(field[1 : len(field)-1])
	}
	return field
}

func handle(field string) string {
	field = strings.TrimPrefix(field, "@")
	if field == noHandle {
		return ""
	}
	return field
}
