package ledger

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/model"
)

// ReadDay reads all events for a day in file order (append order, hence
// chronological) and returns them with the log's size in bytes.
//
// A final line that does not parse and is not newline-terminated is the
// remnant of a torn append; it is ignored so readers always observe a
// consistent prefix of the log. A malformed interior line means the log
// itself is damaged and is reported as corruption.
//
// Returns ErrLogNotFound if the day has no log file.
func ReadDay(j *journal.Journal, day model.Day) ([]model.Event, int64, error) {
	data, err := os.ReadFile(j.LogPath(day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, errclass.ErrLogNotFound.WithMessagef(
				"journal %s has no log for %s", j.Name, day)
		}
		return nil, 0, err
	}

	size := int64(len(data))
	terminated := len(data) > 0 && data[len(data)-1] == '\n'
	lines := bytes.Split(data, []byte{'\n'})
	// Split leaves one empty trailing element for a terminated file.
	if terminated {
		lines = lines[:len(lines)-1]
	}

	events := make([]model.Event, 0, len(lines))
	for i, line := range lines {
		var ev model.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			if i == len(lines)-1 && !terminated {
				// Incomplete trailing record from an interrupted append.
				break
			}
			return nil, 0, errclass.ErrLedgerCorrupt.WithMessagef(
				"journal %s log %s: malformed record at line %d", j.Name, day, i+1)
		}
		events = append(events, ev)
	}

	return events, size, nil
}
