// Package ledger implements the hash-chain event writer and the log
// read path. Every event is linked to its predecessor through
// chain_hash = SHA-256(prev_hash || content_hash), so the day logs form
// one continuous tamper-evident chain per journal.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/internal/lock"
	"github.com/chainlog-project/chainlog/pkg/canonical"
	"github.com/chainlog-project/chainlog/pkg/logging"
	"github.com/chainlog-project/chainlog/pkg/model"
)

// Appender appends events to a journal's day logs, threading the hash
// chain forward from the persisted chain-state pointer.
type Appender struct {
	journal *journal.Journal
	locks   *lock.Manager
	mu      sync.Mutex
}

// NewAppender creates an appender for the journal. The lock manager
// guards the read-pointer, append, write-pointer critical section
// against concurrent writers in other processes; the internal mutex
// serializes appends within this one.
func NewAppender(j *journal.Journal, locks *lock.Manager) *Appender {
	return &Appender{
		journal: j,
		locks:   locks,
	}
}

// Append records a new event with the given structured content and
// returns it. content must be valid JSON; use
// canonical.NormalizeContent for raw caller input.
//
// The log line is written and fsynced before the chain-state pointer
// is updated: a crash between the two leaves the pointer one event
// behind, which doctor reports as a torn append.
func (a *Appender) Append(content json.RawMessage) (*model.Event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, err := a.locks.AcquireOrSteal("append")
	if err != nil {
		return nil, fmt.Errorf("acquire writer lock: %w", err)
	}
	defer func() {
		if relErr := a.locks.Release(rec.HolderNonce); relErr != nil {
			logging.ErrorErr("release writer lock", relErr, map[string]any{
				"journal": a.journal.Name,
			})
		}
	}()

	prevHash, err := ReadChainHead(a.journal)
	if err != nil {
		return nil, err
	}

	ts := model.NewTimestamp(time.Now())
	contentHash, err := canonical.ContentDigest(ts, content)
	if err != nil {
		return nil, err
	}

	event := &model.Event{
		Timestamp:   ts,
		Content:     content,
		ContentHash: contentHash,
		PrevHash:    prevHash,
		ChainHash:   canonical.Combine(prevHash, contentHash),
	}

	if err := a.writeRecord(event); err != nil {
		return nil, err
	}

	if err := WriteChainHead(a.journal, event.ChainHash); err != nil {
		// The log append already succeeded; the ledger is now
		// inconsistent until the pointer is repaired. Surface the
		// error rather than pretending the append failed.
		return nil, fmt.Errorf("event %s appended but chain head not updated: %w", event.ChainHash, err)
	}

	logging.Debug("event appended", map[string]any{
		"journal":    a.journal.Name,
		"day":        string(event.Day()),
		"chain_hash": string(event.ChainHash),
	})

	return event, nil
}

func (a *Appender) writeRecord(event *model.Event) error {
	// Canonical line encoding keeps content_hash recomputation
	// deterministic for the verifier.
	line, err := canonical.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	file, err := os.OpenFile(a.journal.LogPath(event.Day()), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open day log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write event record: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync day log: %w", err)
	}

	return nil
}
