// Package journal manages named journals: independent hash chains
// partitioned into daily log files under one ledger root.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chainlog-project/chainlog/internal/repo"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/fsutil"
	"github.com/chainlog-project/chainlog/pkg/model"
	"github.com/chainlog-project/chainlog/pkg/pathutil"
)

const (
	logSuffix      = ".jsonl"
	manifestSuffix = ".manifest.json"
)

// Journal resolves the on-disk paths of a single journal.
type Journal struct {
	ledgerRoot string
	Name       string
}

// Open returns a handle for an existing journal.
func Open(l *repo.Ledger, name string) (*Journal, error) {
	if err := pathutil.ValidateJournalName(name); err != nil {
		return nil, err
	}
	j := &Journal{ledgerRoot: l.Root, Name: name}
	if info, err := os.Stat(j.Dir()); err != nil || !info.IsDir() {
		return nil, errclass.ErrJournalNotFound.WithMessagef("journal %q does not exist", name)
	}
	return j, nil
}

// Dir returns the journal's metadata directory.
func (j *Journal) Dir() string {
	return filepath.Join(j.ledgerRoot, repo.ChainlogDirName, "journals", j.Name)
}

// LogPath returns the path of the day's event log.
func (j *Journal) LogPath(day model.Day) string {
	return filepath.Join(j.Dir(), "logs", string(day)+logSuffix)
}

// ManifestPath returns the path of the day's manifest.
func (j *Journal) ManifestPath(day model.Day) string {
	return filepath.Join(j.Dir(), "snapshots", string(day)+manifestSuffix)
}

// ChainHeadPath returns the path of the chain-state pointer.
func (j *Journal) ChainHeadPath() string {
	return filepath.Join(j.Dir(), "state", "chain_head")
}

// LockPath returns the path of the writer lock file.
func (j *Journal) LockPath() string {
	return filepath.Join(j.Dir(), "writer.lock")
}

// SessionPath returns the path of the lock session file.
func (j *Journal) SessionPath() string {
	return filepath.Join(j.Dir(), ".session")
}

// ConfigPath returns the path of the journal config file.
func (j *Journal) ConfigPath() string {
	return filepath.Join(j.Dir(), "config.json")
}

// LogDays lists the days that have a log file, sorted ascending.
// Lexicographic order of YYYY-MM-DD names is chronological order.
func (j *Journal) LogDays() ([]model.Day, error) {
	entries, err := os.ReadDir(filepath.Join(j.Dir(), "logs"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read logs directory: %w", err)
	}

	var days []model.Day
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		day, err := model.ParseDay(strings.TrimSuffix(name, logSuffix))
		if err != nil {
			continue // stray file, not a day log
		}
		days = append(days, day)
	}
	sort.Slice(days, func(a, b int) bool { return days[a] < days[b] })
	return days, nil
}

// ManifestDays lists the days that have a manifest, sorted ascending.
func (j *Journal) ManifestDays() ([]model.Day, error) {
	entries, err := os.ReadDir(filepath.Join(j.Dir(), "snapshots"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshots directory: %w", err)
	}

	var days []model.Day
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, manifestSuffix) {
			continue
		}
		day, err := model.ParseDay(strings.TrimSuffix(name, manifestSuffix))
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(a, b int) bool { return days[a] < days[b] })
	return days, nil
}

// Manager creates and lists journals.
type Manager struct {
	ledger *repo.Ledger
}

// NewManager creates a journal manager.
func NewManager(l *repo.Ledger) *Manager {
	return &Manager{ledger: l}
}

// Create initializes a new journal with an empty chain.
func (m *Manager) Create(name string) (*Journal, error) {
	if err := pathutil.ValidateJournalName(name); err != nil {
		return nil, err
	}

	j := &Journal{ledgerRoot: m.ledger.Root, Name: name}
	if _, err := os.Stat(j.Dir()); err == nil {
		return nil, errclass.ErrNameInvalid.WithMessagef("journal %q already exists", name)
	}

	for _, dir := range []string{
		j.Dir(),
		filepath.Join(j.Dir(), "logs"),
		filepath.Join(j.Dir(), "snapshots"),
		filepath.Join(j.Dir(), "state"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal directory %s: %w", dir, err)
		}
	}

	cfg := &model.JournalConfig{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Algo:      model.AlgoSHA256,
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal journal config: %w", err)
	}
	if err := fsutil.AtomicWrite(j.ConfigPath(), data, 0644); err != nil {
		return nil, fmt.Errorf("write journal config: %w", err)
	}

	return j, nil
}

// List returns all journals in the ledger, sorted by name.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.ledger.JournalsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read journals directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
