// Package repo handles ledger root initialization and discovery.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/chainlog-project/chainlog/pkg/config"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/fsutil"
)

const (
	FormatVersion     = 1
	ChainlogDirName   = ".chainlog"
	FormatVersionFile = "format_version"
	LedgerIDFile      = "ledger_id"

	// DefaultJournal is created by Init and used when no journal is
	// named on the command line.
	DefaultJournal = "main"
)

// Ledger represents an initialized chainlog ledger root.
type Ledger struct {
	Root          string
	FormatVersion int
	LedgerID      string
}

// Init creates a new ledger at the specified path.
func Init(path string) (*Ledger, error) {
	chainlogDir := filepath.Join(path, ChainlogDirName)

	// The default journal itself is created by the journal manager;
	// Init only lays down the ledger root.
	dirs := []string{
		chainlogDir,
		filepath.Join(chainlogDir, "journals"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(filepath.Join(chainlogDir, FormatVersionFile),
		[]byte(strconv.Itoa(FormatVersion)+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write format_version: %w", err)
	}

	ledgerID := uuid.NewString()
	if err := os.WriteFile(filepath.Join(chainlogDir, LedgerIDFile),
		[]byte(ledgerID+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write ledger_id: %w", err)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	// Fsync parent to ensure durability
	if err := fsutil.FsyncDir(path); err != nil {
		return nil, fmt.Errorf("fsync ledger root: %w", err)
	}

	return &Ledger{
		Root:          path,
		FormatVersion: FormatVersion,
		LedgerID:      ledgerID,
	}, nil
}

// Discover walks up from cwd to find the ledger root (directory
// containing .chainlog/).
func Discover(cwd string) (*Ledger, error) {
	path := cwd
	for {
		chainlogDir := filepath.Join(path, ChainlogDirName)
		if info, err := os.Stat(chainlogDir); err == nil && info.IsDir() {
			version, err := readFormatVersion(chainlogDir)
			if err != nil {
				return nil, err
			}
			if version > FormatVersion {
				return nil, errclass.ErrFormatUnsupported.WithMessagef(
					"format version %d > supported %d", version, FormatVersion)
			}
			ledgerID, _ := readLedgerID(chainlogDir)
			return &Ledger{
				Root:          path,
				FormatVersion: version,
				LedgerID:      ledgerID,
			}, nil
		}

		parent := filepath.Dir(path)
		if parent == path {
			return nil, fmt.Errorf("no %s directory found in %s or any parent", ChainlogDirName, cwd)
		}
		path = parent
	}
}

// ChainlogDir returns the ledger's metadata directory.
func (l *Ledger) ChainlogDir() string {
	return filepath.Join(l.Root, ChainlogDirName)
}

// JournalsDir returns the directory holding all journals.
func (l *Ledger) JournalsDir() string {
	return filepath.Join(l.ChainlogDir(), "journals")
}

func readFormatVersion(chainlogDir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(chainlogDir, FormatVersionFile))
	if err != nil {
		return 0, fmt.Errorf("read format_version: %w", err)
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errclass.ErrFormatUnsupported.WithMessagef("malformed format_version: %q", string(data))
	}
	return version, nil
}

func readLedgerID(chainlogDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(chainlogDir, LedgerIDFile))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
