package ledger

import (
	"fmt"
	"os"
	"strings"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/fsutil"
	"github.com/chainlog-project/chainlog/pkg/model"
)

// ReadChainHead returns the journal's chain-state pointer: the
// chain_hash of the most recently appended event, or the genesis value
// if nothing has been appended yet.
func ReadChainHead(j *journal.Journal) (model.HashValue, error) {
	data, err := os.ReadFile(j.ChainHeadPath())
	if err != nil {
		if os.IsNotExist(err) {
			return model.GenesisHash, nil
		}
		return "", fmt.Errorf("read chain head: %w", err)
	}

	head := model.HashValue(strings.TrimSpace(string(data)))
	if !validHex64(head) {
		return "", errclass.ErrLedgerCorrupt.WithMessagef("malformed chain head %q", head)
	}
	return head, nil
}

// WriteChainHead atomically persists the chain-state pointer.
func WriteChainHead(j *journal.Journal, head model.HashValue) error {
	if err := fsutil.AtomicWrite(j.ChainHeadPath(), []byte(string(head)+"\n"), 0644); err != nil {
		return fmt.Errorf("write chain head: %w", err)
	}
	return nil
}

func validHex64(h model.HashValue) bool {
	if len(h) != 64 {
		return false
	}
	for _, c := range h {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
