package cli

import (
	"fmt"
	"os"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/internal/repo"
	"github.com/chainlog-project/chainlog/pkg/color"
	"github.com/chainlog-project/chainlog/pkg/config"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/logging"
)

// Exit codes. Missing artifacts are distinguishable from integrity
// failures so operators know whether to re-snapshot or investigate
// tampering.
const (
	exitFailure  = 1
	exitNotFound = 2
)

// requireLedger discovers the ledger from CWD and loads its config, or
// exits with an error.
func requireLedger() (*repo.Ledger, *config.Config) {
	cwd, err := os.Getwd()
	if err != nil {
		fmtErr("cannot get current directory: %v", err)
		os.Exit(exitFailure)
	}
	l, err := repo.Discover(cwd)
	if err != nil {
		fmtErr("not a chainlog ledger (run 'chainlog init' first): %v", err)
		os.Exit(exitFailure)
	}

	cfg, err := config.Load(l.Root)
	if err != nil {
		fmtErr("load config: %v", err)
		os.Exit(exitFailure)
	}

	logging.SetGlobal(logging.NewLogger(
		logging.Level(cfg.Logging.Level),
		logging.Format(cfg.Logging.Format),
	))

	return l, cfg
}

// requireJournal resolves the journal named by --journal, or exits.
func requireJournal() (*repo.Ledger, *config.Config, *journal.Journal) {
	l, cfg := requireLedger()
	j, err := journal.Open(l, journalName)
	if err != nil {
		fmtErr("%v", err)
		os.Exit(exitNotFound)
	}
	return l, cfg, j
}

// exitCode maps a ledger error to the CLI exit code.
func exitCode(err error) int {
	if errclass.IsMissingArtifact(err) {
		return exitNotFound
	}
	return exitFailure
}

func fmtErr(format string, args ...any) {
	prefix := "chainlog: "
	if color.Enabled() {
		prefix = color.Error("chainlog:") + " "
	}
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}
