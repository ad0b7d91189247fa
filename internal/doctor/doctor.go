// Package doctor performs ledger health checks: torn appends, expired
// locks, stale manifests, leftover temp files. All checks are
// read-only.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/internal/ledger"
	"github.com/chainlog-project/chainlog/internal/lock"
	"github.com/chainlog-project/chainlog/internal/repo"
	"github.com/chainlog-project/chainlog/internal/snapshot"
	"github.com/chainlog-project/chainlog/internal/verify"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/fsutil"
	"github.com/chainlog-project/chainlog/pkg/model"
)

// Finding represents a detected issue.
type Finding struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Journal     string `json:"journal,omitempty"`
	Path        string `json:"path,omitempty"`
}

// Result contains doctor check results.
type Result struct {
	Healthy  bool      `json:"healthy"`
	Findings []Finding `json:"findings"`
}

// Doctor performs ledger health checks.
type Doctor struct {
	ledger *repo.Ledger
}

// NewDoctor creates a new doctor.
func NewDoctor(l *repo.Ledger) *Doctor {
	return &Doctor{ledger: l}
}

// Check runs all diagnostic checks. With strict, every journal's full
// chain is verified from genesis, which reads every log file.
func (d *Doctor) Check(strict bool) (*Result, error) {
	result := &Result{Healthy: true}

	d.checkFormatVersion(result)

	mgr := journal.NewManager(d.ledger)
	names, err := mgr.List()
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}

	for _, name := range names {
		j, err := journal.Open(d.ledger, name)
		if err != nil {
			d.add(result, Finding{
				Category:    "journal",
				Description: fmt.Sprintf("cannot open journal: %v", err),
				Severity:    "error",
				Journal:     name,
			})
			continue
		}

		d.checkChainHead(result, j)
		d.checkWriterLock(result, j)
		d.checkManifests(result, j)
		d.checkTempFiles(result, j)

		if strict {
			d.checkFullChain(result, j)
		}
	}

	return result, nil
}

func (d *Doctor) add(result *Result, f Finding) {
	if f.Severity == "critical" || f.Severity == "error" {
		result.Healthy = false
	}
	result.Findings = append(result.Findings, f)
}

func (d *Doctor) checkFormatVersion(result *Result) {
	if d.ledger.FormatVersion > repo.FormatVersion {
		d.add(result, Finding{
			Category:    "format",
			Description: fmt.Sprintf("format version %d exceeds supported %d", d.ledger.FormatVersion, repo.FormatVersion),
			Severity:    "critical",
		})
	}
}

// checkChainHead detects torn appends: the chain-state pointer must
// equal the chain_hash of the last record in the journal's newest log.
func (d *Doctor) checkChainHead(result *Result, j *journal.Journal) {
	head, err := ledger.ReadChainHead(j)
	if err != nil {
		d.add(result, Finding{
			Category:    "chain_head",
			Description: err.Error(),
			Severity:    "critical",
			Journal:     j.Name,
			Path:        j.ChainHeadPath(),
		})
		return
	}

	days, err := j.LogDays()
	if err != nil {
		d.add(result, Finding{
			Category:    "chain_head",
			Description: fmt.Sprintf("cannot list log days: %v", err),
			Severity:    "error",
			Journal:     j.Name,
		})
		return
	}

	if len(days) == 0 {
		if head != model.GenesisHash {
			d.add(result, Finding{
				Category:    "chain_head",
				Description: "chain head set but journal has no logs",
				Severity:    "critical",
				Journal:     j.Name,
				Path:        j.ChainHeadPath(),
			})
		}
		return
	}

	last := days[len(days)-1]
	events, _, err := ledger.ReadDay(j, last)
	if err != nil {
		d.add(result, Finding{
			Category:    "chain_head",
			Description: fmt.Sprintf("cannot read newest log %s: %v", last, err),
			Severity:    "error",
			Journal:     j.Name,
			Path:        j.LogPath(last),
		})
		return
	}
	if len(events) == 0 {
		return
	}

	tip := events[len(events)-1].ChainHash
	if head != tip {
		d.add(result, Finding{
			Category:    "chain_head",
			Description: fmt.Sprintf("chain head %s does not match log tip %s (torn append?)", head, tip),
			Severity:    "critical",
			Journal:     j.Name,
			Path:        j.ChainHeadPath(),
		})
	}
}

func (d *Doctor) checkWriterLock(result *Result, j *journal.Journal) {
	mgr := lock.NewManager(j, model.LockPolicy{})
	state, rec, err := mgr.Status()
	if err != nil {
		d.add(result, Finding{
			Category:    "lock",
			Description: fmt.Sprintf("cannot read writer lock: %v", err),
			Severity:    "error",
			Journal:     j.Name,
			Path:        j.LockPath(),
		})
		return
	}
	if state == model.LockStateExpired {
		d.add(result, Finding{
			Category:    "lock",
			Description: fmt.Sprintf("writer lock expired at %s (holder %s)", rec.ExpiresAt.Format(time.RFC3339), rec.HolderNonce),
			Severity:    "warning",
			Journal:     j.Name,
			Path:        j.LockPath(),
		})
	}
}

// checkManifests flags days whose manifest no longer matches the log's
// entry count, and closed days that were never snapshotted.
func (d *Doctor) checkManifests(result *Result, j *journal.Journal) {
	days, err := j.LogDays()
	if err != nil {
		return
	}
	today := model.Today()

	for _, day := range days {
		manifest, err := snapshot.LoadManifest(j, day)
		if err != nil {
			if errclass.IsMissingArtifact(err) {
				if day < today {
					d.add(result, Finding{
						Category:    "manifest",
						Description: fmt.Sprintf("closed day %s has no manifest", day),
						Severity:    "warning",
						Journal:     j.Name,
					})
				}
				continue
			}
			d.add(result, Finding{
				Category:    "manifest",
				Description: err.Error(),
				Severity:    "error",
				Journal:     j.Name,
				Path:        j.ManifestPath(day),
			})
			continue
		}

		events, _, err := ledger.ReadDay(j, day)
		if err != nil {
			continue // reported by other checks
		}
		if manifest.Entries != len(events) {
			d.add(result, Finding{
				Category:    "manifest",
				Description: fmt.Sprintf("manifest for %s covers %d entries, log has %d (re-snapshot needed)", day, manifest.Entries, len(events)),
				Severity:    "warning",
				Journal:     j.Name,
				Path:        j.ManifestPath(day),
			})
		}
	}
}

func (d *Doctor) checkTempFiles(result *Result, j *journal.Journal) {
	filepath.Walk(j.Dir(), func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), fsutil.TempPrefix) {
			d.add(result, Finding{
				Category:    "temp_file",
				Description: "leftover temp file from an interrupted write",
				Severity:    "warning",
				Journal:     j.Name,
				Path:        path,
			})
		}
		return nil
	})
}

func (d *Doctor) checkFullChain(result *Result, j *journal.Journal) {
	results, err := verify.NewVerifier(j).VerifyAll()
	if err == nil {
		return
	}
	for _, r := range results {
		if r.Error == "" {
			continue
		}
		d.add(result, Finding{
			Category:    "integrity",
			Description: fmt.Sprintf("day %s: %s", r.Day, r.Error),
			Severity:    "critical",
			Journal:     j.Name,
			Path:        j.LogPath(r.Day),
		})
	}
}
