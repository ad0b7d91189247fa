package snapshot

import (
	"encoding/json"
	"os"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/model"
)

// LoadManifest reads the day's persisted manifest.
// Returns ErrManifestNotFound if no snapshot was taken for the day.
func LoadManifest(j *journal.Journal, day model.Day) (*model.Manifest, error) {
	data, err := os.ReadFile(j.ManifestPath(day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrManifestNotFound.WithMessagef(
				"journal %s has no manifest for %s", j.Name, day)
		}
		return nil, err
	}

	var manifest model.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errclass.ErrLedgerCorrupt.WithMessagef(
			"journal %s manifest %s: %v", j.Name, day, err)
	}
	if manifest.Algo != model.AlgoSHA256 {
		return nil, errclass.ErrAlgoUnsupported.WithMessagef(
			"manifest %s uses algo %q (format v1 supports sha256 only)", day, manifest.Algo)
	}

	return &manifest, nil
}

// ListManifests returns all manifests of the journal in day order.
func ListManifests(j *journal.Journal) ([]*model.Manifest, error) {
	days, err := j.ManifestDays()
	if err != nil {
		return nil, err
	}

	manifests := make([]*model.Manifest, 0, len(days))
	for _, day := range days {
		m, err := LoadManifest(j, day)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}
