package snapshot_test

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/internal/ledger"
	"github.com/chainlog-project/chainlog/internal/lock"
	"github.com/chainlog-project/chainlog/internal/repo"
	"github.com/chainlog-project/chainlog/internal/snapshot"
	"github.com/chainlog-project/chainlog/pkg/canonical"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *journal.Journal {
	t.Helper()
	l, err := repo.Init(t.TempDir())
	require.NoError(t, err)
	j, err := journal.NewManager(l).Create("main")
	require.NoError(t, err)
	return j
}

func newTestAppender(j *journal.Journal) *ledger.Appender {
	locks := lock.NewManager(j, model.LockPolicy{DefaultLeaseTTL: time.Minute})
	return ledger.NewAppender(j, locks)
}

func h(s string) model.HashValue {
	return canonical.Sum([]byte(s))
}

func TestMerkleRoot_Empty(t *testing.T) {
	assert.Equal(t, model.GenesisHash, snapshot.MerkleRoot(nil))
	assert.Equal(t, model.GenesisHash, snapshot.MerkleRoot([]model.HashValue{}))
}

func TestMerkleRoot_SingleLeaf(t *testing.T) {
	leaf := h("a")
	// An unpaired leaf is combined with itself.
	assert.Equal(t, canonical.Combine(leaf, leaf), snapshot.MerkleRoot([]model.HashValue{leaf}))
}

func TestMerkleRoot_TwoLeaves(t *testing.T) {
	a, b := h("a"), h("b")
	assert.Equal(t, canonical.Combine(a, b), snapshot.MerkleRoot([]model.HashValue{a, b}))
}

func TestMerkleRoot_ThreeLeaves(t *testing.T) {
	a, b, c := h("a"), h("b"), h("c")

	// Layer 1: [ab, cc], layer 2: [root].
	ab := canonical.Combine(a, b)
	cc := canonical.Combine(c, c)
	want := canonical.Combine(ab, cc)

	assert.Equal(t, want, snapshot.MerkleRoot([]model.HashValue{a, b, c}))
}

func TestMerkleRoot_OrderSensitive(t *testing.T) {
	a, b, c, d := h("a"), h("b"), h("c"), h("d")
	forward := snapshot.MerkleRoot([]model.HashValue{a, b, c, d})
	swapped := snapshot.MerkleRoot([]model.HashValue{a, c, b, d})
	assert.NotEqual(t, forward, swapped)
}

func TestMerkleRoot_DoesNotMutateInput(t *testing.T) {
	leaves := []model.HashValue{h("a"), h("b"), h("c")}
	copied := append([]model.HashValue(nil), leaves...)
	snapshot.MerkleRoot(leaves)
	assert.Equal(t, copied, leaves)
}

func TestCreator_SnapshotWritesManifest(t *testing.T) {
	j := newTestJournal(t)
	appender := newTestAppender(j)

	var chainHashes []model.HashValue
	for i := 0; i < 3; i++ {
		ev, err := appender.Append(json.RawMessage(`{"n":1}`))
		require.NoError(t, err)
		chainHashes = append(chainHashes, ev.ChainHash)
	}

	day := model.Today()
	manifest, path, err := snapshot.NewCreator(j).Snapshot(day)
	require.NoError(t, err)

	assert.Equal(t, day, manifest.Day)
	assert.Equal(t, 3, manifest.Entries)
	assert.Greater(t, manifest.Bytes, int64(0))
	assert.Equal(t, model.AlgoSHA256, manifest.Algo)
	assert.Equal(t, snapshot.MerkleRoot(chainHashes), manifest.MerkleRoot)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk model.Manifest
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, manifest.MerkleRoot, onDisk.MerkleRoot)
}

func TestCreator_SnapshotDeterministic(t *testing.T) {
	j := newTestJournal(t)
	appender := newTestAppender(j)
	for i := 0; i < 5; i++ {
		_, err := appender.Append(json.RawMessage(`{"n":1}`))
		require.NoError(t, err)
	}

	day := model.Today()
	creator := snapshot.NewCreator(j)

	first, _, err := creator.Snapshot(day)
	require.NoError(t, err)
	second, _, err := creator.Snapshot(day)
	require.NoError(t, err)

	// Only the wall-clock ts may differ across runs.
	assert.Equal(t, first.MerkleRoot, second.MerkleRoot)
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Bytes, second.Bytes)
}

func TestCreator_SnapshotEmptyDay(t *testing.T) {
	j := newTestJournal(t)

	manifest, _, err := snapshot.NewCreator(j).Snapshot(model.Day("2026-08-01"))
	require.NoError(t, err)
	assert.Equal(t, 0, manifest.Entries)
	assert.Equal(t, int64(0), manifest.Bytes)
	assert.Equal(t, model.GenesisHash, manifest.MerkleRoot)
}

func TestLoadManifest_Missing(t *testing.T) {
	j := newTestJournal(t)

	_, err := snapshot.LoadManifest(j, model.Day("2020-01-01"))
	assert.True(t, errors.Is(err, errclass.ErrManifestNotFound))
}

func TestLoadManifest_RoundTrip(t *testing.T) {
	j := newTestJournal(t)
	day := model.Day("2026-08-01")

	created, _, err := snapshot.NewCreator(j).Snapshot(day)
	require.NoError(t, err)

	loaded, err := snapshot.LoadManifest(j, day)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}

func TestLoadManifest_RejectsUnknownAlgo(t *testing.T) {
	j := newTestJournal(t)
	day := model.Day("2026-08-01")

	require.NoError(t, os.WriteFile(j.ManifestPath(day),
		[]byte(`{"ts":"x","day":"2026-08-01","entries":0,"bytes":0,"merkle_root":"0","algo":"sha512"}`), 0644))

	_, err := snapshot.LoadManifest(j, day)
	assert.True(t, errors.Is(err, errclass.ErrAlgoUnsupported))
}

func TestLoadManifest_MalformedIsCorruption(t *testing.T) {
	j := newTestJournal(t)
	day := model.Day("2026-08-01")

	require.NoError(t, os.WriteFile(j.ManifestPath(day), []byte("not json"), 0644))

	_, err := snapshot.LoadManifest(j, day)
	assert.True(t, errors.Is(err, errclass.ErrLedgerCorrupt))
}

func TestListManifests(t *testing.T) {
	j := newTestJournal(t)
	creator := snapshot.NewCreator(j)

	for _, day := range []model.Day{"2026-08-03", "2026-08-01", "2026-08-02"} {
		_, _, err := creator.Snapshot(day)
		require.NoError(t, err)
	}

	manifests, err := snapshot.ListManifests(j)
	require.NoError(t, err)
	require.Len(t, manifests, 3)
	assert.Equal(t, model.Day("2026-08-01"), manifests[0].Day)
	assert.Equal(t, model.Day("2026-08-03"), manifests[2].Day)
}
