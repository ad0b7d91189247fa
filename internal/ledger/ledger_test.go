package ledger_test

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/internal/ledger"
	"github.com/chainlog-project/chainlog/internal/lock"
	"github.com/chainlog-project/chainlog/internal/repo"
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

func TestAppender_FirstEventChainsFromGenesis(t *testing.T) {
	j := newTestJournal(t)
	appender := newTestAppender(j)

	ev, err := appender.Append(json.RawMessage(`{"action":"deploy"}`))
	require.NoError(t, err)

	assert.Equal(t, model.GenesisHash, ev.PrevHash)
	assert.Len(t, string(ev.ContentHash), 64)
	assert.Equal(t, canonical.Combine(ev.PrevHash, ev.ContentHash), ev.ChainHash)

	// Content hash is recomputable from the stored fields.
	recomputed, err := canonical.ContentDigest(ev.Timestamp, ev.Content)
	require.NoError(t, err)
	assert.Equal(t, ev.ContentHash, recomputed)
}

func TestAppender_ChainLinkage(t *testing.T) {
	j := newTestJournal(t)
	appender := newTestAppender(j)

	first, err := appender.Append(json.RawMessage(`{"n":1}`))
	require.NoError(t, err)
	second, err := appender.Append(json.RawMessage(`{"n":2}`))
	require.NoError(t, err)
	third, err := appender.Append(json.RawMessage(`{"n":3}`))
	require.NoError(t, err)

	assert.Equal(t, first.ChainHash, second.PrevHash)
	assert.Equal(t, second.ChainHash, third.PrevHash)

	head, err := ledger.ReadChainHead(j)
	require.NoError(t, err)
	assert.Equal(t, third.ChainHash, head)
}

func TestAppender_PersistsJSONL(t *testing.T) {
	j := newTestJournal(t)
	appender := newTestAppender(j)

	ev, err := appender.Append(json.RawMessage(`{"action":"deploy","version":"1.4.2"}`))
	require.NoError(t, err)

	events, size, err := ledger.ReadDay(j, ev.Day())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Greater(t, size, int64(0))
	assert.Equal(t, ev.ChainHash, events[0].ChainHash)
	assert.JSONEq(t, `{"action":"deploy","version":"1.4.2"}`, string(events[0].Content))
}

func TestAppender_ReleasesLockBetweenAppends(t *testing.T) {
	j := newTestJournal(t)
	appender := newTestAppender(j)

	_, err := appender.Append(json.RawMessage(`{"n":1}`))
	require.NoError(t, err)

	// The writer lock is not held outside Append.
	locks := lock.NewManager(j, model.LockPolicy{DefaultLeaseTTL: time.Minute})
	state, _, err := locks.Status()
	require.NoError(t, err)
	assert.Equal(t, model.LockStateFree, state)
}

func TestAppender_ConcurrentAppends(t *testing.T) {
	j := newTestJournal(t)
	appender := newTestAppender(j)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = appender.Append(json.RawMessage(`{"n":1}`))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "append %d", i)
	}

	events, _, err := ledger.ReadDay(j, model.Today())
	require.NoError(t, err)
	require.Len(t, events, n)

	// Every record links to its predecessor.
	prev := model.GenesisHash
	for i, ev := range events {
		assert.Equal(t, prev, ev.PrevHash, "record %d", i)
		assert.Equal(t, canonical.Combine(prev, ev.ContentHash), ev.ChainHash, "record %d", i)
		prev = ev.ChainHash
	}
}

func TestReadDay_Missing(t *testing.T) {
	j := newTestJournal(t)

	_, _, err := ledger.ReadDay(j, model.Day("2020-01-01"))
	assert.True(t, errors.Is(err, errclass.ErrLogNotFound))
}

func TestReadDay_ToleratesTornFinalLine(t *testing.T) {
	j := newTestJournal(t)
	appender := newTestAppender(j)

	first, err := appender.Append(json.RawMessage(`{"n":1}`))
	require.NoError(t, err)

	// Simulate a crash mid-append: a partial, unterminated record.
	logPath := j.LogPath(first.Day())
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"ts":"2026-08-29T10:`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, _, err := ledger.ReadDay(j, first.Day())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, first.ChainHash, events[0].ChainHash)
}

func TestReadDay_MalformedInteriorLineIsCorruption(t *testing.T) {
	j := newTestJournal(t)
	appender := newTestAppender(j)

	first, err := appender.Append(json.RawMessage(`{"n":1}`))
	require.NoError(t, err)

	// A damaged line followed by valid records is not a torn append.
	logPath := j.LogPath(first.Day())
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("garbage not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = appender.Append(json.RawMessage(`{"n":2}`))
	require.NoError(t, err)

	_, _, err = ledger.ReadDay(j, first.Day())
	assert.True(t, errors.Is(err, errclass.ErrLedgerCorrupt))
}

func TestReadChainHead_DefaultsToGenesis(t *testing.T) {
	j := newTestJournal(t)

	head, err := ledger.ReadChainHead(j)
	require.NoError(t, err)
	assert.Equal(t, model.GenesisHash, head)
}

func TestReadChainHead_RejectsMalformed(t *testing.T) {
	j := newTestJournal(t)
	require.NoError(t, os.WriteFile(j.ChainHeadPath(), []byte("not-a-hash\n"), 0644))

	_, err := ledger.ReadChainHead(j)
	assert.True(t, errors.Is(err, errclass.ErrLedgerCorrupt))
}

func TestWriteChainHead_RoundTrip(t *testing.T) {
	j := newTestJournal(t)
	want := canonical.Sum([]byte("head"))

	require.NoError(t, ledger.WriteChainHead(j, want))

	head, err := ledger.ReadChainHead(j)
	require.NoError(t, err)
	assert.Equal(t, want, head)
}
