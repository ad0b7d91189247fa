package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/chainlog-project/chainlog/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay_Valid(t *testing.T) {
	day, err := model.ParseDay("2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, model.Day("2026-08-29"), day)
}

func TestParseDay_Invalid(t *testing.T) {
	cases := []string{
		"",
		"2026-8-29",
		"2026/08/29",
		"20260829",
		"2026-13-01",
		"2026-02-30",
		"not-a-day",
		"2026-08-29T10:00:00Z",
	}
	for _, c := range cases {
		_, err := model.ParseDay(c)
		assert.Error(t, err, "expected %q to be rejected", c)
	}
}

func TestDay_Time(t *testing.T) {
	day := model.Day("2026-08-29")
	instant, err := day.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), instant)
}

func TestToday_Format(t *testing.T) {
	_, err := model.ParseDay(string(model.Today()))
	assert.NoError(t, err)
}

func TestNewTimestamp_UTCMicroseconds(t *testing.T) {
	instant := time.Date(2026, 8, 29, 12, 30, 45, 123456789, time.FixedZone("CEST", 2*3600))
	ts := model.NewTimestamp(instant)

	// Converted to UTC, truncated to microseconds.
	assert.Equal(t, "2026-08-29T10:30:45.123456Z", ts)

	parsed, err := time.Parse(model.TimestampLayout, ts)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())
}

func TestEvent_Day(t *testing.T) {
	ev := &model.Event{Timestamp: "2026-08-29T10:30:45.123456Z"}
	assert.Equal(t, model.Day("2026-08-29"), ev.Day())

	empty := &model.Event{}
	assert.Equal(t, model.Day(""), empty.Day())
}

func TestEvent_JSONFieldNames(t *testing.T) {
	ev := &model.Event{
		Timestamp:   "2026-08-29T10:30:45.123456Z",
		Content:     json.RawMessage(`{"n":1}`),
		ContentHash: "aa",
		PrevHash:    model.GenesisHash,
		ChainHash:   "bb",
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"ts", "content", "content_hash", "prev_hash", "chain_hash"} {
		assert.Contains(t, fields, key)
	}
	assert.Len(t, fields, 5)
}

func TestGenesisHash_Shape(t *testing.T) {
	assert.Len(t, string(model.GenesisHash), 64)
	for _, c := range string(model.GenesisHash) {
		assert.Equal(t, '0', c)
	}
}

func TestLockRecord_IsExpired(t *testing.T) {
	now := time.Now()
	rec := &model.LockRecord{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, rec.IsExpired(now))
	assert.True(t, rec.IsExpired(now.Add(2*time.Minute)))
}
