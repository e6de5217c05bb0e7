package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jarvis/internal/decision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(reason string, i int) decision.Record {
	return decision.Record{
		TS:      time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
		Type:    decision.TypeTradeSkipped,
		Reason:  reason,
		Metrics: decision.Metrics{"i": i},
	}
}

func TestAppendAndTail(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "nested", "events.log"))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.Append(rec("WEAK_SIGNAL", i)))
	}

	got, err := f.Tail(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(4), got[0].Get("metrics.i").Int())
	assert.Equal(t, int64(2), got[2].Get("metrics.i").Int())
	assert.Equal(t, "2026-01-01T00:00:04Z", got[0].Get("ts").String())

	all, err := f.Tail(50)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestTailSkipsMalformed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "events.log")
	content := `{"ts":"a","type":"TRADE_SKIPPED","reason":"A","metrics":{}}
not json at all
{"ts":"b","type":"TRADE_SKIPPED","reason":"B","metrics":{}

{"ts":"c","type":"RISK_LOCKED","reason":"C","metrics":{}}
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	got, err := Tail(p, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Get("reason").String())
	assert.Equal(t, "A", got[1].Get("reason").String())
}

func TestTailSkipsOversizedLine(t *testing.T) {
	p := filepath.Join(t.TempDir(), "events.log")
	huge := `{"ts":"big","type":"TRADE_SKIPPED","reason":"BIG","metrics":{"blob":"` + strings.Repeat("x", maxLineSize+10) + `"}}`
	content := `{"ts":"a","type":"TRADE_SKIPPED","reason":"A","metrics":{}}` + "\n" +
		huge + "\n" +
		`{"ts":"c","type":"RISK_LOCKED","reason":"C","metrics":{}}`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	got, err := Tail(p, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Get("reason").String())
	assert.Equal(t, "A", got[1].Get("reason").String())
}

func TestTailMissingFile(t *testing.T) {
	got, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppendRejectsInvalidRecord(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "events.log"))
	require.NoError(t, err)

	bad := rec("lowercase reason", 1)
	assert.Error(t, f.Append(bad))

	bad = rec("OK", 1)
	bad.Type = "SOMETHING_ELSE"
	assert.Error(t, f.Append(bad))

	got, _ := f.Tail(10)
	assert.Empty(t, got)
}
