package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/advisor/market"
)

func TestCSVFetch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := strings.Join([]string{
		"time,open,high,low,close,volume",
		"2024-01-01T00:00:00Z,100,105,99,104,1200",
		"2024-01-01T01:00:00Z,104,106,103,105,",
		"",
		"2024-01-01T02:00:00Z,105,107,104,106,900",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BTC-USD.csv"), []byte(data), 0o644))

	series, err := NewCSV(dir).Fetch(context.Background(), "BTC-USD", "1mo")
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series[0].Time)
	assert.InDelta(t, 104.0, series[0].Close, 1e-9)
	assert.InDelta(t, 1200.0, series[0].Volume, 1e-9)
	// Missing volume parses as zero.
	assert.InDelta(t, 0.0, series[1].Volume, 1e-9)
	assert.InDelta(t, 106.0, series[2].Close, 1e-9)
}

func TestCSVFetchMissingSymbol(t *testing.T) {
	t.Parallel()

	_, err := NewCSV(t.TempDir()).Fetch(context.Background(), "ETH-USD", "1mo")
	assert.Error(t, err)
}

func TestCSVFetchBadRow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := "2024-01-01T00:00:00Z,100,105,abc,104,1200\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BTC-USD.csv"), []byte(data), 0o644))

	_, err := NewCSV(dir).Fetch(context.Background(), "BTC-USD", "1mo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad low")
}

func TestWalkIsDeterministic(t *testing.T) {
	t.Parallel()

	a, err := NewWalk(42, 100, 60, time.Hour).Fetch(context.Background(), "BTC-USD", "1mo")
	require.NoError(t, err)
	b, err := NewWalk(42, 100, 60, time.Hour).Fetch(context.Background(), "BTC-USD", "1mo")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	require.Len(t, a, 60)
	assert.InDelta(t, 100.0, a[0].Open, 1e-9)
}

func TestWalkContinues(t *testing.T) {
	t.Parallel()

	w := NewWalk(1, 100, 10, time.Hour)
	first, err := w.Fetch(context.Background(), "BTC-USD", "1mo")
	require.NoError(t, err)
	second, err := w.Fetch(context.Background(), "BTC-USD", "1mo")
	require.NoError(t, err)

	// The second batch opens where the first closed.
	assert.InDelta(t, first[len(first)-1].Close, second[0].Open, 1e-9)
	assert.Equal(t, first[len(first)-1].Time.Add(time.Hour), second[0].Time)
}

func TestWalkCandleShape(t *testing.T) {
	t.Parallel()

	series, err := NewWalk(7, 100, 50, time.Hour).Fetch(context.Background(), "BTC-USD", "1mo")
	require.NoError(t, err)
	for _, c := range series {
		assert.GreaterOrEqual(t, c.High, c.Open)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
	}
}

func TestStaticFetch(t *testing.T) {
	t.Parallel()

	s := Static{"BTC-USD": market.Series{{Close: 100}}}

	series, err := s.Fetch(context.Background(), "BTC-USD", "1mo")
	require.NoError(t, err)
	assert.Len(t, series, 1)

	_, err = s.Fetch(context.Background(), "ETH-USD", "1mo")
	assert.Error(t, err)
}
