package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSVHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "outcomes.csv")

	j, err := NewCSV(path)
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	r := csv.NewReader(strings.NewReader(string(data)))
	header, err := r.Read()
	assert.NoError(t, err)

	want := []string{"time", "action", "symbol", "quantity", "price", "result"}
	assert.Equal(t, want, header)
}

func TestCSVRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "outcomes.csv")

	j, err := NewCSV(path)
	assert.NoError(t, err)

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	err = j.Record(OutcomeRecord{
		Time:     ts,
		Action:   "BUY",
		Symbol:   "ETH-USD",
		Quantity: 1.5,
		Price:    2500.25,
		Result:   0,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	r := csv.NewReader(strings.NewReader(string(data)))
	rows, err := r.ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, ts.Format(time.RFC3339), row[0])
	assert.Equal(t, "BUY", row[1])
	assert.Equal(t, "ETH-USD", row[2])
	assert.Equal(t, "1.500000", row[3])
	assert.Equal(t, "2500.250000", row[4])
	assert.Equal(t, "0.000000", row[5])
}
