// Package marketdata supplies candle series to the decision loop: CSV
// files for replaying recorded history, a seeded random walk for dry
// runs, and a static in-memory provider for wiring tests together.
package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/advisor/market"
)

// CSV reads candle series from per-symbol files in a directory. Fetch
// for symbol "BTC-USD" opens <dir>/BTC-USD.csv.
type CSV struct {
	dir string
}

func NewCSV(dir string) *CSV {
	return &CSV{dir: dir}
}

// Expected columns:
// time,open,high,low,close,volume
// Header allowed; volume may be omitted.
func (c *CSV) Fetch(_ context.Context, symbol, _ string) (market.Series, error) {
	f, err := os.Open(filepath.Join(c.dir, symbol+".csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCandles(f)
}

func readCandles(rd io.Reader) (market.Series, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	var series market.Series
	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			return series, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		c, ok, err := parseCandleRow(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		series = append(series, c)
	}
}

func parseCandleRow(row []string) (market.Candle, bool, error) {
	if len(row) < 5 {
		return market.Candle{}, false, fmt.Errorf("too few columns (expected >=5): %v", row)
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Candle{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return market.Candle{}, false, fmt.Errorf("bad time %q: %w", ts, err)
		}
		t = t2
	}

	var vals [4]float64
	names := [4]string{"open", "high", "low", "close"}
	for i := 0; i < 4; i++ {
		v, err := parseFloat(row[i+1])
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("bad %s %q: %w", names[i], row[i+1], err)
		}
		vals[i] = v
	}

	c := market.Candle{Time: t, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}
	if len(row) >= 6 && strings.TrimSpace(row[5]) != "" {
		v, err := parseFloat(row[5])
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("bad volume %q: %w", row[5], err)
		}
		c.Volume = v
	}
	return c, true, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
