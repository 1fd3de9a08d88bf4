package marketdata

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/advisor/market"
)

// Walk generates a seeded geometric random walk. The same seed always
// yields the same series, so dry runs are reproducible.
type Walk struct {
	mu    sync.Mutex
	rng   *rand.Rand
	start float64
	bars  int
	step  time.Duration
	from  time.Time
	last  float64
}

// NewWalk returns a generator starting at the given price, producing
// bars candles per Fetch at the given step interval.
func NewWalk(seed int64, start float64, bars int, step time.Duration) *Walk {
	return &Walk{
		rng:   rand.New(rand.NewSource(seed)),
		start: start,
		bars:  bars,
		step:  step,
		from:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		last:  start,
	}
}

// Fetch continues the walk from where the previous call left off, so
// successive cycles see a coherent price history.
func (w *Walk) Fetch(_ context.Context, _, _ string) (market.Series, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.bars <= 0 {
		return nil, fmt.Errorf("walk: bars must be positive, got %d", w.bars)
	}

	series := make(market.Series, w.bars)
	for i := range series {
		open := w.last
		// ±0.5% per bar around a flat drift.
		change := 1 + (w.rng.Float64()-0.5)*0.01
		close := open * change
		high, low := open, close
		if close > open {
			high = close
			low = open
		}
		series[i] = market.Candle{
			Time:   w.from,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: 1000 + w.rng.Float64()*9000,
		}
		w.from = w.from.Add(w.step)
		w.last = close
	}
	return series, nil
}
