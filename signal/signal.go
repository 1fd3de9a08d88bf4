// Package signal turns a price series into moving averages, a
// relative-strength oscillator, and a discrete HOLD/BUY/SELL signal.
package signal

import (
	"fmt"

	"github.com/rustyeddy/advisor/market"
)

// Default windows for Compute. A snapshot classifies to BUY or SELL only
// once the series covers the long window; shorter histories stay HOLD.
const (
	DefaultShortWindow = 20
	DefaultLongWindow  = 50
	DefaultOscWindow   = 14
)

// Signal is the discrete classification of the latest bar.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

// String implements fmt.Stringer for pretty logging.
func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Snapshot is the derived view of the latest bar of a series. It is never
// stored; recompute it from the series whenever it is needed.
type Snapshot struct {
	Close      float64
	ShortMA    float64
	LongMA     float64
	Oscillator float64
	Signal     Signal
}

// MA calculates the trailing Simple Moving Average of closes for the given
// window. It returns an error when fewer than window candles exist.
func MA(candles market.Series, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(candles) < window {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", window, len(candles))
	}

	m := NewMA(window)
	for _, c := range candles {
		m.Update(c)
	}
	return m.Value(), nil
}

// RSI calculates the trailing relative-strength oscillator for the given
// window. It needs window+1 candles (one delta per window slot) and returns
// exactly 100 when the window holds no losing deltas.
func RSI(candles market.Series, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(candles) < window+1 {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", window+1, len(candles))
	}

	s := NewStrength(window)
	for _, c := range candles {
		s.Update(c)
	}
	return s.Value(), nil
}

// Classify maps the two moving averages and the oscillator onto a discrete
// signal. A tie between the averages is HOLD. Pure function, no hidden state.
func Classify(shortMA, longMA, osc float64) Signal {
	switch {
	case shortMA > longMA && osc < 70:
		return Buy
	case shortMA < longMA && osc > 30:
		return Sell
	default:
		return Hold
	}
}

// Compute evaluates the latest bar of the series using the default windows.
// The series must be oldest-first and non-empty. A series too short to warm
// up an indicator leaves that indicator's value at zero; the signal is
// classified only when both averages are warm, and stays HOLD otherwise, so
// short histories still flow through the decision loop rather than failing.
func Compute(candles market.Series) (Snapshot, error) {
	if len(candles) == 0 {
		return Snapshot{}, fmt.Errorf("empty series")
	}

	short := NewMA(DefaultShortWindow)
	long := NewMA(DefaultLongWindow)
	osc := NewStrength(DefaultOscWindow)
	for _, c := range candles {
		short.Update(c)
		long.Update(c)
		osc.Update(c)
	}

	last, _ := candles.Last()
	snap := Snapshot{
		Close:      last.Close,
		ShortMA:    short.Value(),
		LongMA:     long.Value(),
		Oscillator: osc.Value(),
	}
	if short.Ready() && long.Ready() {
		snap.Signal = Classify(snap.ShortMA, snap.LongMA, snap.Oscillator)
	}
	return snap, nil
}
