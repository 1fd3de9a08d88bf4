package signal

import (
	"fmt"

	"github.com/rustyeddy/advisor/market"
)

// Indicator computes a single streaming value from candles.
// It is deterministic and safe to use in live, replay, and backtests.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* candle and updates internal state.
	Update(c market.Candle)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value. If !Ready(), it returns 0;
	// callers should always check Ready().
	Value() float64
}

// SimpleMA is a streaming Simple Moving Average indicator
type SimpleMA struct {
	window int
	closes []float64
}

// NewMA creates a new Simple Moving Average indicator over the given window
func NewMA(window int) *SimpleMA {
	return &SimpleMA{
		window: window,
		closes: make([]float64, 0, window),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.window)
}

func (m *SimpleMA) Warmup() int {
	return m.window
}

func (m *SimpleMA) Reset() {
	m.closes = m.closes[:0]
}

func (m *SimpleMA) Update(c market.Candle) {
	m.closes = append(m.closes, c.Close)
	// Keep only the last 'window' closes
	if len(m.closes) > m.window {
		m.closes = m.closes[1:]
	}
}

func (m *SimpleMA) Ready() bool {
	return len(m.closes) >= m.window
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}

	sum := 0.0
	for _, close := range m.closes {
		sum += close
	}
	return sum / float64(len(m.closes))
}

// Strength is a streaming relative-strength oscillator. It averages the
// positive and negative close-to-close deltas over the trailing window and
// maps their ratio onto 0..100. A window with no losing deltas saturates
// at exactly 100.
type Strength struct {
	window int
	closes []float64
}

// NewStrength creates a relative-strength oscillator over the given window.
// Warmup is window+1 closes: the oscillator needs window deltas.
func NewStrength(window int) *Strength {
	return &Strength{
		window: window,
		closes: make([]float64, 0, window+1),
	}
}

func (s *Strength) Name() string {
	return fmt.Sprintf("RSI(%d)", s.window)
}

func (s *Strength) Warmup() int {
	return s.window + 1
}

func (s *Strength) Reset() {
	s.closes = s.closes[:0]
}

func (s *Strength) Update(c market.Candle) {
	s.closes = append(s.closes, c.Close)
	if len(s.closes) > s.window+1 {
		s.closes = s.closes[1:]
	}
}

func (s *Strength) Ready() bool {
	return len(s.closes) >= s.window+1
}

func (s *Strength) Value() float64 {
	if !s.Ready() {
		return 0
	}

	var gain, loss float64
	for i := 1; i < len(s.closes); i++ {
		delta := s.closes[i] - s.closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}

	avgGain := gain / float64(s.window)
	avgLoss := loss / float64(s.window)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
