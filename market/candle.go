package market

import "time"

// Candle represents OHLCV (Open, High, Low, Close, Volume) candlestick data
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is an ordered run of candles, oldest first.
type Series []Candle

// Closes returns the close of every candle in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Last returns the most recent candle, or false for an empty series.
func (s Series) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// Prices maps a symbol to its latest known price.
type Prices map[string]float64
