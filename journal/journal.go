// Package journal records realized trade outcomes and aggregates their
// performance statistics.
package journal

import "time"

// OutcomeRecord is one realized trading outcome. Result is the realized
// profit or loss: zero for buys (nothing is realized until the eventual
// sell), (sell price − cost basis) × quantity for sells.
type OutcomeRecord struct {
	Time     time.Time
	Action   string
	Symbol   string
	Quantity float64
	Price    float64
	Result   float64
}

// Summary aggregates recorded outcomes. A win is a strictly positive
// result; zero results count as neither win nor loss.
type Summary struct {
	Total     int
	Wins      int
	Losses    int
	AvgResult float64
}

// Journal is an append-only outcome sink. Implementations never validate
// beyond type constraints; recording is a pure append.
type Journal interface {
	Record(OutcomeRecord) error
	Close() error
}

// Summarizer is implemented by sinks that can aggregate what they hold.
type Summarizer interface {
	Summarize() (Summary, error)
}
