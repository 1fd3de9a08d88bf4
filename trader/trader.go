// Package trader runs the risk-adaptive decision loop: it pulls a price
// series, computes a technical snapshot, asks the decision oracle for a
// verdict, sizes the order by an adaptive risk factor, and settles the
// result against the ledger and outcome journal.
package trader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/advisor/journal"
	"github.com/rustyeddy/advisor/ledger"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/signal"
)

// sellFraction is the fixed share of a held position released on a SELL
// verdict. It is not risk-factor scaled.
const sellFraction = 0.5

// maxVerdictLen bounds the rationale text kept in cycle log entries.
const maxVerdictLen = 100

const actionNone = "NONE"

// MarketData supplies the price history that drives a cycle. A nil or
// empty series means the data source had nothing for the symbol.
type MarketData interface {
	Fetch(ctx context.Context, symbol, period string) (market.Series, error)
}

// CycleResult reports what one decision cycle did. Err carries any failure
// as text; a cycle never panics or propagates an error to its driver.
type CycleResult struct {
	Time     time.Time
	Symbol   string
	Price    float64
	Signal   signal.Signal
	Verdict  string
	Action   string
	Quantity float64
	Cash     float64
	Err      string
}

// AutoTrader is the decision loop. One cycle runs to completion before the
// next may start; a mutex enforces that for hosts that drive it from
// several goroutines.
type AutoTrader struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	oracle   oracle.Oracle
	data     MarketData
	outcomes journal.Journal
	risk     RiskState
	period   string
	log      zerolog.Logger
	cycles   []CycleResult
}

// Option configures an AutoTrader at construction.
type Option func(*AutoTrader)

// WithLogger attaches a structured logger for per-cycle log lines.
func WithLogger(log zerolog.Logger) Option {
	return func(t *AutoTrader) { t.log = log }
}

// WithPeriod overrides the history period requested from the data source.
func WithPeriod(period string) Option {
	return func(t *AutoTrader) { t.period = period }
}

// WithRiskFactor sets the starting risk factor, clamped to the bounds.
func WithRiskFactor(factor float64) Option {
	return func(t *AutoTrader) { t.risk.Factor = clampFactor(factor) }
}

// New builds a decision loop over its four collaborators. The outcome
// journal is mandatory; pass journal.Nop{} when outcome tracking is not
// wanted.
func New(l *ledger.Ledger, o oracle.Oracle, data MarketData, outcomes journal.Journal, opts ...Option) *AutoTrader {
	t := &AutoTrader{
		ledger:   l,
		oracle:   o,
		data:     data,
		outcomes: outcomes,
		risk:     RiskState{Factor: DefaultRiskFactor},
		period:   "1mo",
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Risk returns a copy of the current risk state.
func (t *AutoTrader) Risk() RiskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.risk
}

// Ledger returns the ledger the loop trades against.
func (t *AutoTrader) Ledger() *ledger.Ledger {
	return t.ledger
}

// CycleLog returns a copy of every completed cycle's log entry, in order.
// Cycles that aborted before acting (no data, oracle failure) are not in
// the log; their CycleResult was handed back to the driver instead.
func (t *AutoTrader) CycleLog() []CycleResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]CycleResult, len(t.cycles))
	copy(out, t.cycles)
	return out
}

// RunCycle runs one decision cycle for the symbol. Any failure, including
// a panic, comes back as the Err text of the result, leaving the ledger
// untouched by the aborted cycle.
func (t *AutoTrader) RunCycle(ctx context.Context, symbol string) (res CycleResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	res = CycleResult{
		Time:   time.Now().UTC(),
		Symbol: symbol,
		Action: actionNone,
	}

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Sprintf("cycle aborted: %v", r)
			t.log.Error().Str("symbol", symbol).Str("err", res.Err).Msg("cycle failed")
		}
	}()

	series, err := t.data.Fetch(ctx, symbol, t.period)
	if err != nil {
		res.Err = fmt.Sprintf("market data: %v", err)
		return res
	}
	if len(series) == 0 {
		res.Err = "no data available"
		return res
	}

	snap, err := signal.Compute(series)
	if err != nil {
		res.Err = fmt.Sprintf("signal: %v", err)
		return res
	}
	res.Price = snap.Close
	res.Signal = snap.Signal

	// Judge the previous cycle's trade before sizing this one.
	t.risk.Adapt(snap.Close)

	pos, held := t.ledger.Position(symbol)
	position := "none"
	if held {
		position = fmt.Sprintf("%.4f @ %.2f", pos.Quantity, pos.AvgCost)
	}

	verdict, err := t.oracle.Evaluate(ctx, oracle.Context{
		Symbol:     symbol,
		Price:      snap.Close,
		Signal:     snap.Signal.String(),
		Oscillator: snap.Oscillator,
		Cash:       t.ledger.Cash(),
		Position:   position,
	})
	if err != nil {
		res.Err = fmt.Sprintf("oracle: %v", err)
		return res
	}
	res.Verdict = truncate(verdict.Rationale, maxVerdictLen)

	switch verdict.Action {
	case oracle.Buy:
		// The guard keeps dust orders out; Ledger.Buy re-checks the
		// actual cost against cash.
		cash := t.ledger.Cash()
		if cash > snap.Close*t.risk.Factor {
			qty := (cash * t.risk.Factor) / snap.Close
			if t.ledger.Buy(symbol, qty, snap.Close) {
				t.settle(&res, oracle.Buy, symbol, qty, snap.Close, 0)
			}
		}

	case oracle.Sell:
		if held {
			qty := pos.Quantity * sellFraction
			if t.ledger.Sell(symbol, qty, snap.Close) {
				// Realize against the cost basis the position had
				// before this sell.
				realized := (snap.Close - pos.AvgCost) * qty
				t.settle(&res, oracle.Sell, symbol, qty, snap.Close, realized)
			}
		}
	}

	res.Cash = t.ledger.Cash()
	t.cycles = append(t.cycles, res)

	t.log.Info().
		Str("symbol", symbol).
		Float64("price", res.Price).
		Str("signal", res.Signal.String()).
		Str("action", res.Action).
		Float64("quantity", res.Quantity).
		Float64("cash", res.Cash).
		Float64("risk_factor", t.risk.Factor).
		Msg("cycle complete")

	return res
}

// settle records a fill into the risk state and outcome journal.
func (t *AutoTrader) settle(res *CycleResult, action oracle.Action, symbol string, qty, price, realized float64) {
	t.risk.mark(action, price)
	res.Action = action.String()
	res.Quantity = qty

	if err := t.outcomes.Record(journal.OutcomeRecord{
		Time:     res.Time,
		Action:   action.String(),
		Symbol:   symbol,
		Quantity: qty,
		Price:    price,
		Result:   realized,
	}); err != nil {
		// The ledger mutation already happened and stands; surface the
		// journaling failure without undoing the fill.
		res.Err = fmt.Sprintf("outcome journal: %v", err)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
