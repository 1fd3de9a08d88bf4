package trader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/advisor/journal"
	"github.com/rustyeddy/advisor/ledger"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/signal"
)

// flatSeries returns enough flat candles at the given price to satisfy the
// signal engine's long window.
func flatSeries(price float64) market.Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(market.Series, signal.DefaultLongWindow+10)
	for i := range s {
		s[i] = market.Candle{
			Time:  base.Add(time.Duration(i) * time.Hour),
			Open:  price,
			High:  price,
			Low:   price,
			Close: price,
		}
	}
	return s
}

type fakeData struct {
	series market.Series
	err    error
}

func (f fakeData) Fetch(context.Context, string, string) (market.Series, error) {
	return f.series, f.err
}

type fakeOracle struct {
	verdict oracle.Verdict
	err     error
	panics  bool
}

func (f fakeOracle) Evaluate(context.Context, oracle.Context) (oracle.Verdict, error) {
	if f.panics {
		panic("oracle exploded")
	}
	return f.verdict, f.err
}

func TestRunCycleBuy(t *testing.T) {
	t.Parallel()

	l := ledger.New(10000)
	outcomes := journal.NewMemory()
	at := New(l,
		fakeOracle{verdict: oracle.Verdict{Action: oracle.Buy, Rationale: "BUY: trend up"}},
		fakeData{series: flatSeries(100)},
		outcomes,
	)

	res := at.RunCycle(context.Background(), "BTC-USD")

	require.Empty(t, res.Err)
	assert.Equal(t, "BUY", res.Action)
	// quantity = cash × factor / price = 10000 × 0.01 / 100
	assert.InDelta(t, 1.0, res.Quantity, 1e-9)
	assert.InDelta(t, 9900.0, res.Cash, 1e-9)
	assert.Equal(t, "BUY: trend up", res.Verdict)

	pos, held := l.Position("BTC-USD")
	require.True(t, held)
	assert.InDelta(t, 1.0, pos.Quantity, 1e-9)
	assert.InDelta(t, 100.0, pos.AvgCost, 1e-9)

	// Buys realize nothing.
	recs := outcomes.Outcomes()
	require.Len(t, recs, 1)
	assert.Equal(t, "BUY", recs[0].Action)
	assert.InDelta(t, 0.0, recs[0].Result, 1e-12)

	risk := at.Risk()
	assert.Equal(t, oracle.Buy, risk.LastAction)
	require.NotNil(t, risk.LastPrice)
	assert.InDelta(t, 100.0, *risk.LastPrice, 1e-9)

	assert.Len(t, at.CycleLog(), 1)
}

func TestRunCycleSellRealizesAgainstPreSellBasis(t *testing.T) {
	t.Parallel()

	l := ledger.New(10000)
	require.True(t, l.Buy("BTC-USD", 1, 100))
	require.True(t, l.Buy("BTC-USD", 1, 200))

	outcomes := journal.NewMemory()
	at := New(l,
		fakeOracle{verdict: oracle.Verdict{Action: oracle.Sell, Rationale: "SELL: overextended"}},
		fakeData{series: flatSeries(300)},
		outcomes,
	)

	res := at.RunCycle(context.Background(), "BTC-USD")

	require.Empty(t, res.Err)
	assert.Equal(t, "SELL", res.Action)
	// Half of the 2.0 held.
	assert.InDelta(t, 1.0, res.Quantity, 1e-9)
	// 9700 + 1×300
	assert.InDelta(t, 10000.0, res.Cash, 1e-9)

	recs := outcomes.Outcomes()
	require.Len(t, recs, 1)
	// (300 − 150) × 1, with 150 the basis before the sell.
	assert.InDelta(t, 150.0, recs[0].Result, 1e-9)

	risk := at.Risk()
	assert.Equal(t, oracle.Sell, risk.LastAction)
}

func TestRunCycleHold(t *testing.T) {
	t.Parallel()

	l := ledger.New(10000)
	at := New(l,
		fakeOracle{verdict: oracle.Verdict{Action: oracle.Hold, Rationale: "wait"}},
		fakeData{series: flatSeries(100)},
		journal.NewMemory(),
	)

	res := at.RunCycle(context.Background(), "BTC-USD")

	require.Empty(t, res.Err)
	assert.Equal(t, "NONE", res.Action)
	assert.InDelta(t, 10000.0, res.Cash, 1e-9)
	assert.Empty(t, l.Trades())
	assert.Len(t, at.CycleLog(), 1)
}

func TestRunCycleSellWithoutPosition(t *testing.T) {
	t.Parallel()

	l := ledger.New(10000)
	outcomes := journal.NewMemory()
	at := New(l,
		fakeOracle{verdict: oracle.Verdict{Action: oracle.Sell, Rationale: "SELL"}},
		fakeData{series: flatSeries(100)},
		outcomes,
	)

	res := at.RunCycle(context.Background(), "BTC-USD")

	require.Empty(t, res.Err)
	assert.Equal(t, "NONE", res.Action)
	assert.Empty(t, outcomes.Outcomes())
	// The skipped sell is still not a prior trade for risk adaptation.
	assert.Equal(t, oracle.Hold, at.Risk().LastAction)
}

func TestRunCycleBuyLiquidityGuard(t *testing.T) {
	t.Parallel()

	l := ledger.New(0)
	at := New(l,
		fakeOracle{verdict: oracle.Verdict{Action: oracle.Buy, Rationale: "BUY"}},
		fakeData{series: flatSeries(100)},
		journal.NewMemory(),
	)

	res := at.RunCycle(context.Background(), "BTC-USD")

	require.Empty(t, res.Err)
	assert.Equal(t, "NONE", res.Action)
	assert.Empty(t, l.Trades())
}

func TestRunCycleNoData(t *testing.T) {
	t.Parallel()

	l := ledger.New(10000)
	at := New(l,
		fakeOracle{verdict: oracle.Verdict{Action: oracle.Buy}},
		fakeData{series: nil},
		journal.NewMemory(),
		WithRiskFactor(0.015),
	)

	res := at.RunCycle(context.Background(), "BTC-USD")

	assert.Equal(t, "no data available", res.Err)
	assert.Equal(t, "NONE", res.Action)

	// Nothing moved: no trades, no cycle log entry, risk untouched.
	assert.Empty(t, l.Trades())
	assert.Empty(t, at.CycleLog())
	assert.InDelta(t, 0.015, at.Risk().Factor, 1e-12)
}

func TestRunCycleDataError(t *testing.T) {
	t.Parallel()

	at := New(ledger.New(10000),
		fakeOracle{},
		fakeData{err: errors.New("feed down")},
		journal.NewMemory(),
	)

	res := at.RunCycle(context.Background(), "BTC-USD")
	assert.Contains(t, res.Err, "market data:")
	assert.Contains(t, res.Err, "feed down")
}

type countingOracle struct {
	verdict oracle.Verdict
	calls   int
}

func (c *countingOracle) Evaluate(_ context.Context, mkt oracle.Context) (oracle.Verdict, error) {
	c.calls++
	return c.verdict, nil
}

func TestRunCycleShortSeriesStillConsultsOracle(t *testing.T) {
	t.Parallel()

	// A month of bars never warms the long average, so the technical
	// signal is HOLD, but the cycle still asks the oracle and a BUY
	// verdict still trades.
	l := ledger.New(10000)
	o := &countingOracle{verdict: oracle.Verdict{Action: oracle.Buy, Rationale: "BUY"}}
	at := New(l, o, fakeData{series: flatSeries(100)[:30]}, journal.NewMemory())

	res := at.RunCycle(context.Background(), "BTC-USD")

	require.Empty(t, res.Err)
	assert.Equal(t, 1, o.calls)
	assert.Equal(t, signal.Hold, res.Signal)
	assert.Equal(t, "BUY", res.Action)
	assert.InDelta(t, 1.0, res.Quantity, 1e-9)
	assert.Len(t, l.Trades(), 1)
}

func TestRunCycleOracleFailure(t *testing.T) {
	t.Parallel()

	l := ledger.New(10000)
	at := New(l,
		fakeOracle{err: errors.New("model unavailable")},
		fakeData{series: flatSeries(100)},
		journal.NewMemory(),
	)

	res := at.RunCycle(context.Background(), "BTC-USD")

	assert.Contains(t, res.Err, "oracle:")
	assert.Empty(t, l.Trades())
	assert.Empty(t, at.CycleLog())
}

func TestRunCycleRecoversFromPanic(t *testing.T) {
	t.Parallel()

	l := ledger.New(10000)
	at := New(l,
		fakeOracle{panics: true},
		fakeData{series: flatSeries(100)},
		journal.NewMemory(),
	)

	res := at.RunCycle(context.Background(), "BTC-USD")

	assert.Contains(t, res.Err, "cycle aborted")
	assert.Contains(t, res.Err, "oracle exploded")
	assert.Empty(t, l.Trades())

	// The loop survives for the next cycle.
	res = at.RunCycle(context.Background(), "BTC-USD")
	assert.Contains(t, res.Err, "cycle aborted")
}

func TestRunCycleAdaptsBeforeDeciding(t *testing.T) {
	t.Parallel()

	l := ledger.New(10000)
	at := New(l,
		fakeOracle{verdict: oracle.Verdict{Action: oracle.Buy, Rationale: "BUY"}},
		fakeData{series: flatSeries(100)},
		journal.NewMemory(),
	)

	// First cycle buys at 100; the factor is judged only from the next
	// cycle on.
	res := at.RunCycle(context.Background(), "BTC-USD")
	require.Empty(t, res.Err)
	assert.InDelta(t, DefaultRiskFactor, at.Risk().Factor, 1e-12)

	// Second cycle sees 110: the prior buy was favorable, so the factor
	// grows before this cycle's order is sized.
	at.data = fakeData{series: flatSeries(110)}
	res = at.RunCycle(context.Background(), "BTC-USD")
	require.Empty(t, res.Err)

	risk := at.Risk()
	assert.InDelta(t, DefaultRiskFactor*1.1, risk.Factor, 1e-12)

	// The second buy was sized with the adapted factor.
	trades := l.Trades()
	require.Len(t, trades, 2)
	cashBefore := trades[0].Cash
	wantQty := (cashBefore * DefaultRiskFactor * 1.1) / 110
	assert.InDelta(t, wantQty, trades[1].Quantity, 1e-9)
}

func TestRunCycleJournalFailureKeepsFill(t *testing.T) {
	t.Parallel()

	l := ledger.New(10000)
	at := New(l,
		fakeOracle{verdict: oracle.Verdict{Action: oracle.Buy, Rationale: "BUY"}},
		fakeData{series: flatSeries(100)},
		failJournal{err: errors.New("disk full")},
	)

	res := at.RunCycle(context.Background(), "BTC-USD")

	assert.Contains(t, res.Err, "outcome journal:")
	// The fill is not rolled back.
	assert.Len(t, l.Trades(), 1)
	assert.Equal(t, "BUY", res.Action)
}

type failJournal struct{ err error }

func (j failJournal) Record(journal.OutcomeRecord) error { return j.err }
func (j failJournal) Close() error                       { return nil }

func TestRunCycleTruncatesVerdict(t *testing.T) {
	t.Parallel()

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}

	at := New(ledger.New(10000),
		fakeOracle{verdict: oracle.Verdict{Action: oracle.Hold, Rationale: string(long)}},
		fakeData{series: flatSeries(100)},
		journal.NewMemory(),
	)

	res := at.RunCycle(context.Background(), "BTC-USD")
	require.Empty(t, res.Err)
	assert.Len(t, []rune(res.Verdict), 100)
}
