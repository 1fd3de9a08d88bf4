// Package ledger owns the virtual cash balance and per-symbol positions of
// a paper-trading account.
package ledger

import (
	"sync"
	"time"

	"github.com/rustyeddy/advisor/internal/id"
	"github.com/rustyeddy/advisor/market"
)

// Action labels a ledger mutation.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// dustEpsilon is the quantity below which a position is considered fully
// sold and removed, so float arithmetic cannot strand dust positions.
const dustEpsilon = 1e-9

// Position is a symbol's held quantity and weighted-average acquisition
// cost. It exists only while quantity is positive.
type Position struct {
	Symbol   string
	Quantity float64
	AvgCost  float64
}

// TradeRecord is one executed fill. Records are append-only and ordered by
// occurrence; Cash is the balance remaining after the fill.
type TradeRecord struct {
	ID       string
	Time     time.Time
	Action   Action
	Symbol   string
	Quantity float64
	Price    float64
	Cash     float64
}

// Ledger executes buy and sell mutations against a cash balance while
// keeping cash non-negative and positions covered. Buy and Sell report
// business rejections as a false return, never as an error: insufficient
// funds or position is a normal outcome the caller must check.
//
// The core contract is single-writer per cycle; the mutex only protects
// hosting environments that drive one ledger from several goroutines.
type Ledger struct {
	mu          sync.Mutex
	cash        float64
	initialCash float64
	positions   map[string]*Position
	trades      []TradeRecord
}

// New creates a ledger holding initialCash and no positions.
func New(initialCash float64) *Ledger {
	return &Ledger{
		cash:        initialCash,
		initialCash: initialCash,
		positions:   make(map[string]*Position),
	}
}

// Buy spends quantity×price of cash on the symbol. A cost above the cash
// balance, or a non-positive quantity or price, rejects the order with no
// mutation. Repeat buys reweight the position's average cost.
func (l *Ledger) Buy(symbol string, quantity, price float64) bool {
	if quantity <= 0 || price <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cost := quantity * price
	if cost > l.cash {
		return false
	}

	l.cash -= cost
	if p, ok := l.positions[symbol]; ok {
		total := p.Quantity + quantity
		p.AvgCost = (p.Quantity*p.AvgCost + cost) / total
		p.Quantity = total
	} else {
		l.positions[symbol] = &Position{
			Symbol:   symbol,
			Quantity: quantity,
			AvgCost:  price,
		}
	}

	l.appendLocked(ActionBuy, symbol, quantity, price)
	return true
}

// Sell releases quantity×price into cash. A missing position, or a held
// quantity smaller than requested, rejects the order with no mutation.
// Selling never changes the position's average cost; a position whose
// remaining quantity reaches zero is removed.
func (l *Ledger) Sell(symbol string, quantity, price float64) bool {
	if quantity <= 0 || price <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[symbol]
	if !ok || p.Quantity < quantity {
		return false
	}

	l.cash += quantity * price
	p.Quantity -= quantity
	if p.Quantity <= dustEpsilon {
		delete(l.positions, symbol)
	}

	l.appendLocked(ActionSell, symbol, quantity, price)
	return true
}

func (l *Ledger) appendLocked(action Action, symbol string, quantity, price float64) {
	l.trades = append(l.trades, TradeRecord{
		ID:       id.New(),
		Time:     time.Now().UTC(),
		Action:   action,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Cash:     l.cash,
	})
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// InitialCash returns the balance the ledger was constructed with.
func (l *Ledger) InitialCash() float64 {
	return l.initialCash
}

// Position returns a copy of the symbol's position, if one is held.
func (l *Ledger) Position(symbol string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns a copy of every held position.
func (l *Ledger) Positions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	return out
}

// Trades returns a copy of the append-only fill log, ordered by occurrence.
func (l *Ledger) Trades() []TradeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]TradeRecord, len(l.trades))
	copy(out, l.trades)
	return out
}

// PortfolioValue is cash plus the market value of every held position with
// a known current price. Positions missing from prices are excluded from
// the sum rather than treated as an error.
func (l *Ledger) PortfolioValue(prices market.Prices) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := l.cash
	for symbol, p := range l.positions {
		if price, ok := prices[symbol]; ok {
			total += p.Quantity * price
		}
	}
	return total
}

// ProfitLoss is the portfolio value relative to the initial cash balance.
func (l *Ledger) ProfitLoss(prices market.Prices) float64 {
	return l.PortfolioValue(prices) - l.initialCash
}
