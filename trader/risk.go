package trader

import "github.com/rustyeddy/advisor/oracle"

// Risk factor bounds: the fraction of available cash committed to a single
// buy order always stays inside [MinRiskFactor, MaxRiskFactor].
const (
	MinRiskFactor     = 0.005
	MaxRiskFactor     = 0.02
	DefaultRiskFactor = 0.01

	riskGrowth = 1.1
	riskDecay  = 0.9
)

// RiskState carries the adaptive sizing factor and the prior cycle's trade,
// which the next adaptation judges against. LastAction is Hold until the
// first fill.
type RiskState struct {
	Factor     float64
	LastAction oracle.Action
	LastPrice  *float64
}

// Adapt nudges the factor by the sign of the price move since the prior
// trade: a move in that trade's favor scales it by 1.1, any other move by
// 0.9, always clamped to the bounds. Magnitude is ignored: a one-cent
// move and a fifty-percent move adjust the factor identically.
func (r *RiskState) Adapt(price float64) {
	if r.LastAction == oracle.Hold || r.LastPrice == nil {
		return
	}

	favorable := price > *r.LastPrice
	if r.LastAction == oracle.Sell {
		favorable = price < *r.LastPrice
	}

	if favorable {
		r.Factor *= riskGrowth
	} else {
		r.Factor *= riskDecay
	}
	r.Factor = clampFactor(r.Factor)
}

// mark records a fill so the next cycle's adaptation can judge it.
func (r *RiskState) mark(action oracle.Action, price float64) {
	r.LastAction = action
	p := price
	r.LastPrice = &p
}

func clampFactor(f float64) float64 {
	switch {
	case f < MinRiskFactor:
		return MinRiskFactor
	case f > MaxRiskFactor:
		return MaxRiskFactor
	default:
		return f
	}
}
