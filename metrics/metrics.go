// Package metrics holds the Prometheus instruments updated while the
// decision loop runs. They are registered in init() and served at
// /metrics in Prometheus text exposition format when the run command
// enables the listener.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	cycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_cycles_total",
			Help: "Decision cycles completed, by resulting action",
		},
		[]string{"action"}, // BUY|SELL|NONE
	)

	cycleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_cycle_errors_total",
			Help: "Decision cycles that ended in an error",
		},
	)

	orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_orders_total",
			Help: "Paper orders filled, by side",
		},
		[]string{"side"}, // BUY|SELL
	)

	cash = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_cash_usd",
			Help: "Uncommitted cash in the paper account",
		},
	)

	portfolioValue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_portfolio_value_usd",
			Help: "Cash plus marked-to-market positions",
		},
	)

	riskFactor = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_risk_factor",
			Help: "Current adaptive fraction of cash committed per buy",
		},
	)
)

func init() {
	prometheus.MustRegister(cycles, cycleErrors, orders)
	prometheus.MustRegister(cash, portfolioValue, riskFactor)
}

func IncCycle(action string)      { cycles.WithLabelValues(action).Inc() }
func IncCycleError()              { cycleErrors.Inc() }
func IncOrder(side string)        { orders.WithLabelValues(side).Inc() }
func SetCash(v float64)           { cash.Set(v) }
func SetPortfolioValue(v float64) { portfolioValue.Set(v) }
func SetRiskFactor(v float64)     { riskFactor.Set(v) }
