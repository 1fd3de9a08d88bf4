// Package oracle defines the external decision source that gates trading
// and the adapters that turn free-form model output into a closed verdict.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Action is the closed set of trade intents an oracle can hand back.
type Action int

const (
	Hold Action = iota
	Buy
	Sell
)

// String implements fmt.Stringer for pretty logging.
func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Verdict is a decision plus the text that produced it.
type Verdict struct {
	Action    Action
	Rationale string
}

// Context is the market state handed to an oracle for one decision.
// Position is a human-readable description like "0.2500 @ 40125.00",
// or "none" when the symbol is not held.
type Context struct {
	Symbol     string
	Price      float64
	Signal     string
	Oscillator float64
	Cash       float64
	Position   string
}

// Prompt renders the structured text payload sent to a free-text model.
func (c Context) Prompt() string {
	var b strings.Builder
	b.WriteString("Analyze this trading situation:\n")
	fmt.Fprintf(&b, "- Symbol: %s\n", c.Symbol)
	fmt.Fprintf(&b, "- Current Price: $%.2f\n", c.Price)
	fmt.Fprintf(&b, "- Technical Signal: %s\n", c.Signal)
	fmt.Fprintf(&b, "- RSI: %.1f\n", c.Oscillator)
	fmt.Fprintf(&b, "- Available Cash: $%.2f\n", c.Cash)
	fmt.Fprintf(&b, "- Current Position: %s\n", c.Position)
	b.WriteString("\nShould I BUY, SELL, or HOLD? Give a one-word answer followed by reasoning.\n")
	b.WriteString("Consider risk management and position sizing.\n")
	return b.String()
}

// Oracle evaluates market context into a trade verdict. Implementations
// may block; the decision loop treats the call as synchronous.
type Oracle interface {
	Evaluate(ctx context.Context, mkt Context) (Verdict, error)
}

// ParseVerdict maps free-form advice text onto the closed action set. The
// match is a case-insensitive substring scan: BUY wins when both tokens
// appear, and text mentioning neither means Hold.
//
// The scan cannot tell "SELL" from "do not SELL"; structured oracles
// should construct a Verdict directly instead of round-tripping prose.
func ParseVerdict(text string) Verdict {
	v := Verdict{Action: Hold, Rationale: strings.TrimSpace(text)}

	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "BUY"):
		v.Action = Buy
	case strings.Contains(upper, "SELL"):
		v.Action = Sell
	}
	return v
}

// GenerateFunc is the opaque hosted-model call: prompt in, prose out.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// TextModel adapts a free-text generation call into an Oracle by running
// its output through ParseVerdict.
type TextModel struct {
	Generate GenerateFunc
}

func (m TextModel) Evaluate(ctx context.Context, mkt Context) (Verdict, error) {
	if m.Generate == nil {
		return Verdict{}, errors.New("text model: no generate function configured")
	}

	text, err := m.Generate(ctx, mkt.Prompt())
	if err != nil {
		return Verdict{}, fmt.Errorf("text model: %w", err)
	}
	return ParseVerdict(text), nil
}

// Rule is a deterministic oracle that follows the technical signal
// verbatim. It keeps the loop runnable offline and gives tests a
// live-shaped oracle without a hosted model.
type Rule struct{}

func (Rule) Evaluate(_ context.Context, mkt Context) (Verdict, error) {
	switch mkt.Signal {
	case Buy.String():
		return Verdict{Action: Buy, Rationale: "technical signal is BUY"}, nil
	case Sell.String():
		return Verdict{Action: Sell, Rationale: "technical signal is SELL"}, nil
	default:
		return Verdict{Action: Hold, Rationale: "technical signal is HOLD"}, nil
	}
}
