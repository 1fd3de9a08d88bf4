package marketdata

import (
	"context"
	"fmt"

	"github.com/rustyeddy/advisor/market"
)

// Static serves fixed series keyed by symbol.
type Static map[string]market.Series

func (s Static) Fetch(_ context.Context, symbol, _ string) (market.Series, error) {
	series, ok := s[symbol]
	if !ok {
		return nil, fmt.Errorf("no series for %q", symbol)
	}
	return series, nil
}
