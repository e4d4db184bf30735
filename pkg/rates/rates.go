// Package rates provides exchange rates between currencies.
//
// Gateways are treated as unreliable. They do not cache and do not retry,
// callers decide what to do when a rate is unavailable.
package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrRateUnavailable is returned when no rate can be provided for a
// currency pair.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// Gateway returns the multiplicative rate to convert an amount in the
// from currency into the to currency.
type Gateway interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Pair is a currency pair.
type Pair struct {
	From string
	To   string
}

func (p Pair) String() string {
	return fmt.Sprintf("%s:%s", p.From, p.To)
}

// NewPair returns a pair with normalized currency codes.
func NewPair(from, to string) Pair {
	return Pair{
		From: strings.ToUpper(strings.TrimSpace(from)),
		To:   strings.ToUpper(strings.TrimSpace(to)),
	}
}

// unavailable returns an error for the pair wrapping ErrRateUnavailable.
func unavailable(p Pair, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrRateUnavailable, p, reason)
}
