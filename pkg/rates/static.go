package rates

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Static serves rates from a fixed table. The inverse of every configured
// pair is derived unless it is configured itself.
type Static struct {
	rates map[Pair]decimal.Decimal
}

// NewStatic returns a gateway for the rates.
func NewStatic(rates map[Pair]decimal.Decimal) *Static {
	s := &Static{rates: make(map[Pair]decimal.Decimal, 2*len(rates))}

	for p, r := range rates {
		s.rates[NewPair(p.From, p.To)] = r
	}

	for p, r := range rates {
		inverse := NewPair(p.To, p.From)
		if _, ok := s.rates[inverse]; !ok && r.IsPositive() {
			s.rates[inverse] = decimal.NewFromInt(1).DivRound(r, 16)
		}
	}

	return s
}

// ParseStatic parses a rate table in the format "BTC:USD=50000,EUR:USD=1.08".
func ParseStatic(s string) (*Static, error) {
	table := make(map[Pair]decimal.Decimal)

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		pair, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("rate entry %q is not in the format FROM:TO=RATE", entry)
		}

		from, to, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return nil, fmt.Errorf("rate entry %q is not in the format FROM:TO=RATE", entry)
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("rate for %s is not a number: %w", pair, err)
		}

		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive, got %s", pair, rate)
		}

		table[NewPair(from, to)] = rate
	}

	return NewStatic(table), nil
}

func (s *Static) Rate(_ context.Context, from, to string) (decimal.Decimal, error) {
	p := NewPair(from, to)
	if p.From == p.To {
		return decimal.NewFromInt(1), nil
	}

	rate, ok := s.rates[p]
	if !ok {
		return decimal.Zero, unavailable(p, "no rate configured")
	}

	return rate, nil
}
