package exchange

import (
	"context"
	"fmt"

	swap "go-token-swap"
)

// RateSource looks up the latest rate for a symbol. Implementations must be
// safe for concurrent reads.
type RateSource interface {
	RateOf(symbol swap.Symbol) (swap.Rate, bool)
}

// Service interface for converting an amount from one token to another
type Service interface {
	Convert(ctx context.Context, amount swap.Amount, from swap.Symbol, to swap.Symbol) (swap.Exchanged, error)
}

// service converts using the current rate table
type service struct {
	// rates to look up token rates
	rates RateSource
}

// NewService constructs a valid Service
func NewService(rates RateSource) Service {
	return &service{
		rates: rates,
	}
}

// Convert computes a conversion from one token to another at the current
// rates. The returned Exchanged carries the floored output amount and the
// floored display rate.
func (s *service) Convert(_ context.Context, amount swap.Amount, from swap.Symbol, to swap.Symbol) (swap.Exchanged, error) {
	fromRate, ok := s.rates.RateOf(from)
	if !ok {
		return swap.Exchanged{}, fmt.Errorf("unknown 'from' symbol: %v", from)
	}

	toRate, ok := s.rates.RateOf(to)
	if !ok {
		return swap.Exchanged{}, fmt.Errorf("unknown 'to' symbol: %v", to)
	}

	converted := CalculateExchange(amount, fromRate, toRate)

	result := swap.Exchanged{
		Rate:   CalculateRate(amount, converted),
		Amount: converted,
	}

	return result, nil
}
