// Package rates reduces the raw price feed to one rate per symbol and owns
// the current rate table snapshot.
package rates

import (
	"sort"

	swap "go-token-swap"
)

// Aggregate reduces a batch of price observations to one token per distinct
// symbol, keeping the observation with the highest price. Ties keep the
// first-seen maximum: the comparison is strictly-greater, so a later
// observation at the same price never replaces an earlier one. The result is
// sorted ascending by symbol. An empty batch produces an empty slice, not an
// error.
func Aggregate(observations []swap.PriceObservation) []swap.Token {
	best := swap.Rates{}
	for _, obs := range observations {
		existing, ok := best[obs.Symbol]
		if !ok || obs.Price > existing {
			best[obs.Symbol] = obs.Price
		}
	}

	tokens := make([]swap.Token, 0, len(best))
	for symbol, price := range best {
		tokens = append(tokens, swap.Token{
			Symbol: symbol,
			Name:   DisplayName(symbol),
			Price:  price,
		})
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Symbol < tokens[j].Symbol
	})

	return tokens
}
