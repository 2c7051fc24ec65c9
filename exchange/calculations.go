// Package exchange computes swap amounts and display rates from the current
// rate table.
package exchange

import (
	"math"
	"regexp"

	swap "go-token-swap"
)

// numericInput matches one or more ASCII digits: no sign, no decimal point,
// no separators, no surrounding whitespace.
var numericInput = regexp.MustCompile(`^[0-9]+$`)

// CalculateExchange converts amount at fromRate into the destination token
// at toRate, floored. Non-positive operands are not an error: the result is
// defined to be 0. Flooring means a user never receives more than the raw
// rate math implies.
func CalculateExchange(amount swap.Amount, fromRate, toRate swap.Rate) swap.Amount {
	if amount <= 0 || fromRate <= 0 || toRate <= 0 {
		return 0
	}
	result := float64(amount) * float64(fromRate) / float64(toRate)
	return swap.Amount(math.Floor(result))
}

// CalculateRate computes the coarse floored unit price of a completed
// conversion, used only for display. Returns 0 when fromAmount is not
// positive.
func CalculateRate(fromAmount, toAmount swap.Amount) swap.Rate {
	if fromAmount <= 0 {
		return 0
	}
	return swap.Rate(math.Floor(float64(toAmount) / float64(fromAmount)))
}

// IsValidNumericInput accepts the empty string or digits only. Callers must
// not apply an edit when this returns false; input is rejected as it is
// typed, not at submit time.
func IsValidNumericInput(value string) bool {
	return value == "" || numericInput.MatchString(value)
}
