package swap

import "fmt"

// Symbol a token ticker code, e.g. "ETH"
type Symbol string

// Rate the latest observed price of a symbol, used for ratio computation only
type Rate float64

// Amount a token amount... which should be a float...
type Amount float64

// Rates maps symbols to their latest rate
type Rates map[Symbol]Rate

// PriceObservation one row of the raw price feed. A batch of observations is
// transient: it is reduced to tokens and then discarded.
type PriceObservation struct {
	Symbol Symbol
	Date   string
	Price  Rate
}

// Token an aggregated, tradable token. Name falls back to the symbol when no
// display name is known.
type Token struct {
	Symbol Symbol
	Name   string
	Price  Rate
}

// Exchanged the outcome of converting an amount from one token to another
type Exchanged struct {
	Rate   Rate
	Amount Amount
}

// IconPath derives the icon location for a symbol. Resolving (or failing to
// resolve) the icon itself is a presentation concern.
func IconPath(symbol Symbol) string {
	return fmt.Sprintf("/tokens/%v.svg", symbol)
}
