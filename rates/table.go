package rates

import swap "go-token-swap"

// Table is an immutable snapshot of the aggregated rates: one token per
// symbol plus the ordered token list. A Table is never mutated after
// construction, so it is safe for concurrent reads.
type Table struct {
	tokens      []swap.Token
	bySymbol    map[swap.Symbol]swap.Token
	defaultFrom swap.Symbol
	defaultTo   swap.Symbol
}

// NewTable builds a snapshot from aggregated tokens. The slice is expected
// to be ordered by symbol already, as produced by Aggregate.
func NewTable(tokens []swap.Token, defaultFrom, defaultTo swap.Symbol) *Table {
	bySymbol := make(map[swap.Symbol]swap.Token, len(tokens))
	for _, t := range tokens {
		bySymbol[t.Symbol] = t
	}
	return &Table{
		tokens:      tokens,
		bySymbol:    bySymbol,
		defaultFrom: defaultFrom,
		defaultTo:   defaultTo,
	}
}

// Tokens returns the ordered token list. Callers get a copy so the snapshot
// stays read-only.
func (t *Table) Tokens() []swap.Token {
	tokens := make([]swap.Token, len(t.tokens))
	copy(tokens, t.tokens)
	return tokens
}

// RateOf looks up the latest rate for a symbol.
func (t *Table) RateOf(symbol swap.Symbol) (swap.Rate, bool) {
	token, ok := t.bySymbol[symbol]
	if !ok {
		return 0, false
	}
	return token.Price, true
}

// Lookup returns the token for a symbol.
func (t *Table) Lookup(symbol swap.Symbol) (swap.Token, bool) {
	token, ok := t.bySymbol[symbol]
	return token, ok
}

// DefaultFrom returns the configured default source token. Absent from the
// current table means no default; callers must not assume one exists.
func (t *Table) DefaultFrom() (swap.Token, bool) {
	return t.Lookup(t.defaultFrom)
}

// DefaultTo returns the configured default destination token.
func (t *Table) DefaultTo() (swap.Token, bool) {
	return t.Lookup(t.defaultTo)
}
