package rates

import (
	"strings"

	swap "go-token-swap"
)

// Filter returns the tokens whose symbol or name contains the query,
// case-insensitively. An empty or whitespace-only query returns the input
// unchanged. Input order is preserved; this is a stable filter, not a
// re-sort.
func Filter(tokens []swap.Token, query string) []swap.Token {
	query = strings.TrimSpace(query)
	if query == "" {
		return tokens
	}

	query = strings.ToLower(query)
	matched := make([]swap.Token, 0, len(tokens))
	for _, t := range tokens {
		symbol := strings.ToLower(string(t.Symbol))
		name := strings.ToLower(t.Name)
		if strings.Contains(symbol, query) || strings.Contains(name, query) {
			matched = append(matched, t)
		}
	}
	return matched
}
