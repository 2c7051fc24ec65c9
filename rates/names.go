package rates

import swap "go-token-swap"

// tokenNames maps symbols to display names. Symbols missing from this table
// fall back to the symbol itself.
var tokenNames = map[swap.Symbol]string{
	"BLUR":     "Blur",
	"bNEO":     "Binance NEO",
	"BUSD":     "Binance USD",
	"USD":      "US Dollar",
	"ETH":      "Ethereum",
	"GMX":      "GMX",
	"STEVMOS":  "Staked EVMOS",
	"LUNA":     "Terra Luna",
	"RATOM":    "Rho ATOM",
	"STRD":     "Stride",
	"EVMOS":    "EVMOS",
	"IBCX":     "IBC Index",
	"IRIS":     "IRISnet",
	"ampLUNA":  "Amplified LUNA",
	"KUJI":     "Kujira",
	"STOSMO":   "Staked OSMO",
	"USDC":     "USD Coin",
	"axlUSDC":  "Axelar USDC",
	"ATOM":     "Cosmos",
	"STATOM":   "Staked ATOM",
	"OSMO":     "Osmosis",
	"rSWTH":    "Reward SWTH",
	"STLUNA":   "Staked LUNA",
	"LSI":      "LSI",
	"OKB":      "OKB",
	"OKT":      "OKT Chain",
	"SWTH":     "Switcheo",
	"USC":      "USC",
	"WBTC":     "Wrapped BTC",
	"wstETH":   "Wrapped stETH",
	"YieldUSD": "Yield USD",
	"ZIL":      "Zilliqa",
}

// DisplayName resolves the display name for a symbol.
func DisplayName(symbol swap.Symbol) string {
	if name, ok := tokenNames[symbol]; ok {
		return name
	}
	return string(symbol)
}
