package domain

// PriceSnapshot is the merged view of all price sources for the tracked token
// against SOL. Fields are nil when no source could fill them; a snapshot with
// every field nil is still a valid (fully degraded) result. Snapshots are
// cached and replaced wholesale, never field-patched across cache epochs.
type PriceSnapshot struct {
	SolUSD         *float64 `json:"solUsd"`
	BlunanaUSD     *float64 `json:"blunanaUsd"`
	BlunanaPerSol  *float64 `json:"blunanaPerSol"`
	PriceChange24h *float64 `json:"priceChange24h"`
	LiquidityUSD   *float64 `json:"liquidityUsd"`
	Volume24hUSD   *float64 `json:"volume24hUsd"`
	MarketCapUSD   *float64 `json:"marketCapUsd"`
	FDVUSD         *float64 `json:"fdvUsd"`
}
