package holdings

import (
	"sort"

	"mnk3ys-dashboard/internal/config"
	"mnk3ys-dashboard/internal/domain"
)

// Sort keys accepted by the ledger. Any tracked collection slug is also a
// valid key, ordering by that collection's counter.
const (
	SortTotal = "total"
	SortToken = "token"
	SortNFTs  = "nfts"
)

// NormalizeSortKey maps a requested sort key to the one the ledger actually
// uses: token, nfts, total or a tracked collection slug pass through, anything
// else falls back to SortTotal. Callers echo the result back to the client.
func (b *LedgerBuilder) NormalizeSortKey(key string) string {
	switch key {
	case SortTotal, SortToken, SortNFTs:
		return key
	}
	for _, col := range b.collections {
		if key == col.Slug {
			return key
		}
	}
	return SortTotal
}

// sortHoldings orders rows descending by the metric sortKey selects, with the
// composite score as the default for unknown keys. Ties break on wallet
// address ascending so equal-metric rows have a stable, documented order.
func sortHoldings(rows []domain.WalletHolding, sortKey string, collections []config.Collection) {
	metric := metricFor(sortKey, collections)

	sort.Slice(rows, func(i, j int) bool {
		mi, mj := metric(&rows[i]), metric(&rows[j])
		if mi != mj {
			return mi > mj
		}
		return rows[i].Wallet < rows[j].Wallet
	})
}

func metricFor(sortKey string, collections []config.Collection) func(*domain.WalletHolding) float64 {
	switch sortKey {
	case SortToken:
		return func(h *domain.WalletHolding) float64 { return h.TokenBalance }
	case SortNFTs:
		return func(h *domain.WalletHolding) float64 { return float64(h.TotalNFTs) }
	}

	for _, col := range collections {
		if sortKey == col.Slug {
			slug := col.Slug
			return func(h *domain.WalletHolding) float64 { return float64(h.CountsByCollection[slug]) }
		}
	}

	// SortTotal and anything unrecognized fall back to the composite score.
	return func(h *domain.WalletHolding) float64 { return h.TotalScore }
}
