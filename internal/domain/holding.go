package domain

// WalletHolding is one row of the holders ledger: everything we know about a
// wallet across the tracked token and NFT collections. Rows are built fresh
// on every request and live for that request only.
type WalletHolding struct {
	Wallet                string          `json:"wallet"`
	TokenBalance          float64         `json:"tokenBalance"`
	TokenBalanceFormatted string          `json:"tokenBalanceFormatted"`
	CountsByCollection    map[string]uint `json:"countsByCollection"`
	TotalNFTs             uint            `json:"totalNfts"`
	TotalScore            float64         `json:"totalScore"`
}

// ScoreWeightNFT is the composite-score weight of one NFT relative to one
// token unit scaled by ScoreDivisorToken. Token and NFT holdings are
// deliberately weighted 1:10 per unit.
const (
	ScoreDivisorToken = 1e6
	ScoreWeightNFT    = 10
)

// CompositeScore ranks a wallet by combined token and NFT holdings.
func CompositeScore(tokenBalance float64, totalNFTs uint) float64 {
	return tokenBalance/ScoreDivisorToken + float64(totalNFTs)*ScoreWeightNFT
}
