package domain

// VerificationResult is the per-wallet holdings check returned by /verify.
// A zero-valued result (all counters zero) is the documented degraded mode
// when no indexer credential is configured.
type VerificationResult struct {
	TokenAmount          float64         `json:"tokenAmount"`
	TokenAmountFormatted string          `json:"tokenAmountFormatted"`
	CountsByCollection   map[string]uint `json:"countsByCollection"`
	TotalNFTs            uint            `json:"totalNfts"`
}
