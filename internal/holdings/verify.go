// Package holdings answers wallet-level questions about the tracked token and
// NFT collections: single-wallet verification and the full holders ledger.
package holdings

import (
	"context"
	"log"
	"math"

	"mnk3ys-dashboard/internal/config"
	"mnk3ys-dashboard/internal/domain"
	"mnk3ys-dashboard/internal/format"
	"mnk3ys-dashboard/internal/solana"
)

// verifyAccountLimit caps the token-account lookup for one wallet. A wallet
// holding the same mint across more accounts than this is not a case the
// dashboard needs to be exact about.
const verifyAccountLimit = 10

// Verifier checks one wallet's token balance and NFT holdings.
type Verifier struct {
	indexer     solana.Indexer
	tokenMint   string
	decimals    int
	collections []config.Collection
	logger      *log.Logger
}

// VerifierOptions bundles the Verifier dependencies. Indexer may be nil,
// which puts the verifier in degraded mode: every check returns the
// zero-valued result.
type VerifierOptions struct {
	Indexer     solana.Indexer
	TokenMint   string
	Decimals    int
	Collections []config.Collection
	Logger      *log.Logger
}

// NewVerifier creates a wallet verifier.
func NewVerifier(opts VerifierOptions) *Verifier {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Verifier{
		indexer:     opts.Indexer,
		tokenMint:   opts.TokenMint,
		decimals:    opts.Decimals,
		collections: opts.Collections,
		logger:      logger,
	}
}

// Verify sums the wallet's token accounts and counts its NFTs per tracked
// collection. Upstream failures degrade to partial results, never errors.
func (v *Verifier) Verify(ctx context.Context, wallet string) *domain.VerificationResult {
	result := &domain.VerificationResult{
		TokenAmountFormatted: format.TokenAmount(0),
		CountsByCollection:   emptyCounts(v.collections),
	}
	if v.indexer == nil {
		return result
	}

	result.TokenAmount = v.tokenAmount(ctx, wallet)
	result.TokenAmountFormatted = format.TokenAmount(result.TokenAmount)

	v.countOwnedNFTs(ctx, wallet, result.CountsByCollection)
	for _, n := range result.CountsByCollection {
		result.TotalNFTs += n
	}

	return result
}

func (v *Verifier) tokenAmount(ctx context.Context, wallet string) float64 {
	accounts, err := v.indexer.GetTokenAccounts(ctx, wallet, v.tokenMint, verifyAccountLimit)
	if err != nil {
		v.logger.Printf("token account lookup for %s failed: %v", wallet, err)
		return 0
	}

	var raw uint64
	for _, acc := range accounts {
		raw += acc.Amount
	}
	return float64(raw) / math.Pow10(v.decimals)
}

// countOwnedNFTs pages through the wallet's assets, incrementing the counter
// of every tracked collection the asset belongs to. The scan stops on a short
// page, on error, or at the page ceiling.
func (v *Verifier) countOwnedNFTs(ctx context.Context, wallet string, counts map[string]uint) {
	mintToSlug := collectionMintIndex(v.collections)
	if len(mintToSlug) == 0 {
		return
	}

	for page := 1; page <= config.MaxOwnerPages; page++ {
		assets, err := v.indexer.GetAssetsByOwner(ctx, wallet, page, config.PageLimit)
		if err != nil {
			v.logger.Printf("owned-assets scan for %s page %d failed: %v", wallet, page, err)
			return
		}

		for i := range assets {
			if slug, ok := mintToSlug[assets[i].Collection()]; ok {
				counts[slug]++
			}
		}

		if len(assets) < config.PageLimit {
			return
		}
	}
}

// emptyCounts pre-seeds a zero counter per tracked collection so the JSON
// shape is stable regardless of what the wallet holds.
func emptyCounts(collections []config.Collection) map[string]uint {
	counts := make(map[string]uint, len(collections))
	for _, col := range collections {
		counts[col.Slug] = 0
	}
	return counts
}

// collectionMintIndex maps configured collection mints to slugs, skipping
// collections without an indexer identifier.
func collectionMintIndex(collections []config.Collection) map[string]string {
	idx := make(map[string]string, len(collections))
	for _, col := range collections {
		if col.CollectionMint != "" {
			idx[col.CollectionMint] = col.Slug
		}
	}
	return idx
}
