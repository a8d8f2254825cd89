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

// LedgerBuilder assembles the full holders ledger: every wallet holding the
// tracked token or an NFT from a tracked collection, with a composite score.
type LedgerBuilder struct {
	indexer     solana.Indexer
	tokenMint   string
	decimals    int
	collections []config.Collection
	logger      *log.Logger
}

// LedgerOptions bundles the LedgerBuilder dependencies. Indexer may be nil,
// in which case every build returns an empty ledger.
type LedgerOptions struct {
	Indexer     solana.Indexer
	TokenMint   string
	Decimals    int
	Collections []config.Collection
	Logger      *log.Logger
}

// NewLedgerBuilder creates a holders ledger builder.
func NewLedgerBuilder(opts LedgerOptions) *LedgerBuilder {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &LedgerBuilder{
		indexer:     opts.Indexer,
		tokenMint:   opts.TokenMint,
		decimals:    opts.Decimals,
		collections: opts.Collections,
		logger:      logger,
	}
}

// Build scans token accounts and collection memberships, merges them per
// wallet and returns the ledger sorted by sortKey. A failing scan stops only
// itself; the ledger keeps whatever the other scans produced.
func (b *LedgerBuilder) Build(ctx context.Context, sortKey string) []domain.WalletHolding {
	if b.indexer == nil {
		return []domain.WalletHolding{}
	}

	byWallet := make(map[string]*domain.WalletHolding)

	b.scanTokenBalances(ctx, byWallet)
	for _, col := range b.collections {
		if col.CollectionMint != "" {
			b.scanCollection(ctx, col, byWallet)
		}
	}

	rows := make([]domain.WalletHolding, 0, len(byWallet))
	for _, h := range byWallet {
		var total uint
		for _, n := range h.CountsByCollection {
			total += n
		}
		h.TotalNFTs = total
		h.TotalScore = domain.CompositeScore(h.TokenBalance, total)
		rows = append(rows, *h)
	}

	sortHoldings(rows, sortKey, b.collections)
	return rows
}

// scanTokenBalances runs the full token-account scan for the tracked mint.
// Multiple accounts for one owner sum together; zero-amount accounts are
// skipped. The formatted balance is recomputed on every update so a partial
// scan still leaves consistent rows.
func (b *LedgerBuilder) scanTokenBalances(ctx context.Context, byWallet map[string]*domain.WalletHolding) {
	accounts, err := b.indexer.TokenAccountsByMint(ctx, b.tokenMint)
	if err != nil {
		b.logger.Printf("token account scan failed: %v", err)
		return
	}

	scale := math.Pow10(b.decimals)
	for _, acc := range accounts {
		rec := solana.DecodeOwnerAmount(acc.Data)
		if rec == nil || rec.Amount == 0 {
			continue
		}
		h := b.holding(byWallet, rec.Owner)
		h.TokenBalance += float64(rec.Amount) / scale
		h.TokenBalanceFormatted = format.TokenAmount(h.TokenBalance)
	}
}

// scanCollection pages through one collection's members, incrementing the
// owner's counter for that collection.
func (b *LedgerBuilder) scanCollection(ctx context.Context, col config.Collection, byWallet map[string]*domain.WalletHolding) {
	for page := 1; page <= config.MaxGroupPages; page++ {
		assets, err := b.indexer.GetAssetsByGroup(ctx, col.CollectionMint, page, config.PageLimit, false)
		if err != nil {
			b.logger.Printf("group scan for %s page %d failed: %v", col.Slug, page, err)
			return
		}

		for i := range assets {
			owner := assets[i].Ownership.Owner
			if owner == "" {
				continue
			}
			b.holding(byWallet, owner).CountsByCollection[col.Slug]++
		}

		if len(assets) < config.PageLimit {
			return
		}
	}
}

func (b *LedgerBuilder) holding(byWallet map[string]*domain.WalletHolding, wallet string) *domain.WalletHolding {
	if h, ok := byWallet[wallet]; ok {
		return h
	}
	h := &domain.WalletHolding{
		Wallet:                wallet,
		TokenBalanceFormatted: format.TokenAmount(0),
		CountsByCollection:    emptyCounts(b.collections),
	}
	byWallet[wallet] = h
	return h
}
