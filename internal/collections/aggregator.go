package collections

import (
	"context"
	"log"
	"math"
	"time"

	"mnk3ys-dashboard/internal/cache"
	"mnk3ys-dashboard/internal/config"
	"mnk3ys-dashboard/internal/domain"
	"mnk3ys-dashboard/internal/solana"
)

// SummaryTTL bounds how often the full collection scan runs. Group pagination
// can issue up to MaxGroupPages indexer calls per collection, so summaries
// are refreshed well below the per-request rate.
const SummaryTTL = 5 * time.Minute

// lamportsThreshold drives the floor-price unit heuristic: marketplace floor
// values at or above it are assumed to be lamports. This is a heuristic, not
// an API guarantee; a floor of 1000+ SOL would be misread.
const lamportsThreshold = 1000

// Aggregator builds CollectionSummary rows for every tracked collection.
type Aggregator struct {
	collections []config.Collection
	marketplace *MagicEdenClient
	indexer     solana.Indexer
	cache       *cache.Box[[]domain.CollectionSummary]
	logger      *log.Logger
}

// AggregatorOptions bundles the Aggregator dependencies. Indexer may be nil;
// indexer-backed supply and metadata are then skipped.
type AggregatorOptions struct {
	Collections []config.Collection
	Marketplace *MagicEdenClient
	Indexer     solana.Indexer
	Logger      *log.Logger
}

// NewAggregator creates a collection aggregator with an empty cache.
func NewAggregator(opts AggregatorOptions) *Aggregator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		collections: opts.Collections,
		marketplace: opts.Marketplace,
		indexer:     opts.Indexer,
		cache:       cache.NewBox[[]domain.CollectionSummary](SummaryTTL),
		logger:      logger,
	}
}

// Summaries returns one summary per tracked collection. Upstream failures
// leave fields nil; the slice always has one row per collection.
func (a *Aggregator) Summaries(ctx context.Context) []domain.CollectionSummary {
	if rows, ok := a.cache.Get(); ok {
		return rows
	}

	rows := make([]domain.CollectionSummary, 0, len(a.collections))
	for _, col := range a.collections {
		rows = append(rows, a.summarize(ctx, col))
	}

	a.cache.Put(rows)
	return rows
}

func (a *Aggregator) summarize(ctx context.Context, col config.Collection) domain.CollectionSummary {
	sum := domain.CollectionSummary{
		Slug:           col.Slug,
		Name:           col.Name,
		MarketplaceURL: "https://magiceden.io/marketplace/" + col.Slug,
	}

	a.applyStats(ctx, col.Slug, &sum)
	a.applyMetadata(ctx, col.Slug, &sum)
	a.applyIndexer(ctx, col, &sum)

	return sum
}

func (a *Aggregator) applyStats(ctx context.Context, slug string, sum *domain.CollectionSummary) {
	if a.marketplace == nil {
		return
	}
	stats, err := a.marketplace.Stats(ctx, slug)
	if err != nil {
		a.logger.Printf("stats fetch for %s failed: %v", slug, err)
		return
	}

	sum.ListedCount = stats.ListedCount
	if stats.FloorPrice != nil {
		sum.FloorPriceSol = fptr(round(floorToSol(*stats.FloorPrice), 4))
	}
	if stats.VolumeAll != nil {
		sum.VolumeAllSol = fptr(round(*stats.VolumeAll/solana.LamportsPerSol, 2))
	}
	if stats.AvgPrice24hr != nil {
		sum.AvgPrice24hSol = fptr(round(*stats.AvgPrice24hr/solana.LamportsPerSol, 4))
	}
}

func (a *Aggregator) applyMetadata(ctx context.Context, slug string, sum *domain.CollectionSummary) {
	if a.marketplace == nil {
		return
	}
	meta, err := a.marketplace.Metadata(ctx, slug)
	if err != nil {
		a.logger.Printf("metadata fetch for %s failed: %v", slug, err)
		return
	}

	if meta.Name != "" {
		sum.Name = meta.Name
	}
	if meta.Description != nil {
		sum.Description = meta.Description
	}
	if img := meta.image(); img != nil {
		sum.Image = img
	}
	if anim := meta.animation(); anim != nil {
		sum.AnimationURL = anim
	}
	if meta.TotalSupply != nil {
		sum.Supply = meta.TotalSupply
	}
}

// applyIndexer counts the collection's members page by page for an
// authoritative supply, and on the first page lets nested collection
// metadata override the marketplace values.
func (a *Aggregator) applyIndexer(ctx context.Context, col config.Collection, sum *domain.CollectionSummary) {
	if a.indexer == nil || col.CollectionMint == "" {
		return
	}

	count := 0
	for page := 1; page <= config.MaxGroupPages; page++ {
		assets, err := a.indexer.GetAssetsByGroup(ctx, col.CollectionMint, page, config.PageLimit, page == 1)
		if err != nil {
			a.logger.Printf("group scan for %s page %d failed: %v", col.Slug, page, err)
			return
		}
		count += len(assets)

		if page == 1 && len(assets) > 0 {
			if info := assets[0].CollectionInfo(); info != nil {
				if info.Name != "" {
					sum.Name = info.Name
				}
				if info.Description != "" {
					sum.Description = &info.Description
				}
				if info.Image != "" {
					sum.Image = &info.Image
				}
			}
		}

		if len(assets) < config.PageLimit {
			break
		}
	}

	sum.Supply = &count
}

// floorToSol applies the unit-scale heuristic: large raw values are lamports.
func floorToSol(raw float64) float64 {
	if raw >= lamportsThreshold {
		return raw / solana.LamportsPerSol
	}
	return raw
}

func round(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}

func fptr(v float64) *float64 { return &v }
