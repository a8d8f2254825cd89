package prices

import (
	"context"
	"log"
	"time"

	"mnk3ys-dashboard/internal/cache"
	"mnk3ys-dashboard/internal/domain"
	"mnk3ys-dashboard/internal/observability"
)

// SnapshotTTL bounds how often the aggregator hits its upstreams.
const SnapshotTTL = 60 * time.Second

// Aggregator merges the ordered fallback sources and the DEX enrichment into
// one cached PriceSnapshot.
type Aggregator struct {
	sources   []Source
	dex       *DexScreenerClient
	tokenMint string
	cache     *cache.Box[*domain.PriceSnapshot]
	logger    *log.Logger
}

// AggregatorOptions bundles the Aggregator dependencies.
type AggregatorOptions struct {
	// Sources are tried in order until one yields a tracked-token price.
	Sources []Source
	// Dex is the pair-lookup client used for the last price fallback and for
	// metric enrichment. May be nil, in which case both steps are skipped.
	Dex       *DexScreenerClient
	TokenMint string
	Logger    *log.Logger
}

// NewAggregator creates a price aggregator with an empty cache.
func NewAggregator(opts AggregatorOptions) *Aggregator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		sources:   opts.Sources,
		dex:       opts.Dex,
		tokenMint: opts.TokenMint,
		cache:     cache.NewBox[*domain.PriceSnapshot](SnapshotTTL),
		logger:    logger,
	}
}

// Snapshot returns the current price snapshot, refreshing from upstreams when
// the cached one has expired. It never returns an error: when every upstream
// fails the snapshot simply has all fields nil.
func (a *Aggregator) Snapshot(ctx context.Context) *domain.PriceSnapshot {
	if snap, ok := a.cache.Get(); ok {
		observability.RecordCacheHit("prices")
		return snap
	}
	observability.RecordCacheMiss("prices")

	snap := &domain.PriceSnapshot{}

	for _, src := range a.sources {
		start := time.Now()
		q, err := src.Quote(ctx)
		out := classify(src.Name(), q, err)
		observability.RecordUpstream(out.Source, out.Status.String(), time.Since(start).Seconds())
		switch out.Status {
		case StatusError:
			a.logger.Printf("source %s failed: %v", out.Source, out.Err)
		case StatusNoPrice:
			a.logger.Printf("source %s returned no token price", out.Source)
		case StatusPrice:
			snap.BlunanaUSD = out.Quote.TokenUSD
			if out.Quote.SolUSD != nil {
				snap.SolUSD = out.Quote.SolUSD
			}
		}
		if out.Status == StatusPrice {
			break
		}
	}

	a.enrichFromDex(ctx, snap)

	if snap.BlunanaPerSol == nil && snap.BlunanaUSD != nil && snap.SolUSD != nil && *snap.SolUSD > 0 {
		per := *snap.BlunanaUSD / *snap.SolUSD
		snap.BlunanaPerSol = &per
	}

	a.cache.Put(snap)
	return snap
}

// enrichFromDex fills the token price from the first usable pair when the
// fallback chain produced none, then overwrites the secondary market metrics
// from the highest-liquidity pair. The price itself is never overwritten.
func (a *Aggregator) enrichFromDex(ctx context.Context, snap *domain.PriceSnapshot) {
	if a.dex == nil {
		return
	}

	pairs, err := a.dex.Pairs(ctx, a.tokenMint)
	if err != nil {
		a.logger.Printf("dex pair lookup failed: %v", err)
		return
	}
	if len(pairs) == 0 {
		return
	}

	if snap.BlunanaUSD == nil {
		for i := range pairs {
			p := &pairs[i]
			if price := p.priceUSD(); price != nil && p.liquidityUSD() > 0 {
				snap.BlunanaUSD = price
				break
			}
		}
	}

	best := &pairs[0]
	for i := 1; i < len(pairs); i++ {
		if pairs[i].liquidityUSD() > best.liquidityUSD() {
			best = &pairs[i]
		}
	}

	snap.PriceChange24h = best.PriceChange.H24
	snap.LiquidityUSD = best.Liquidity.USD
	snap.Volume24hUSD = best.Volume.H24
	snap.MarketCapUSD = best.MarketCap
	snap.FDVUSD = best.FDV
}
