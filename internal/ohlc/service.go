package ohlc

import (
	"context"
	"log"
	"strings"
	"time"

	"mnk3ys-dashboard/internal/cache"
	"mnk3ys-dashboard/internal/domain"
	"mnk3ys-dashboard/internal/storage"
)

// CandleTTL bounds refetches per granularity.
const CandleTTL = 2 * time.Minute

// window is how far back each candle request reaches.
const window = 7 * 24 * time.Hour

// DefaultGranularity is used for missing or unrecognized type parameters.
const DefaultGranularity = "15m"

var allowedGranularities = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true,
}

// NormalizeGranularity lowercases and trims the requested type, falling back
// to the default for anything outside the whitelist.
func NormalizeGranularity(raw string) string {
	g := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if allowedGranularities[g] {
		return g
	}
	return DefaultGranularity
}

// Service serves cached candle windows. Without a client (no API key) it is
// in degraded mode and returns an unsuccessful, well-formed response.
type Service struct {
	client  *BirdeyeClient
	mint    string
	cache   *cache.Keyed[*domain.OHLCResponse]
	archive storage.OHLCArchiveStore
	logger  *log.Logger
	now     func() time.Time
}

// ServiceOptions bundles the Service dependencies. Client and Archive may be
// nil.
type ServiceOptions struct {
	Client  *BirdeyeClient
	Mint    string
	Archive storage.OHLCArchiveStore
	Logger  *log.Logger
}

// NewService creates an OHLC service with an empty cache.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		client:  opts.Client,
		mint:    opts.Mint,
		cache:   cache.NewKeyed[*domain.OHLCResponse](CandleTTL),
		archive: opts.Archive,
		logger:  logger,
		now:     time.Now,
	}
}

// Candles returns the last seven days of candles at the given granularity.
// Failures and the missing-key degraded mode both produce success=false with
// a message, never an error.
func (s *Service) Candles(ctx context.Context, granularity string) *domain.OHLCResponse {
	g := NormalizeGranularity(granularity)

	if resp, ok := s.cache.Get(g); ok {
		return resp
	}

	if s.client == nil {
		return &domain.OHLCResponse{
			Success: false,
			Message: "BIRDEYE_API_KEY is not configured",
		}
	}

	to := s.now().Unix()
	from := s.now().Add(-window).Unix()

	items, err := s.client.OHLCV(ctx, s.mint, g, from, to)
	if err != nil {
		s.logger.Printf("candle fetch (%s) failed: %v", g, err)
		return &domain.OHLCResponse{Success: false, Message: "upstream unavailable"}
	}

	resp := &domain.OHLCResponse{
		Success: true,
		Data:    domain.OHLCData{Items: items},
	}
	s.cache.Put(g, resp)

	s.archiveCandles(ctx, g, items)
	return resp
}

// archiveCandles writes the fetched window to the archive when one is
// configured. A failed write only logs.
func (s *Service) archiveCandles(ctx context.Context, granularity string, items []domain.OHLCItem) {
	if s.archive == nil || len(items) == 0 {
		return
	}

	candles := make([]storage.Candle, 0, len(items))
	for _, it := range items {
		candles = append(candles, storage.Candle{
			Mint:        s.mint,
			Granularity: granularity,
			UnixTime:    it.UnixTime,
			Open:        it.Open,
			High:        it.High,
			Low:         it.Low,
			Close:       it.Close,
			Volume:      it.Volume,
		})
	}
	if err := s.archive.InsertCandles(ctx, candles); err != nil {
		s.logger.Printf("candle archive write failed: %v", err)
	}
}
