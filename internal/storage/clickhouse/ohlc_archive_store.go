package clickhouse

import (
	"context"
	"fmt"

	"mnk3ys-dashboard/internal/storage"
)

// OHLCArchiveStore implements storage.OHLCArchiveStore using ClickHouse.
type OHLCArchiveStore struct {
	conn *Conn
}

// NewOHLCArchiveStore creates a new OHLCArchiveStore.
func NewOHLCArchiveStore(conn *Conn) *OHLCArchiveStore {
	return &OHLCArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OHLCArchiveStore = (*OHLCArchiveStore)(nil)

// InsertCandles writes a batch of candles. Refetched bars are deduplicated by
// the ReplacingMergeTree engine, so repeat windows are safe to insert.
func (s *OHLCArchiveStore) InsertCandles(ctx context.Context, candles []storage.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ohlc_candles (
			mint, granularity, unix_time, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range candles {
		err = batch.Append(
			c.Mint, c.Granularity, uint64(c.UnixTime),
			c.Open, c.High, c.Low, c.Close, c.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}
