// Package storage defines the persistence interfaces the server depends on.
// Postgres and in-memory implementations live in subpackages; ClickHouse
// backs the candle archive.
package storage

import (
	"context"
	"errors"

	"mnk3ys-dashboard/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore persists Discord users seen at login.
type UserStore interface {
	// Upsert inserts the user or refreshes its profile fields.
	Upsert(ctx context.Context, user *domain.DiscordUser) error
	GetByID(ctx context.Context, id string) (*domain.DiscordUser, error)
}

// WalletLinkStore persists wallet-to-Discord links. Wallet addresses are
// stored lowercase; implementations normalize on write and lookup.
type WalletLinkStore interface {
	Link(ctx context.Context, discordID, wallet string) error
	WalletsByDiscord(ctx context.Context, discordID string) ([]string, error)
	DiscordByWallet(ctx context.Context, wallet string) (string, error)
}

// PairsStateStore persists per-user pairs game state as an opaque document.
type PairsStateStore interface {
	Get(ctx context.Context, discordID string) (*domain.PairsState, error)
	Save(ctx context.Context, discordID string, state *domain.PairsState) error
}

// Candle is one OHLC bar written to the archive.
type Candle struct {
	Mint        string
	Granularity string
	UnixTime    int64
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
}

// OHLCArchiveStore keeps a history of fetched candles for later analysis.
// Writes are best-effort; the serving path never depends on them.
type OHLCArchiveStore interface {
	InsertCandles(ctx context.Context, candles []Candle) error
}
