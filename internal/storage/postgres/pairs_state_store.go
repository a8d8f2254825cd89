package postgres

import (
	"context"
	"fmt"

	"mnk3ys-dashboard/internal/domain"
	"mnk3ys-dashboard/internal/storage"
)

// PairsStateStore implements storage.PairsStateStore using PostgreSQL. The
// deck/flipped/matched/prizes payloads pass through as JSONB documents.
type PairsStateStore struct {
	pool *Pool
}

// NewPairsStateStore creates a new PairsStateStore.
func NewPairsStateStore(pool *Pool) *PairsStateStore {
	return &PairsStateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PairsStateStore = (*PairsStateStore)(nil)

// Get retrieves a user's game state. Returns ErrNotFound if none saved.
func (s *PairsStateStore) Get(ctx context.Context, discordID string) (*domain.PairsState, error) {
	query := `
		SELECT turns_remaining, deck, flipped, matched, prizes_won
		FROM pairs_state
		WHERE discord_id = $1
	`

	var st domain.PairsState
	err := s.pool.QueryRow(ctx, query, discordID).Scan(
		&st.TurnsRemaining,
		&st.Deck,
		&st.Flipped,
		&st.Matched,
		&st.PrizesWon,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pairs state: %w", err)
	}
	return &st, nil
}

// Save upserts a user's game state wholesale.
func (s *PairsStateStore) Save(ctx context.Context, discordID string, state *domain.PairsState) error {
	query := `
		INSERT INTO pairs_state (discord_id, turns_remaining, deck, flipped, matched, prizes_won)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (discord_id) DO UPDATE SET
			turns_remaining = EXCLUDED.turns_remaining,
			deck = EXCLUDED.deck,
			flipped = EXCLUDED.flipped,
			matched = EXCLUDED.matched,
			prizes_won = EXCLUDED.prizes_won,
			updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query,
		discordID,
		state.TurnsRemaining,
		state.Deck,
		state.Flipped,
		state.Matched,
		state.PrizesWon,
	)
	if err != nil {
		return fmt.Errorf("save pairs state: %w", err)
	}
	return nil
}
