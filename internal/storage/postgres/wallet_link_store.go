package postgres

import (
	"context"
	"fmt"
	"strings"

	"mnk3ys-dashboard/internal/storage"
)

// WalletLinkStore implements storage.WalletLinkStore using PostgreSQL.
// Wallet addresses are normalized to lowercase on every write and lookup.
type WalletLinkStore struct {
	pool *Pool
}

// NewWalletLinkStore creates a new WalletLinkStore.
func NewWalletLinkStore(pool *Pool) *WalletLinkStore {
	return &WalletLinkStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletLinkStore = (*WalletLinkStore)(nil)

// Link associates a wallet with a Discord user. Re-linking an existing wallet
// moves it to the new user.
func (s *WalletLinkStore) Link(ctx context.Context, discordID, wallet string) error {
	query := `
		INSERT INTO wallets (wallet, discord_id)
		VALUES ($1, $2)
		ON CONFLICT (wallet) DO UPDATE SET
			discord_id = EXCLUDED.discord_id,
			updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query, strings.ToLower(wallet), discordID)
	if err != nil {
		return fmt.Errorf("link wallet: %w", err)
	}
	return nil
}

// WalletsByDiscord returns all wallets linked to a Discord user, oldest first.
func (s *WalletLinkStore) WalletsByDiscord(ctx context.Context, discordID string) ([]string, error) {
	query := `
		SELECT wallet
		FROM wallets
		WHERE discord_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, discordID)
	if err != nil {
		return nil, fmt.Errorf("query wallets by discord: %w", err)
	}
	defer rows.Close()

	var wallets []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}

// DiscordByWallet returns the Discord user a wallet is linked to. Returns
// ErrNotFound if the wallet is unlinked.
func (s *WalletLinkStore) DiscordByWallet(ctx context.Context, wallet string) (string, error) {
	query := `
		SELECT discord_id
		FROM wallets
		WHERE wallet = $1
	`

	var discordID string
	err := s.pool.QueryRow(ctx, query, strings.ToLower(wallet)).Scan(&discordID)
	if err != nil {
		if isNotFoundError(err) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get discord by wallet: %w", err)
	}
	return discordID, nil
}
