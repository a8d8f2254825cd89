// Package memory implements the storage interfaces with in-process maps. It
// backs local development and deployments without a database; everything is
// lost on restart.
package memory

import (
	"context"
	"strings"
	"sync"

	"mnk3ys-dashboard/internal/domain"
	"mnk3ys-dashboard/internal/storage"
)

// UserStore implements storage.UserStore in memory.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.DiscordUser
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.DiscordUser)}
}

var _ storage.UserStore = (*UserStore)(nil)

func (s *UserStore) Upsert(ctx context.Context, user *domain.DiscordUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.DiscordUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

// WalletLinkStore implements storage.WalletLinkStore in memory. Wallets are
// stored lowercase like the PostgreSQL implementation.
type WalletLinkStore struct {
	mu sync.RWMutex
	// wallet (lowercase) -> discord id
	byWallet map[string]string
	// discord id -> wallets in link order
	byDiscord map[string][]string
}

// NewWalletLinkStore creates an empty WalletLinkStore.
func NewWalletLinkStore() *WalletLinkStore {
	return &WalletLinkStore{
		byWallet:  make(map[string]string),
		byDiscord: make(map[string][]string),
	}
}

var _ storage.WalletLinkStore = (*WalletLinkStore)(nil)

func (s *WalletLinkStore) Link(ctx context.Context, discordID, wallet string) error {
	w := strings.ToLower(wallet)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byWallet[w]; ok {
		if prev == discordID {
			return nil
		}
		s.byDiscord[prev] = removeString(s.byDiscord[prev], w)
	}

	s.byWallet[w] = discordID
	s.byDiscord[discordID] = append(s.byDiscord[discordID], w)
	return nil
}

func (s *WalletLinkStore) WalletsByDiscord(ctx context.Context, discordID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallets := s.byDiscord[discordID]
	out := make([]string, len(wallets))
	copy(out, wallets)
	return out, nil
}

func (s *WalletLinkStore) DiscordByWallet(ctx context.Context, wallet string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byWallet[strings.ToLower(wallet)]
	if !ok {
		return "", storage.ErrNotFound
	}
	return id, nil
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// PairsStateStore implements storage.PairsStateStore in memory.
type PairsStateStore struct {
	mu     sync.RWMutex
	states map[string]domain.PairsState
}

// NewPairsStateStore creates an empty PairsStateStore.
func NewPairsStateStore() *PairsStateStore {
	return &PairsStateStore{states: make(map[string]domain.PairsState)}
}

var _ storage.PairsStateStore = (*PairsStateStore)(nil)

func (s *PairsStateStore) Get(ctx context.Context, discordID string) (*domain.PairsState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[discordID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &st, nil
}

func (s *PairsStateStore) Save(ctx context.Context, discordID string, state *domain.PairsState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[discordID] = *state
	return nil
}
