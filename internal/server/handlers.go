package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mnk3ys-dashboard/internal/domain"
	"mnk3ys-dashboard/internal/observability"
	"mnk3ys-dashboard/internal/solana"
	"mnk3ys-dashboard/internal/storage"
)

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) error {
	start := time.Now()
	snap := s.prices.Snapshot(r.Context())
	observability.RecordRequest("/prices", time.Since(start).Seconds())
	return writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleOHLC(w http.ResponseWriter, r *http.Request) error {
	resp := s.ohlc.Candles(r.Context(), r.URL.Query().Get("type"))
	return writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) error {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		return badRequest("wallet parameter is required")
	}
	if !solana.IsValidWalletAddress(wallet) {
		return badRequest("wallet is not a valid address")
	}

	return writeJSON(w, http.StatusOK, s.verifier.Verify(r.Context(), wallet))
}

type collectionsResponse struct {
	Collections []domain.CollectionSummary `json:"collections"`
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, collectionsResponse{
		Collections: s.collections.Summaries(r.Context()),
	})
}

type holdersResponse struct {
	Holders []domain.WalletHolding `json:"holders"`
	Sort    string                 `json:"sort"`
}

func (s *Server) handleHolders(w http.ResponseWriter, r *http.Request) error {
	// Echo the key the ledger actually sorted by, not the raw query value.
	sortKey := s.ledger.NormalizeSortKey(r.URL.Query().Get("sort"))

	start := time.Now()
	rows := s.ledger.Build(r.Context(), sortKey)
	observability.RecordLedgerBuild(time.Since(start).Seconds(), len(rows))
	return writeJSON(w, http.StatusOK, holdersResponse{Holders: rows, Sort: sortKey})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Discord OAuth2 ---

// loginRedirect sends the browser back to the dashboard with a login outcome
// flag the frontend reads.
func (s *Server) loginRedirect(w http.ResponseWriter, r *http.Request, outcome string) {
	http.Redirect(w, r, s.cfg.BaseURL+"/?discord="+outcome, http.StatusFound)
}

func (s *Server) handleDiscordAuth(w http.ResponseWriter, r *http.Request) error {
	if s.discord == nil || !s.discord.Configured() {
		s.loginRedirect(w, r, "error")
		return nil
	}

	state, err := s.sessions.SetState(w)
	if err != nil {
		return fmt.Errorf("set oauth state: %w", err)
	}
	http.Redirect(w, r, s.discord.AuthorizeURL(state), http.StatusFound)
	return nil
}

func (s *Server) handleDiscordCallback(w http.ResponseWriter, r *http.Request) error {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if s.discord == nil || !s.discord.Configured() || code == "" || !s.sessions.CheckState(w, r, state) {
		s.loginRedirect(w, r, "error")
		return nil
	}

	token, err := s.discord.ExchangeCode(r.Context(), code)
	if err != nil {
		s.logger.Printf("oauth code exchange failed: %v", err)
		s.loginRedirect(w, r, "error")
		return nil
	}

	user, err := s.discord.FetchUser(r.Context(), token)
	if err != nil {
		s.logger.Printf("discord user fetch failed: %v", err)
		s.loginRedirect(w, r, "error")
		return nil
	}

	if err := s.users.Upsert(r.Context(), user); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	if err := s.sessions.Issue(w, user.ID); err != nil {
		return fmt.Errorf("issue session: %w", err)
	}

	s.loginRedirect(w, r, "success")
	return nil
}

func (s *Server) handleDiscordMe(w http.ResponseWriter, r *http.Request) error {
	discordID, err := s.sessions.UserID(r)
	if err != nil {
		return unauthorized("not logged in")
	}

	user, err := s.users.GetByID(r.Context(), discordID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return unauthorized("not logged in")
		}
		return fmt.Errorf("load user: %w", err)
	}
	return writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDiscordLogout(w http.ResponseWriter, r *http.Request) error {
	s.sessions.Clear(w)
	http.Redirect(w, r, s.cfg.BaseURL+"/", http.StatusFound)
	return nil
}

func (s *Server) handleDiscordUser(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if id == "" {
		return badRequest("id is required")
	}
	if s.discord == nil {
		return notFound("user not found")
	}

	user, err := s.discord.FetchUserByID(r.Context(), id)
	if err != nil {
		return notFound("user not found")
	}

	// Public profiles change rarely; let browsers share the lookup.
	w.Header().Set("Cache-Control", "public, max-age=300")
	return writeJSON(w, http.StatusOK, user)
}

// --- Wallet linking ---

func (s *Server) handleWalletsGet(w http.ResponseWriter, r *http.Request) error {
	discordID, err := s.sessions.UserID(r)
	if err != nil {
		return unauthorized("not logged in")
	}

	wallets, err := s.wallets.WalletsByDiscord(r.Context(), discordID)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}
	if wallets == nil {
		wallets = []string{}
	}
	return writeJSON(w, http.StatusOK, map[string][]string{"wallets": wallets})
}

func (s *Server) handleWalletsPost(w http.ResponseWriter, r *http.Request) error {
	discordID, err := s.sessions.UserID(r)
	if err != nil {
		return unauthorized("not logged in")
	}

	var body struct {
		Wallet string `json:"wallet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body")
	}
	if body.Wallet == "" {
		return badRequest("wallet is required")
	}

	if err := s.wallets.Link(r.Context(), discordID, body.Wallet); err != nil {
		return fmt.Errorf("link wallet: %w", err)
	}
	return writeJSON(w, http.StatusOK, map[string]bool{"linked": true})
}

// --- Pairs game state ---

func (s *Server) handlePairsGet(w http.ResponseWriter, r *http.Request) error {
	discordID, err := s.sessions.UserID(r)
	if err != nil {
		return unauthorized("not logged in")
	}

	state, err := s.pairs.Get(r.Context(), discordID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound("no saved state")
		}
		return fmt.Errorf("load pairs state: %w", err)
	}
	return writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePairsPost(w http.ResponseWriter, r *http.Request) error {
	discordID, err := s.sessions.UserID(r)
	if err != nil {
		return unauthorized("not logged in")
	}

	var state domain.PairsState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		return badRequest("invalid JSON body")
	}

	if err := s.pairs.Save(r.Context(), discordID, &state); err != nil {
		return fmt.Errorf("save pairs state: %w", err)
	}
	return writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}
