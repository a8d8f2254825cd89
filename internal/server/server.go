// Package server wires the aggregators, auth and stores into the HTTP API.
package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mnk3ys-dashboard/internal/auth"
	"mnk3ys-dashboard/internal/collections"
	"mnk3ys-dashboard/internal/config"
	"mnk3ys-dashboard/internal/holdings"
	"mnk3ys-dashboard/internal/observability"
	"mnk3ys-dashboard/internal/ohlc"
	"mnk3ys-dashboard/internal/prices"
	"mnk3ys-dashboard/internal/storage"
)

// Server owns the HTTP surface of the dashboard.
type Server struct {
	cfg *config.Config

	prices      *prices.Aggregator
	collections *collections.Aggregator
	verifier    *holdings.Verifier
	ledger      *holdings.LedgerBuilder
	ohlc        *ohlc.Service

	discord  *auth.DiscordClient
	sessions *auth.SessionManager

	users   storage.UserStore
	wallets storage.WalletLinkStore
	pairs   storage.PairsStateStore

	hub    *Hub
	logger *log.Logger
}

// Options bundles the Server dependencies.
type Options struct {
	Config *config.Config

	Prices      *prices.Aggregator
	Collections *collections.Aggregator
	Verifier    *holdings.Verifier
	Ledger      *holdings.LedgerBuilder
	OHLC        *ohlc.Service

	Discord  *auth.DiscordClient
	Sessions *auth.SessionManager

	Users   storage.UserStore
	Wallets storage.WalletLinkStore
	Pairs   storage.PairsStateStore

	Hub    *Hub
	Logger *log.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:         opts.Config,
		prices:      opts.Prices,
		collections: opts.Collections,
		verifier:    opts.Verifier,
		ledger:      opts.Ledger,
		ohlc:        opts.OHLC,
		discord:     opts.Discord,
		sessions:    opts.Sessions,
		users:       opts.Users,
		wallets:     opts.Wallets,
		pairs:       opts.Pairs,
		hub:         opts.Hub,
		logger:      logger,
	}
}

// Router builds the chi router with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/prices", s.handle(s.handlePrices))
	r.Get("/ohlc", s.handle(s.handleOHLC))
	r.Get("/verify", s.handle(s.handleVerify))
	r.Get("/collections", s.handle(s.handleCollections))
	r.Get("/holders", s.handle(s.handleHolders))

	r.Route("/api", func(r chi.Router) {
		r.Get("/discord/auth", s.handle(s.handleDiscordAuth))
		r.Get("/discord/callback", s.handle(s.handleDiscordCallback))
		r.Get("/discord/me", s.handle(s.handleDiscordMe))
		r.Get("/discord/logout", s.handle(s.handleDiscordLogout))
		r.Get("/discord/user/{id}", s.handle(s.handleDiscordUser))

		r.Get("/wallets", s.handle(s.handleWalletsGet))
		r.Post("/wallets", s.handle(s.handleWalletsPost))

		r.Get("/pairs/state", s.handle(s.handlePairsGet))
		r.Post("/pairs/state", s.handle(s.handlePairsPost))
	})

	if s.hub != nil {
		r.Get("/ws", s.hub.ServeWS)
	}

	r.Get("/healthz", s.handle(s.handleHealthz))
	r.Handle("/metrics", observability.Handler())

	if s.cfg != nil && s.cfg.StaticDir != "" {
		if _, err := os.Stat(s.cfg.StaticDir); err == nil {
			r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
		}
	}

	return r
}

// RunPriceFeed refreshes the price snapshot on the cache cadence and pushes
// each one to the hub. It returns when ctx is cancelled.
func (s *Server) RunPriceFeed(ctx context.Context) {
	if s.prices == nil || s.hub == nil {
		return
	}

	ticker := time.NewTicker(prices.SnapshotTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.hub.Broadcast(s.prices.Snapshot(ctx))
		}
	}
}
