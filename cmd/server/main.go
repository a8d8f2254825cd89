// Package main runs the community dashboard API: price aggregation with
// live WebSocket push, collection stats, holder verification, the holder
// ledger, OHLC candles and the Discord-backed account features.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mnk3ys-dashboard/internal/auth"
	"mnk3ys-dashboard/internal/collections"
	"mnk3ys-dashboard/internal/config"
	"mnk3ys-dashboard/internal/holdings"
	"mnk3ys-dashboard/internal/ohlc"
	"mnk3ys-dashboard/internal/prices"
	"mnk3ys-dashboard/internal/server"
	"mnk3ys-dashboard/internal/solana"
	"mnk3ys-dashboard/internal/storage"
	chstore "mnk3ys-dashboard/internal/storage/clickhouse"
	"mnk3ys-dashboard/internal/storage/memory"
	"mnk3ys-dashboard/internal/storage/migrations"
	pgstore "mnk3ys-dashboard/internal/storage/postgres"
)

// appStores holds the account-facing stores plus the optional candle archive.
type appStores struct {
	users   storage.UserStore
	wallets storage.WalletLinkStore
	pairs   storage.PairsStateStore
	archive storage.OHLCArchiveStore
}

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	cfg := config.FromEnv()

	// Flags override env for the knobs an operator flips most often.
	listenAddr := flag.String("listen-addr", cfg.ListenAddr, "HTTP listen address")
	staticDir := flag.String("static-dir", cfg.StaticDir, "directory of static dashboard assets")
	baseURL := flag.String("base-url", cfg.BaseURL, "public base URL used for OAuth redirects")
	flag.Parse()

	cfg.ListenAddr = *listenAddr
	cfg.StaticDir = *staticDir
	cfg.BaseURL = strings.TrimRight(*baseURL, "/")

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Indexer (Helius DAS + RPC). Without an API key the indexer-backed
	// endpoints answer degraded responses instead of failing.
	var indexer solana.Indexer
	if cfg.HeliusAPIKey != "" {
		indexer = solana.NewHTTPClient(cfg.HeliusRPCURL + "/?api-key=" + cfg.HeliusAPIKey)
	} else {
		logger.Println("HELIUS_API_KEY not set; holder and collection scans run degraded")
	}

	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	priceAgg := prices.NewAggregator(prices.AggregatorOptions{
		Sources: []prices.Source{
			prices.NewJupiterClient("jupiter", cfg.JupiterPriceURL, solana.SolMint, cfg.TokenMint),
			prices.NewJupiterClient("jupiter-lite", cfg.JupiterLiteURL, solana.SolMint, cfg.TokenMint),
		},
		Dex:       prices.NewDexScreenerClient(cfg.DexScreenerURL),
		TokenMint: cfg.TokenMint,
		Logger:    log.New(os.Stdout, "[prices] ", log.LstdFlags),
	})

	collectionAgg := collections.NewAggregator(collections.AggregatorOptions{
		Collections: cfg.Collections,
		Marketplace: collections.NewMagicEdenClient(cfg.MagicEdenURL),
		Indexer:     indexer,
		Logger:      log.New(os.Stdout, "[collections] ", log.LstdFlags),
	})

	verifier := holdings.NewVerifier(holdings.VerifierOptions{
		Indexer:     indexer,
		TokenMint:   cfg.TokenMint,
		Decimals:    cfg.TokenDecimals,
		Collections: cfg.Collections,
		Logger:      log.New(os.Stdout, "[verify] ", log.LstdFlags),
	})

	ledger := holdings.NewLedgerBuilder(holdings.LedgerOptions{
		Indexer:     indexer,
		TokenMint:   cfg.TokenMint,
		Decimals:    cfg.TokenDecimals,
		Collections: cfg.Collections,
		Logger:      log.New(os.Stdout, "[holders] ", log.LstdFlags),
	})

	var birdeye *ohlc.BirdeyeClient
	if cfg.BirdeyeAPIKey != "" {
		birdeye = ohlc.NewBirdeyeClient(cfg.BirdeyeURL, cfg.BirdeyeAPIKey)
	} else {
		logger.Println("BIRDEYE_API_KEY not set; /ohlc serves degraded responses")
	}
	ohlcService := ohlc.NewService(ohlc.ServiceOptions{
		Client:  birdeye,
		Mint:    cfg.TokenMint,
		Archive: stores.archive,
		Logger:  log.New(os.Stdout, "[ohlc] ", log.LstdFlags),
	})

	discord := auth.NewDiscordClient(auth.DiscordOptions{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		BotToken:     cfg.DiscordBotToken,
		RedirectURI:  cfg.BaseURL + "/api/discord/callback",
	})
	if !discord.Configured() {
		logger.Println("Discord OAuth credentials not set; login endpoints are disabled")
	}
	sessions := auth.NewSessionManager(cfg.SessionSecret, strings.HasPrefix(cfg.BaseURL, "https://"))

	hub := server.NewHub(logger)
	go hub.Run(ctx)

	srv := server.New(server.Options{
		Config:      cfg,
		Prices:      priceAgg,
		Collections: collectionAgg,
		Verifier:    verifier,
		Ledger:      ledger,
		OHLC:        ohlcService,
		Discord:     discord,
		Sessions:    sessions,
		Users:       stores.users,
		Wallets:     stores.wallets,
		Pairs:       stores.pairs,
		Hub:         hub,
		Logger:      logger,
	})
	go srv.RunPriceFeed(ctx)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}

		// Second signal forces immediate exit.
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		default:
		}
	}()

	logger.Printf("Listening on %s (base URL %s)", cfg.ListenAddr, cfg.BaseURL)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores builds the account stores on PostgreSQL when a DSN is
// configured and in memory otherwise, plus the optional ClickHouse candle
// archive. The returned cleanup closes whatever was opened.
func createStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (*appStores, func(), error) {
	stores := &appStores{}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}

		stores.users = pgstore.NewUserStore(pool)
		stores.wallets = pgstore.NewWalletLinkStore(pool)
		stores.pairs = pgstore.NewPairsStateStore(pool)
	} else {
		logger.Println("POSTGRES_DSN not set; using in-memory stores (state is lost on restart)")
		stores.users = memory.NewUserStore()
		stores.wallets = memory.NewWalletLinkStore()
		stores.pairs = memory.NewPairsStateStore()
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })

		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}

		stores.archive = chstore.NewOHLCArchiveStore(conn)
	}

	return stores, cleanup, nil
}
