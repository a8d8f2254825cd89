// Package config carries the process configuration: tracked token and
// collections, upstream endpoints and credentials, and the pagination
// ceilings for indexer scans.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Pagination ceilings for indexer scans. They bound the worst-case upstream
// call count per request: an owned-assets scan issues at most MaxOwnerPages
// calls, a collection group scan at most MaxGroupPages.
const (
	PageLimit     = 1000
	MaxOwnerPages = 20
	MaxGroupPages = 50
)

// Default upstream endpoints.
const (
	DefaultHeliusRPCURL    = "https://mainnet.helius-rpc.com"
	DefaultJupiterPriceURL = "https://api.jup.ag"
	DefaultJupiterLiteURL  = "https://lite-api.jup.ag"
	DefaultDexScreenerURL  = "https://api.dexscreener.com"
	DefaultMagicEdenURL    = "https://api-mainnet.magiceden.dev/v2"
	DefaultBirdeyeURL      = "https://public-api.birdeye.so"
)

// defaultTokenMint is the BLUNANA mint, overridable for other deployments.
const defaultTokenMint = "KMNo3nJsBXfcpJTVhZcXLW7RmTwTt4GVFE7suUBo9sS"

// Collection is one tracked NFT collection. CollectionMint is the indexer
// collection identifier; when empty, indexer-backed counts and supply are
// skipped for this collection (degraded mode, not an error).
type Collection struct {
	Slug           string
	Name           string
	CollectionMint string
}

// Config is the full process configuration.
type Config struct {
	ListenAddr string
	BaseURL    string
	StaticDir  string

	TokenMint     string
	TokenDecimals int
	Collections   []Collection

	HeliusAPIKey  string
	HeliusRPCURL  string
	BirdeyeAPIKey string
	BirdeyeURL    string

	JupiterPriceURL string
	JupiterLiteURL  string
	DexScreenerURL  string
	MagicEdenURL    string

	DiscordClientID     string
	DiscordClientSecret string
	DiscordBotToken     string
	SessionSecret       string

	PostgresDSN   string
	ClickhouseDSN string
}

// FromEnv builds a Config from environment variables, applying defaults for
// everything optional.
func FromEnv() *Config {
	cfg := &Config{
		ListenAddr: envOr("LISTEN_ADDR", ":3000"),
		StaticDir:  envOr("STATIC_DIR", "public"),

		TokenMint:     envOr("TOKEN_MINT", defaultTokenMint),
		TokenDecimals: envIntOr("TOKEN_DECIMALS", 6),
		Collections: []Collection{
			{Slug: "mnk3ys", Name: "MNK3YS", CollectionMint: os.Getenv("MNK3YS_COLLECTION_MINT")},
			{Slug: "zmb3ys", Name: "ZMB3YS", CollectionMint: os.Getenv("ZMB3YS_COLLECTION_MINT")},
		},

		HeliusAPIKey:  os.Getenv("HELIUS_API_KEY"),
		HeliusRPCURL:  envOr("HELIUS_RPC_URL", DefaultHeliusRPCURL),
		BirdeyeAPIKey: os.Getenv("BIRDEYE_API_KEY"),
		BirdeyeURL:    envOr("BIRDEYE_URL", DefaultBirdeyeURL),

		JupiterPriceURL: envOr("JUPITER_PRICE_URL", DefaultJupiterPriceURL),
		JupiterLiteURL:  envOr("JUPITER_LITE_URL", DefaultJupiterLiteURL),
		DexScreenerURL:  envOr("DEXSCREENER_URL", DefaultDexScreenerURL),
		MagicEdenURL:    envOr("MAGICEDEN_URL", DefaultMagicEdenURL),

		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordBotToken:     os.Getenv("DISCORD_BOT_TOKEN"),
		SessionSecret:       envOr("SESSION_SECRET", "mnk3ys-session-secret-change-in-production"),

		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),
	}

	cfg.BaseURL = strings.TrimRight(envOr("BASE_URL", "http://localhost"+normalizeAddr(cfg.ListenAddr)), "/")
	return cfg
}

// CollectionBySlug returns the tracked collection with the given slug.
func (c *Config) CollectionBySlug(slug string) (Collection, bool) {
	for _, col := range c.Collections {
		if col.Slug == slug {
			return col, true
		}
	}
	return Collection{}, false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// normalizeAddr turns ":3000" into ":3000" and "0.0.0.0:3000" into ":3000"
// for the default BASE_URL.
func normalizeAddr(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ":" + addr
}
