package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const dexScreenerTimeout = 6 * time.Second

// DexScreenerClient lists DEX pairs for a token. It serves both as the last
// price fallback and as the enrichment source for market metrics.
type DexScreenerClient struct {
	baseURL string
	client  *http.Client
}

// NewDexScreenerClient creates a DexScreener client.
func NewDexScreenerClient(baseURL string) *DexScreenerClient {
	return &DexScreenerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: dexScreenerTimeout},
	}
}

// Pair is one DEX pair entry with the fields the aggregator inspects.
type Pair struct {
	PriceUSD    string `json:"priceUsd"`
	PriceChange struct {
		H24 *float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity struct {
		USD *float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 *float64 `json:"h24"`
	} `json:"volume"`
	MarketCap *float64 `json:"marketCap"`
	FDV       *float64 `json:"fdv"`
}

// priceUSD parses the pair's quoted price string; nil when empty or invalid.
func (p *Pair) priceUSD() *float64 {
	if p.PriceUSD == "" {
		return nil
	}
	v, err := strconv.ParseFloat(p.PriceUSD, 64)
	if err != nil {
		return nil
	}
	return &v
}

// liquidityUSD returns the pair's USD liquidity, zero when absent.
func (p *Pair) liquidityUSD() float64 {
	if p.Liquidity.USD == nil {
		return 0
	}
	return *p.Liquidity.USD
}

// Pairs fetches all Solana pairs for the given mint.
func (c *DexScreenerClient) Pairs(ctx context.Context, mint string) ([]Pair, error) {
	u := fmt.Sprintf("%s/token-pairs/v1/solana/%s", c.baseURL, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var pairs []Pair
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, fmt.Errorf("unmarshal pairs: %w", err)
	}
	return pairs, nil
}
