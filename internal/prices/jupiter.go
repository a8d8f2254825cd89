package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const jupiterTimeout = 8 * time.Second

// JupiterClient queries a Jupiter price v3 endpoint. The primary and the lite
// mirror share this client; only the base URL and name differ.
type JupiterClient struct {
	name      string
	baseURL   string
	solMint   string
	tokenMint string
	client    *http.Client
}

// NewJupiterClient creates a client for one Jupiter-compatible endpoint.
func NewJupiterClient(name, baseURL, solMint, tokenMint string) *JupiterClient {
	return &JupiterClient{
		name:      name,
		baseURL:   strings.TrimRight(baseURL, "/"),
		solMint:   solMint,
		tokenMint: tokenMint,
		client:    &http.Client{Timeout: jupiterTimeout},
	}
}

var _ Source = (*JupiterClient)(nil)

func (c *JupiterClient) Name() string { return c.name }

// Quote fetches USD prices for the quote asset and the tracked token in one
// request.
func (c *JupiterClient) Quote(ctx context.Context) (*Quote, error) {
	u := fmt.Sprintf("%s/price/v3?ids=%s", c.baseURL, url.QueryEscape(c.solMint+","+c.tokenMint))

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

	return parseJupiterPrices(body, c.solMint, c.tokenMint)
}

// jupiterEntry tolerates both field spellings the v3 endpoints use.
type jupiterEntry struct {
	UsdPrice *flexFloat `json:"usdPrice"`
	Price    *flexFloat `json:"price"`
}

func (e jupiterEntry) usd() *float64 {
	if e.UsdPrice != nil {
		v := float64(*e.UsdPrice)
		return &v
	}
	if e.Price != nil {
		v := float64(*e.Price)
		return &v
	}
	return nil
}

// parseJupiterPrices accepts both the wrapped {"data":{mint:{...}}} shape and
// the flat {mint:{...}} shape.
func parseJupiterPrices(body []byte, solMint, tokenMint string) (*Quote, error) {
	var wrapped struct {
		Data map[string]jupiterEntry `json:"data"`
	}
	entries := map[string]jupiterEntry{}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Data) > 0 {
		entries = wrapped.Data
	} else if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal prices: %w", err)
	}

	q := &Quote{
		SolUSD:   entries[solMint].usd(),
		TokenUSD: entries[tokenMint].usd(),
	}
	return q, nil
}

// flexFloat unmarshals a JSON number that may arrive quoted.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}
