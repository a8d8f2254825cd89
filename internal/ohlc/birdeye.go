// Package ohlc proxies candle data from Birdeye with a short per-granularity
// cache and an optional archive.
package ohlc

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

	"mnk3ys-dashboard/internal/domain"
)

const birdeyeTimeout = 10 * time.Second

// BirdeyeClient queries the Birdeye OHLCV v3 endpoint.
type BirdeyeClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewBirdeyeClient creates a Birdeye client. The API key goes into the
// X-API-KEY header on every request.
func NewBirdeyeClient(baseURL, apiKey string) *BirdeyeClient {
	return &BirdeyeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: birdeyeTimeout},
	}
}

// OHLCV fetches candles for a mint between from and to (unix seconds) at the
// given granularity.
func (c *BirdeyeClient) OHLCV(ctx context.Context, mint, granularity string, from, to int64) ([]domain.OHLCItem, error) {
	q := url.Values{}
	q.Set("address", mint)
	q.Set("type", granularity)
	q.Set("time_from", strconv.FormatInt(from, 10))
	q.Set("time_to", strconv.FormatInt(to, 10))
	q.Set("currency", "usd")

	u := c.baseURL + "/defi/v3/ohlcv?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

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

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			Items []domain.OHLCItem `json:"items"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("upstream rejected request: %s", parsed.Message)
	}
	return parsed.Data.Items, nil
}
