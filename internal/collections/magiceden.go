// Package collections aggregates marketplace and indexer metadata for the
// tracked NFT collections.
package collections

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const magicEdenTimeout = 8 * time.Second

// MagicEdenClient queries the Magic Eden v2 public API.
type MagicEdenClient struct {
	baseURL string
	client  *http.Client
}

// NewMagicEdenClient creates a Magic Eden client.
func NewMagicEdenClient(baseURL string) *MagicEdenClient {
	return &MagicEdenClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: magicEdenTimeout},
	}
}

// Stats is the marketplace stats payload for one collection. Raw floorPrice
// may be lamports or SOL; volume and average price are always lamports.
type Stats struct {
	ListedCount  *int     `json:"listedCount"`
	FloorPrice   *float64 `json:"floorPrice"`
	VolumeAll    *float64 `json:"volumeAll"`
	AvgPrice24hr *float64 `json:"avgPrice24hr"`
}

// Metadata is the marketplace collection metadata payload. The API has used
// both animationUrl spellings over time, so both are accepted.
type Metadata struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Image        *string `json:"image"`
	ImageURI     *string `json:"imageUri"`
	AnimationURL *string `json:"animationUrl"`
	AnimationAlt *string `json:"animation_url"`
	TotalSupply  *int    `json:"totalSupply"`
}

func (m *Metadata) image() *string {
	if m.Image != nil {
		return m.Image
	}
	return m.ImageURI
}

func (m *Metadata) animation() *string {
	if m.AnimationURL != nil {
		return m.AnimationURL
	}
	return m.AnimationAlt
}

// Stats fetches marketplace stats for a collection slug.
func (c *MagicEdenClient) Stats(ctx context.Context, slug string) (*Stats, error) {
	var stats Stats
	if err := c.get(ctx, fmt.Sprintf("/collections/%s/stats", slug), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Metadata fetches marketplace metadata for a collection slug.
func (c *MagicEdenClient) Metadata(ctx context.Context, slug string) (*Metadata, error) {
	var meta Metadata
	if err := c.get(ctx, fmt.Sprintf("/collections/%s", slug), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *MagicEdenClient) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
