package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// DefaultTimeout bounds each individual RPC call. There is deliberately no
// retry: every upstream call is a single best-effort attempt, and callers
// fall back or degrade on failure.
const DefaultTimeout = 30 * time.Second

// HTTPClient implements Indexer over HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint  string
	client    *http.Client
	requestID atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates an RPC client for the given endpoint (including any
// api-key query string).
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Indexer = (*HTTPClient)(nil)

// rpcRequest represents a JSON-RPC 2.0 request. Params is positional for
// classic RPC methods and an object for DAS methods.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a single JSON-RPC call.
func (c *HTTPClient) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}

// TokenAccountsByMint scans all token accounts for a mint with a byte-level
// filter on the mint field and a data slice limited to the owner+amount
// bytes. The scan has no owner filter and returns every holder account.
func (c *HTTPClient) TokenAccountsByMint(ctx context.Context, mint string) ([]ProgramAccount, error) {
	params := []interface{}{
		TokenProgramID,
		map[string]interface{}{
			"encoding":   "base64",
			"commitment": "confirmed",
			"filters": []interface{}{
				map[string]interface{}{"dataSize": tokenAccountSize},
				// Token account layout starts with mint(32) | owner(32) | amount(8).
				map[string]interface{}{"memcmp": map[string]interface{}{"offset": 0, "bytes": mint}},
			},
			"dataSlice": map[string]interface{}{"offset": 32, "length": 40},
		},
	}

	var result []getProgramAccountsRow
	if err := c.call(ctx, "getProgramAccounts", params, &result); err != nil {
		return nil, err
	}

	accounts := make([]ProgramAccount, 0, len(result))
	for _, row := range result {
		if len(row.Account.Data) == 0 {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(row.Account.Data[0])
		if err != nil {
			continue
		}
		accounts = append(accounts, ProgramAccount{Pubkey: row.Pubkey, Data: data})
	}
	return accounts, nil
}

type getProgramAccountsRow struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Data []string `json:"data"` // [base64_data, encoding]
	} `json:"account"`
}

// GetTokenAccounts returns token accounts owned by one wallet for a mint.
func (c *HTTPClient) GetTokenAccounts(ctx context.Context, owner, mint string, limit int) ([]TokenAccount, error) {
	params := map[string]interface{}{
		"owner": owner,
		"mint":  mint,
		"limit": limit,
	}

	var result getTokenAccountsResult
	if err := c.call(ctx, "getTokenAccounts", params, &result); err != nil {
		return nil, err
	}
	return result.TokenAccounts, nil
}

type getTokenAccountsResult struct {
	TokenAccounts []TokenAccount `json:"token_accounts"`
}

// GetAssetsByOwner returns one page of assets owned by a wallet. Unverified
// collections are included so membership counting matches the indexer's view.
func (c *HTTPClient) GetAssetsByOwner(ctx context.Context, owner string, page, limit int) ([]Asset, error) {
	params := map[string]interface{}{
		"ownerAddress": owner,
		"page":         page,
		"limit":        limit,
		"options": map[string]interface{}{
			"showUnverifiedCollections": true,
		},
	}

	var result assetPageResult
	if err := c.call(ctx, "getAssetsByOwner", params, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// GetAssetsByGroup returns one page of a collection's assets.
func (c *HTTPClient) GetAssetsByGroup(ctx context.Context, collectionMint string, page, limit int, withCollectionMetadata bool) ([]Asset, error) {
	params := map[string]interface{}{
		"groupKey":   "collection",
		"groupValue": collectionMint,
		"page":       page,
		"limit":      limit,
	}
	if withCollectionMetadata {
		params["options"] = map[string]interface{}{
			"showCollectionMetadata": true,
		}
	}

	var result assetPageResult
	if err := c.call(ctx, "getAssetsByGroup", params, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

type assetPageResult struct {
	Items []Asset `json:"items"`
}
