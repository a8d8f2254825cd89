package solana

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClient_TokenAccountsByMint(t *testing.T) {
	raw := make([]byte, 40)
	binary.LittleEndian.PutUint64(raw[32:40], 123456)
	encoded := base64.StdEncoding.EncodeToString(raw)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "getProgramAccounts" {
			t.Errorf("expected method getProgramAccounts, got %q", req.Method)
		}

		params, ok := req.Params.([]interface{})
		if !ok || len(params) != 2 {
			t.Fatalf("expected positional params [program, config], got %v", req.Params)
		}
		if params[0] != TokenProgramID {
			t.Errorf("expected token program id, got %v", params[0])
		}
		cfg := params[1].(map[string]interface{})
		if cfg["encoding"] != "base64" {
			t.Errorf("expected base64 encoding, got %v", cfg["encoding"])
		}
		if _, ok := cfg["dataSlice"]; !ok {
			t.Error("expected dataSlice in scan config")
		}

		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":[
			{"pubkey":"acc1","account":{"data":["%s","base64"]}},
			{"pubkey":"acc2","account":{"data":["!!!not-base64","base64"]}}
		]}`, encoded)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	accounts, err := client.TokenAccountsByMint(context.Background(), "SomeMint111111111111111111111111111111111111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The undecodable row is skipped.
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	if accounts[0].Pubkey != "acc1" {
		t.Errorf("expected pubkey acc1, got %q", accounts[0].Pubkey)
	}
	if len(accounts[0].Data) != 40 {
		t.Errorf("expected 40-byte data slice, got %d", len(accounts[0].Data))
	}
}

func TestHTTPClient_GetTokenAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "getTokenAccounts" {
			t.Errorf("expected method getTokenAccounts, got %q", req.Method)
		}
		params := req.Params.(map[string]interface{})
		if params["owner"] != "wallet1" {
			t.Errorf("expected owner wallet1, got %v", params["owner"])
		}
		if params["limit"] != float64(10) {
			t.Errorf("expected limit 10, got %v", params["limit"])
		}

		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"token_accounts":[
			{"address":"ata1","owner":"wallet1","amount":500},
			{"address":"ata2","owner":"wallet1","amount":1500}
		]}}`)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	accounts, err := client.GetTokenAccounts(context.Background(), "wallet1", "mint1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[1].Amount != 1500 {
		t.Errorf("expected amount 1500, got %d", accounts[1].Amount)
	}
}

func TestHTTPClient_GetAssetsByGroup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		params := req.Params.(map[string]interface{})
		if params["groupKey"] != "collection" {
			t.Errorf("expected groupKey collection, got %v", params["groupKey"])
		}
		if params["page"] != float64(2) {
			t.Errorf("expected page 2, got %v", params["page"])
		}
		if _, ok := params["options"]; ok {
			t.Error("expected no options when collection metadata is not requested")
		}

		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"items":[
			{"id":"nft1","grouping":[{"group_key":"collection","group_value":"coll1"}],"ownership":{"owner":"wallet1"}}
		]}}`)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	assets, err := client.GetAssetsByGroup(context.Background(), "coll1", 2, 1000, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(assets))
	}
	if assets[0].Collection() != "coll1" {
		t.Errorf("expected collection coll1, got %q", assets[0].Collection())
	}
	if assets[0].Ownership.Owner != "wallet1" {
		t.Errorf("expected owner wallet1, got %q", assets[0].Ownership.Owner)
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid params"}}`)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.GetAssetsByOwner(context.Background(), "wallet1", 1, 1000)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	rpcErr, ok := err.(*rpcError)
	if !ok {
		t.Fatalf("expected *rpcError, got %T", err)
	}
	if rpcErr.Code != -32602 {
		t.Errorf("expected code -32602, got %d", rpcErr.Code)
	}
}

func TestHTTPClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.TokenAccountsByMint(context.Background(), "mint1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
