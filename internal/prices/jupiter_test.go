package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const (
	testSolMint   = "So11111111111111111111111111111111111111112"
	testTokenMint = "TokenMint111111111111111111111111111111111"
)

func TestParseJupiterPrices_WrappedShape(t *testing.T) {
	body := fmt.Sprintf(`{"data":{"%s":{"price":"150.25"},"%s":{"price":"0.0042"}}}`, testSolMint, testTokenMint)

	q, err := parseJupiterPrices([]byte(body), testSolMint, testTokenMint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SolUSD == nil || *q.SolUSD != 150.25 {
		t.Errorf("expected solUsd 150.25, got %v", q.SolUSD)
	}
	if q.TokenUSD == nil || *q.TokenUSD != 0.0042 {
		t.Errorf("expected tokenUsd 0.0042, got %v", q.TokenUSD)
	}
}

func TestParseJupiterPrices_FlatShape(t *testing.T) {
	body := fmt.Sprintf(`{"%s":{"usdPrice":151.5},"%s":{"usdPrice":0.005}}`, testSolMint, testTokenMint)

	q, err := parseJupiterPrices([]byte(body), testSolMint, testTokenMint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SolUSD == nil || *q.SolUSD != 151.5 {
		t.Errorf("expected solUsd 151.5, got %v", q.SolUSD)
	}
	if q.TokenUSD == nil || *q.TokenUSD != 0.005 {
		t.Errorf("expected tokenUsd 0.005, got %v", q.TokenUSD)
	}
}

func TestParseJupiterPrices_MissingToken(t *testing.T) {
	body := fmt.Sprintf(`{"data":{"%s":{"price":"150"}}}`, testSolMint)

	q, err := parseJupiterPrices([]byte(body), testSolMint, testTokenMint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TokenUSD != nil {
		t.Errorf("expected nil tokenUsd, got %v", *q.TokenUSD)
	}
	if q.SolUSD == nil || *q.SolUSD != 150 {
		t.Errorf("expected solUsd 150, got %v", q.SolUSD)
	}
}

func TestJupiterClient_Quote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price/v3" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("ids"); got != testSolMint+","+testTokenMint {
			t.Errorf("unexpected ids %q", got)
		}
		fmt.Fprintf(w, `{"%s":{"usdPrice":149.9},"%s":{"usdPrice":0.001}}`, testSolMint, testTokenMint)
	}))
	defer server.Close()

	client := NewJupiterClient("jupiter", server.URL, testSolMint, testTokenMint)
	q, err := client.Quote(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TokenUSD == nil || *q.TokenUSD != 0.001 {
		t.Errorf("expected tokenUsd 0.001, got %v", q.TokenUSD)
	}
}

func TestJupiterClient_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewJupiterClient("jupiter", server.URL, testSolMint, testTokenMint)
	if _, err := client.Quote(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
