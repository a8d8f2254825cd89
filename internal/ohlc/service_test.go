package ohlc

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"mnk3ys-dashboard/internal/storage"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestNormalizeGranularity(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"15m", "15m"},
		{"1H", "1h"},
		{" 4h ", "4h"},
		{"1 d", "1d"},
		{"7m", "15m"},
		{"", "15m"},
		{"'; DROP TABLE", "15m"},
	}
	for _, tt := range tests {
		if got := NormalizeGranularity(tt.in); got != tt.want {
			t.Errorf("NormalizeGranularity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestService_DegradedWithoutClient(t *testing.T) {
	s := NewService(ServiceOptions{Mint: "mint", Logger: quietLogger()})

	resp := s.Candles(context.Background(), "15m")
	if resp.Success {
		t.Error("expected success=false without an API key")
	}
	if resp.Message == "" {
		t.Error("expected an explanatory message")
	}
}

func TestService_FetchesAndCachesPerGranularity(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing api key header")
		}
		if !strings.HasPrefix(r.URL.Path, "/defi/v3/ohlcv") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gran := r.URL.Query().Get("type")
		fmt.Fprintf(w, `{"success":true,"data":{"items":[{"unixTime":1700000000,"o":1,"h":2,"l":0.5,"c":1.5,"v":1000}]},"message":"%s"}`, gran)
	}))
	defer srv.Close()

	s := NewService(ServiceOptions{
		Client: NewBirdeyeClient(srv.URL, "test-key"),
		Mint:   "mint",
		Logger: quietLogger(),
	})

	first := s.Candles(context.Background(), "15m")
	if !first.Success || len(first.Data.Items) != 1 {
		t.Fatalf("expected one candle, got %+v", first)
	}
	if first.Data.Items[0].Close != 1.5 {
		t.Errorf("expected close 1.5, got %v", first.Data.Items[0].Close)
	}

	s.Candles(context.Background(), "15m")
	if calls.Load() != 1 {
		t.Errorf("expected cached second call, upstream saw %d requests", calls.Load())
	}

	s.Candles(context.Background(), "1h")
	if calls.Load() != 2 {
		t.Errorf("expected distinct granularity to fetch, upstream saw %d requests", calls.Load())
	}
}

func TestService_UpstreamFailureIsDegradedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewService(ServiceOptions{
		Client: NewBirdeyeClient(srv.URL, "test-key"),
		Mint:   "mint",
		Logger: quietLogger(),
	})

	resp := s.Candles(context.Background(), "15m")
	if resp.Success {
		t.Error("expected success=false on upstream failure")
	}
}

// recordingArchive captures InsertCandles calls.
type recordingArchive struct {
	candles []storage.Candle
}

func (r *recordingArchive) InsertCandles(ctx context.Context, candles []storage.Candle) error {
	r.candles = append(r.candles, candles...)
	return nil
}

func TestService_ArchivesFetchedCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"items":[{"unixTime":1700000000,"o":1,"h":2,"l":0.5,"c":1.5,"v":1000}]}}`)
	}))
	defer srv.Close()

	archive := &recordingArchive{}
	s := NewService(ServiceOptions{
		Client:  NewBirdeyeClient(srv.URL, "test-key"),
		Mint:    "mint",
		Archive: archive,
		Logger:  quietLogger(),
	})

	s.Candles(context.Background(), "15m")
	if len(archive.candles) != 1 {
		t.Fatalf("expected 1 archived candle, got %d", len(archive.candles))
	}
	c := archive.candles[0]
	if c.Mint != "mint" || c.Granularity != "15m" || c.Close != 1.5 {
		t.Errorf("unexpected archived candle %+v", c)
	}
}
