package holdings

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/mr-tron/base58"

	"mnk3ys-dashboard/internal/config"
	"mnk3ys-dashboard/internal/solana"
)

// fakeIndexer serves canned scan results for ledger and verifier tests.
type fakeIndexer struct {
	programAccounts []solana.ProgramAccount
	programErr      error

	tokenAccounts []solana.TokenAccount
	tokenErr      error

	ownerPages map[string][][]solana.Asset
	ownerErr   error

	groupPages map[string][][]solana.Asset
	groupErr   map[string]error
}

func (f *fakeIndexer) TokenAccountsByMint(ctx context.Context, mint string) ([]solana.ProgramAccount, error) {
	return f.programAccounts, f.programErr
}

func (f *fakeIndexer) GetTokenAccounts(ctx context.Context, owner, mint string, limit int) ([]solana.TokenAccount, error) {
	return f.tokenAccounts, f.tokenErr
}

func (f *fakeIndexer) GetAssetsByOwner(ctx context.Context, owner string, page, limit int) ([]solana.Asset, error) {
	if f.ownerErr != nil {
		return nil, f.ownerErr
	}
	pages := f.ownerPages[owner]
	if page > len(pages) {
		return nil, nil
	}
	return pages[page-1], nil
}

func (f *fakeIndexer) GetAssetsByGroup(ctx context.Context, collectionMint string, page, limit int, withCollectionMetadata bool) ([]solana.Asset, error) {
	if err := f.groupErr[collectionMint]; err != nil {
		return nil, err
	}
	pages := f.groupPages[collectionMint]
	if page > len(pages) {
		return nil, nil
	}
	return pages[page-1], nil
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

// wallet returns a deterministic base58 wallet address from a seed byte.
func wallet(seed byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed
	}
	return base58.Encode(raw)
}

// accountData builds the owner+amount slice a dataSlice-limited scan returns.
func accountData(walletAddr string, amount uint64) []byte {
	raw, err := base58.Decode(walletAddr)
	if err != nil || len(raw) != 32 {
		panic("bad test wallet")
	}
	buf := make([]byte, 40)
	copy(buf, raw)
	binary.LittleEndian.PutUint64(buf[32:40], amount)
	return buf
}

func ownedAsset(owner, collectionMint string) solana.Asset {
	return solana.Asset{
		Grouping:  []solana.AssetGrouping{{GroupKey: "collection", GroupValue: collectionMint}},
		Ownership: solana.AssetOwnership{Owner: owner},
	}
}

func testCollections() []config.Collection {
	return []config.Collection{
		{Slug: "mnk3ys", Name: "MNK3YS", CollectionMint: "mintA"},
		{Slug: "zmb3ys", Name: "ZMB3YS", CollectionMint: "mintB"},
	}
}

func TestLedgerBuilder_SumsAccountsPerOwner(t *testing.T) {
	w := wallet(1)
	idx := &fakeIndexer{
		programAccounts: []solana.ProgramAccount{
			{Pubkey: "acc1", Data: accountData(w, 500)},
			{Pubkey: "acc2", Data: accountData(w, 1500)},
		},
	}

	b := NewLedgerBuilder(LedgerOptions{
		Indexer: idx, TokenMint: "mint", Decimals: 6,
		Collections: testCollections(), Logger: quietLogger(),
	})

	rows := b.Build(context.Background(), SortTotal)
	if len(rows) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(rows))
	}
	if rows[0].TokenBalance != 0.002 {
		t.Errorf("expected summed balance 0.002, got %v", rows[0].TokenBalance)
	}
}

func TestLedgerBuilder_SkipsZeroAmounts(t *testing.T) {
	idx := &fakeIndexer{
		programAccounts: []solana.ProgramAccount{
			{Pubkey: "acc1", Data: accountData(wallet(1), 0)},
			{Pubkey: "acc2", Data: accountData(wallet(2), 100)},
			{Pubkey: "bad", Data: []byte{1, 2, 3}},
		},
	}

	b := NewLedgerBuilder(LedgerOptions{
		Indexer: idx, TokenMint: "mint", Decimals: 6,
		Collections: testCollections(), Logger: quietLogger(),
	})

	rows := b.Build(context.Background(), SortTotal)
	if len(rows) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(rows))
	}
	if rows[0].Wallet != wallet(2) {
		t.Errorf("expected only the nonzero holder, got %q", rows[0].Wallet)
	}
}

func TestLedgerBuilder_CompositeScore(t *testing.T) {
	w := wallet(1)
	idx := &fakeIndexer{
		programAccounts: []solana.ProgramAccount{
			// 2,000,000 tokens at 6 decimals.
			{Pubkey: "acc1", Data: accountData(w, 2_000_000_000_000)},
		},
		groupPages: map[string][][]solana.Asset{
			"mintA": {{ownedAsset(w, "mintA"), ownedAsset(w, "mintA")}},
			"mintB": {{ownedAsset(w, "mintB")}},
		},
	}

	b := NewLedgerBuilder(LedgerOptions{
		Indexer: idx, TokenMint: "mint", Decimals: 6,
		Collections: testCollections(), Logger: quietLogger(),
	})

	rows := b.Build(context.Background(), SortTotal)
	if len(rows) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(rows))
	}
	h := rows[0]
	if h.TotalNFTs != 3 {
		t.Errorf("expected 3 NFTs, got %d", h.TotalNFTs)
	}
	if h.TotalScore != 32.0 {
		t.Errorf("expected composite score 32.0, got %v", h.TotalScore)
	}
	if h.CountsByCollection["mnk3ys"] != 2 || h.CountsByCollection["zmb3ys"] != 1 {
		t.Errorf("unexpected counts %v", h.CountsByCollection)
	}
}

func TestLedgerBuilder_SortByNFTs(t *testing.T) {
	wA, wB := wallet(1), wallet(2)
	idx := &fakeIndexer{
		groupPages: map[string][][]solana.Asset{
			"mintA": {{
				ownedAsset(wA, "mintA"), ownedAsset(wA, "mintA"), ownedAsset(wA, "mintA"),
				ownedAsset(wA, "mintA"), ownedAsset(wA, "mintA"),
				ownedAsset(wB, "mintA"), ownedAsset(wB, "mintA"),
			}},
			"mintB": {{ownedAsset(wB, "mintB"), ownedAsset(wB, "mintB")}},
		},
	}

	b := NewLedgerBuilder(LedgerOptions{
		Indexer: idx, TokenMint: "mint", Decimals: 6,
		Collections: testCollections(), Logger: quietLogger(),
	})

	// {mnk3ys:5, zmb3ys:0} outranks {mnk3ys:2, zmb3ys:2} on total NFT count.
	rows := b.Build(context.Background(), SortNFTs)
	if len(rows) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(rows))
	}
	if rows[0].Wallet != wA || rows[0].TotalNFTs != 5 {
		t.Errorf("expected wallet A with 5 NFTs first, got %q with %d", rows[0].Wallet, rows[0].TotalNFTs)
	}
	if rows[1].TotalNFTs != 4 {
		t.Errorf("expected 4 NFTs for second row, got %d", rows[1].TotalNFTs)
	}
}

func TestLedgerBuilder_SortByCollectionSlug(t *testing.T) {
	wA, wB := wallet(1), wallet(2)
	idx := &fakeIndexer{
		groupPages: map[string][][]solana.Asset{
			"mintA": {{ownedAsset(wA, "mintA")}},
			"mintB": {{ownedAsset(wB, "mintB"), ownedAsset(wB, "mintB")}},
		},
	}

	b := NewLedgerBuilder(LedgerOptions{
		Indexer: idx, TokenMint: "mint", Decimals: 6,
		Collections: testCollections(), Logger: quietLogger(),
	})

	rows := b.Build(context.Background(), "mnk3ys")
	if rows[0].Wallet != wA {
		t.Errorf("expected the mnk3ys holder first, got %q", rows[0].Wallet)
	}

	rows = b.Build(context.Background(), "zmb3ys")
	if rows[0].Wallet != wB {
		t.Errorf("expected the zmb3ys holder first, got %q", rows[0].Wallet)
	}
}

func TestLedgerBuilder_TieBreakIsWalletAscending(t *testing.T) {
	wA, wB := wallet(1), wallet(2)
	lo, hi := wA, wB
	if wB < wA {
		lo, hi = wB, wA
	}

	idx := &fakeIndexer{
		groupPages: map[string][][]solana.Asset{
			"mintA": {{ownedAsset(wA, "mintA"), ownedAsset(wB, "mintA")}},
		},
	}

	b := NewLedgerBuilder(LedgerOptions{
		Indexer: idx, TokenMint: "mint", Decimals: 6,
		Collections: testCollections(), Logger: quietLogger(),
	})

	rows := b.Build(context.Background(), SortTotal)
	if rows[0].Wallet != lo || rows[1].Wallet != hi {
		t.Errorf("expected tie broken by wallet ascending, got %q then %q", rows[0].Wallet, rows[1].Wallet)
	}
}

func TestLedgerBuilder_FailedScanKeepsPartialData(t *testing.T) {
	w := wallet(1)
	idx := &fakeIndexer{
		programAccounts: []solana.ProgramAccount{
			{Pubkey: "acc1", Data: accountData(w, 1_000_000)},
		},
		groupPages: map[string][][]solana.Asset{
			"mintA": {{ownedAsset(w, "mintA")}},
		},
		groupErr: map[string]error{"mintB": errors.New("indexer down")},
	}

	b := NewLedgerBuilder(LedgerOptions{
		Indexer: idx, TokenMint: "mint", Decimals: 6,
		Collections: testCollections(), Logger: quietLogger(),
	})

	rows := b.Build(context.Background(), SortTotal)
	if len(rows) != 1 {
		t.Fatalf("expected 1 holding despite a failed scan, got %d", len(rows))
	}
	if rows[0].TokenBalance != 1.0 {
		t.Errorf("expected token balance 1.0, got %v", rows[0].TokenBalance)
	}
	if rows[0].CountsByCollection["mnk3ys"] != 1 {
		t.Errorf("expected mnk3ys count 1, got %d", rows[0].CountsByCollection["mnk3ys"])
	}
}

func TestLedgerBuilder_NoIndexerMeansEmptyLedger(t *testing.T) {
	b := NewLedgerBuilder(LedgerOptions{
		TokenMint: "mint", Decimals: 6,
		Collections: testCollections(), Logger: quietLogger(),
	})

	rows := b.Build(context.Background(), SortTotal)
	if rows == nil || len(rows) != 0 {
		t.Errorf("expected empty non-nil ledger, got %v", rows)
	}
}

func TestNormalizeSortKey(t *testing.T) {
	b := NewLedgerBuilder(LedgerOptions{
		Collections: testCollections(), Logger: quietLogger(),
	})

	cases := map[string]string{
		"token":  "token",
		"nfts":   "nfts",
		"total":  "total",
		"mnk3ys": "mnk3ys",
		"zmb3ys": "zmb3ys",
		"bogus":  "total",
		"":       "total",
	}
	for in, want := range cases {
		if got := b.NormalizeSortKey(in); got != want {
			t.Errorf("NormalizeSortKey(%q) = %q, want %q", in, got, want)
		}
	}
}
