// Package solana talks to a Solana RPC/DAS indexer (Helius-compatible) and
// decodes the raw account data the dashboard aggregates.
package solana

import "context"

// Well-known chain constants.
const (
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	SolMint        = "So11111111111111111111111111111111111111112"
	LamportsPerSol = 1e9

	// tokenAccountSize is the byte size of an SPL token account record;
	// used as a dataSize filter so the scan only matches token accounts.
	tokenAccountSize = 165
)

// Indexer is the query surface the aggregators consume. Implemented by
// HTTPClient; test doubles implement it directly.
type Indexer interface {
	// TokenAccountsByMint scans every token account for a mint, returning
	// only the owner+amount byte slice of each record (see DecodeOwnerAmount).
	TokenAccountsByMint(ctx context.Context, mint string) ([]ProgramAccount, error)

	// GetTokenAccounts returns token accounts owned by one wallet for a mint.
	GetTokenAccounts(ctx context.Context, owner, mint string, limit int) ([]TokenAccount, error)

	// GetAssetsByOwner returns one page of assets owned by a wallet.
	GetAssetsByOwner(ctx context.Context, owner string, page, limit int) ([]Asset, error)

	// GetAssetsByGroup returns one page of assets belonging to a collection.
	// withCollectionMetadata asks the indexer to nest collection metadata
	// into each asset's grouping (only useful on the first page).
	GetAssetsByGroup(ctx context.Context, collectionMint string, page, limit int, withCollectionMetadata bool) ([]Asset, error)
}

// TokenAccount is one row of a getTokenAccounts response.
type TokenAccount struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Amount  uint64 `json:"amount"`
}

// Asset is one DAS asset with the fields the dashboard inspects.
type Asset struct {
	ID        string          `json:"id"`
	Grouping  []AssetGrouping `json:"grouping"`
	Ownership AssetOwnership  `json:"ownership"`
}

// AssetGrouping tags an asset as a member of a group (collection).
type AssetGrouping struct {
	GroupKey           string              `json:"group_key"`
	GroupValue         string              `json:"group_value"`
	CollectionMetadata *CollectionMetadata `json:"collection_metadata,omitempty"`
}

// CollectionMetadata is the nested collection info DAS returns when asked.
type CollectionMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// AssetOwnership identifies the current owner of an asset.
type AssetOwnership struct {
	Owner string `json:"owner"`
}

// Collection returns the collection grouping value of the asset, if any.
func (a *Asset) Collection() string {
	for _, g := range a.Grouping {
		if g.GroupKey == "collection" {
			return g.GroupValue
		}
	}
	return ""
}

// CollectionInfo returns the nested collection metadata of the asset, if any.
func (a *Asset) CollectionInfo() *CollectionMetadata {
	for _, g := range a.Grouping {
		if g.GroupKey == "collection" && g.CollectionMetadata != nil {
			return g.CollectionMetadata
		}
	}
	return nil
}

// ProgramAccount is one row of a raw account scan. Data is the already
// base64-decoded slice requested via dataSlice.
type ProgramAccount struct {
	Pubkey string
	Data   []byte
}
