package domain

// CollectionSummary merges marketplace stats, marketplace metadata and
// indexer collection data for one tracked collection. Fields are
// independently nullable; partial population is expected when a source is
// down.
type CollectionSummary struct {
	Slug           string   `json:"symbol"`
	Name           string   `json:"name"`
	Description    *string  `json:"description"`
	Image          *string  `json:"image"`
	AnimationURL   *string  `json:"animationUrl"`
	Supply         *int     `json:"supply"`
	ListedCount    *int     `json:"listedCount"`
	FloorPriceSol  *float64 `json:"floorPriceSol"`
	VolumeAllSol   *float64 `json:"volumeAllSol"`
	AvgPrice24hSol *float64 `json:"avgPrice24hSol"`
	MarketplaceURL string   `json:"marketplaceUrl"`
}
