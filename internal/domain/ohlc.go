package domain

// OHLCItem is one candle as returned by the OHLCV upstream. Field names match
// the upstream payload so items pass through to the dashboard chart unchanged.
type OHLCItem struct {
	UnixTime int64   `json:"unixTime"`
	Open     float64 `json:"o"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Close    float64 `json:"c"`
	Volume   float64 `json:"v"`
}

// OHLCData wraps the candle list.
type OHLCData struct {
	Items []OHLCItem `json:"items"`
}

// OHLCResponse is the /ohlc endpoint envelope.
type OHLCResponse struct {
	Success bool     `json:"success"`
	Data    OHLCData `json:"data"`
	Message string   `json:"message,omitempty"`
}
