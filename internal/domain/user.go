package domain

import "encoding/json"

// DiscordUser is the identity we keep for a logged-in community member.
type DiscordUser struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	GlobalName    string  `json:"global_name"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
}

// PairsState is the server-persisted state of the client-side matching game.
// Deck, flipped, matched and prize payloads are opaque to the server: the
// game logic runs entirely in the browser, we only store and return them.
type PairsState struct {
	TurnsRemaining int             `json:"turnsRemaining"`
	Deck           json.RawMessage `json:"deck"`
	Flipped        json.RawMessage `json:"flipped"`
	Matched        json.RawMessage `json:"matched"`
	PrizesWon      json.RawMessage `json:"prizesWon"`
}
