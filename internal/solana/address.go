package solana

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// IsValidWalletAddress reports whether addr is a plausible wallet public key:
// base58, exactly 32 bytes, and a point on the ed25519 curve. Program-derived
// addresses are off-curve and rejected, which is correct for wallet input.
func IsValidWalletAddress(addr string) bool {
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
