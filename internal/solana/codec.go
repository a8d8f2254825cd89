package solana

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
)

// TokenAccountRecord is the decoded owner+amount slice of a token account.
type TokenAccountRecord struct {
	Owner  string
	Amount uint64
}

// DecodeOwnerAmount decodes a 40-byte owner(32)|amount(8 LE) slice as
// returned by a dataSlice-limited account scan. Returns nil when the buffer
// is too short to contain both fields.
func DecodeOwnerAmount(buf []byte) *TokenAccountRecord {
	if len(buf) < 40 {
		return nil
	}
	return &TokenAccountRecord{
		Owner:  base58.Encode(buf[:32]),
		Amount: binary.LittleEndian.Uint64(buf[32:40]),
	}
}
