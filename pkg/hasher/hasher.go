package hasher

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Sum returns a hex digest of payload, used to detect unchanged messages
// without keeping the payloads around.
func Sum(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
