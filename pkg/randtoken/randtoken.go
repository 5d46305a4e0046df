// Package randtoken generates fixed-length opaque tokens for actor uids
// and per-trip QR tokens.
package randtoken

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// New returns a random alphanumeric string of length n.
func New(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// there is no reasonable fallback for token generation.
			panic(err)
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}
