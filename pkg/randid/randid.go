// Package randid generates short random identifiers used for bot-code
// staging directories and remote-bot player keys.
package randid

import (
	"crypto/rand"
	"math/big"
)

const alphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Alphanumeric returns a cryptographically random alphanumeric string of
// length n.
func Alphanumeric(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphanumericAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err) // crypto/rand failure is unrecoverable
		}
		out[i] = alphanumericAlphabet[idx.Int64()]
	}
	return string(out)
}

// PlayerKey returns a random 32-character alphanumeric player key, per
// spec §4.7.
func PlayerKey() string {
	return Alphanumeric(32)
}
