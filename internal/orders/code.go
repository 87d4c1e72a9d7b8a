package orders

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet skips 0/O, 1/I/L and other glyphs that misread on a pickup
// screen.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const codeLength = 6

// NewOrderCode generates a short human-facing order code. Uniqueness is
// enforced by the orders.code unique index; callers retry placement on a
// collision.
func NewOrderCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating order code: %w", err)
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return "CB-" + string(out), nil
}
