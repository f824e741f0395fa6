package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const ticketAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// GenerateTicketNumber returns a random ticket identifier of the given length
// drawn from a cryptographically secure source. The alphabet omits easily
// confused characters (I, L, O, U).
func GenerateTicketNumber(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(ticketAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random generation failed: %w", err)
		}
		buf[i] = ticketAlphabet[n.Int64()]
	}
	return string(buf), nil
}
