package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// SecureShuffle performs an in-place Fisher-Yates shuffle driven by
// crypto/rand, so the permutation is not predictable from process state.
func SecureShuffle[T any](items []T) error {
	for i := len(items) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random index: %w", err)
		}
		j := n.Int64()
		items[i], items[j] = items[j], items[i]
	}
	return nil
}
