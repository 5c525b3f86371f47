package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const referenceChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferenceGenerator produces a human-facing booking reference for the given instant.
type ReferenceGenerator func(now time.Time) (string, error)

// GenerateReference creates a reference in the format "PRC-YYYYMMDD-XXXXXX".
// Uniqueness is probabilistic; the store rejects duplicates and callers retry.
func GenerateReference(now time.Time) (string, error) {
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		suffix[i] = referenceChars[n.Int64()]
	}
	return "PRC-" + now.UTC().Format("20060102") + "-" + string(suffix), nil
}
