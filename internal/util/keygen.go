package util

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
)

const (
	// DefaultKeyTemplate is the shape every issued license key follows.
	DefaultKeyTemplate = "XXXX-XXXX-XXXX"

	keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateLicenseKey replaces every 'X' in the template with a uniformly
// random character from [A-Z0-9]; all other characters pass through. The
// randomness comes from crypto/rand so keys are unpredictable.
func GenerateLicenseKey(template string) (string, error) {
	out := []byte(template)
	max := big.NewInt(int64(len(keyAlphabet)))

	for i, c := range out {
		if c != 'X' {
			continue
		}
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random key character: %w", err)
		}
		out[i] = keyAlphabet[n.Int64()]
	}

	return string(out), nil
}

// HashAdminKey returns the hex SHA-256 digest of an admin API key. The
// configured secret is stored in this form so the plaintext never lives in
// the config file.
func HashAdminKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%x", sum)
}
