// Package apikey generates the static keys handed to assistants and users.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// KeyBytes is the entropy of a generated key; the hex form is twice as long.
const KeyBytes = 24

const prefix = "lm_"

// New returns a fresh random API key, e.g. "lm_9f86d081884c7d65...".
func New() (string, error) {
	buf := make([]byte, KeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return prefix + hex.EncodeToString(buf), nil
}
