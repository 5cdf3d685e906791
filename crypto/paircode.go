package crypto

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PairCodeLength is the number of characters in a pairing code.
const PairCodeLength = 6

// pairCodeCharset deliberately omits O, 0, I and 1 so codes survive being
// read aloud or handwritten.
const pairCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePairCode creates a new random pairing code. Codes are not
// centrally registered; collisions are statistically negligible for the
// two-party use case but not formally prevented.
func GeneratePairCode() (string, error) {
	buf := make([]byte, PairCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating pair code: %w", err)
	}

	var b strings.Builder
	for _, v := range buf {
		b.WriteByte(pairCodeCharset[int(v)%len(pairCodeCharset)])
	}
	code := b.String()

	logrus.WithFields(logrus.Fields{
		"function": "GeneratePairCode",
		"code":     code,
	}).Debug("Generated pairing code")

	return code, nil
}

// ValidatePairCode reports whether s is a well-formed pairing code. Codes
// from other sources may use characters the local generator avoids, so
// only the length and uppercase-alphanumeric shape are checked.
func ValidatePairCode(s string) error {
	if len(s) < 4 || len(s) > 6 {
		return fmt.Errorf("pair code must be 4-6 characters, got %d", len(s))
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("pair code contains invalid character %q", r)
		}
	}
	return nil
}

// GenerateID returns a new opaque unique identifier, used both for device
// identities and for individual signals.
func GenerateID() string {
	return uuid.NewString()
}
