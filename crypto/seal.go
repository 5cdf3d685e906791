package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// NonceSize is the AES-GCM nonce length used for sealed payloads.
const NonceSize = 12

// ErrOpenFailed is returned when a sealed payload cannot be authenticated,
// typically because it was sealed under a key derived from a different
// code pair, or because the ciphertext was corrupted in transit.
var ErrOpenFailed = errors.New("crypto: payload authentication failed")

// Seal encrypts plaintext under key and returns nonce||ciphertext. A fresh
// random nonce is generated per call, so sealing the same plaintext twice
// yields different outputs.
func Seal(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a nonce||ciphertext payload produced by Seal. All failure
// modes (short input, wrong key, tampering) collapse to ErrOpenFailed so
// callers can treat them uniformly as an undecryptable message.
func Open(sealed, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(sealed) < NonceSize {
		return nil, ErrOpenFailed
	}

	plain, err := aead.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != PairKeySize {
		return nil, fmt.Errorf("crypto: key must be %d bytes, got %d", PairKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
