package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// ChannelPrefix is the namespace tag for every derived channel name.
	ChannelPrefix = "vibe-"

	// channelSalt is mixed into the channel hash so an observer of the
	// transport cannot brute-force short pairing codes from channel names
	// without also knowing the application constant.
	channelSalt = "vibelink-channel-v1"

	// channelHashChars is the number of hex characters of the digest kept
	// in the channel name.
	channelHashChars = 20

	// pairKeyPepper is the application constant mixed into the KDF salt.
	pairKeyPepper = "vibelink-pairkey-v1"

	// pairKeyIterations is the PBKDF2 iteration count. Pairing codes are
	// low-entropy, so the work factor is kept well above the usual floor.
	pairKeyIterations = 150000

	// PairKeySize is the derived key length in bytes (AES-256-GCM).
	PairKeySize = 32
)

// DeriveChannelName maps a pairing code to the transport channel the owning
// device listens on. The mapping is deterministic and one-way: both peers
// compute it locally, and the transport never sees the code itself.
func DeriveChannelName(pairCode string) string {
	sum := sha256.Sum256([]byte(pairCode + channelSalt))
	return ChannelPrefix + hex.EncodeToString(sum[:])[:channelHashChars]
}

// DerivePairKey derives the shared symmetric key for a pair of devices.
// The two codes are ordered lexicographically first, so both peers derive
// byte-identical keys no matter which side calls with which argument order.
func DerivePairKey(codeA, codeB string) []byte {
	lo, hi := codeA, codeB
	if lo > hi {
		lo, hi = hi, lo
	}
	seed := lo + ":" + hi

	salt := sha256.Sum256([]byte(seed + pairKeyPepper))
	key := pbkdf2.Key([]byte(seed), salt[:], pairKeyIterations, PairKeySize, sha256.New)

	logrus.WithFields(logrus.Fields{
		"function": "DerivePairKey",
		"seed_len": len(seed),
	}).Debug("Derived pair key")

	return key
}
