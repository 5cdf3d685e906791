// Package crypto implements the derivation and sealing primitives for the
// vibelink protocol: pairing-code generation, channel-name derivation, the
// deterministic pair-key KDF, and AES-GCM sealing for chat payloads.
//
// The protocol has no key exchange. Two devices that know each other's
// pairing codes independently derive an identical 256-bit key from the
// sorted code pair; confidentiality rests entirely on the codes being
// shared out of band between the two parties and nobody else.
//
// Example:
//
//	key := crypto.DerivePairKey("ABCD12", "ZZTOP9")
//	sealed, err := crypto.Seal([]byte("hi"), key)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plain, err := crypto.Open(sealed, key)
package crypto
