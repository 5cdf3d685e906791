package crypto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePairKey_Symmetry(t *testing.T) {
	testCases := []struct {
		name  string
		codeA string
		codeB string
	}{
		{"Distinct codes", "ABCD12", "ZZTOP9"},
		{"Reverse order", "ZZTOP9", "ABCD12"},
		{"Adjacent codes", "AAAA22", "AAAA23"},
		{"Short codes", "AB22", "CD33"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			k1 := DerivePairKey(tc.codeA, tc.codeB)
			k2 := DerivePairKey(tc.codeB, tc.codeA)

			require.Len(t, k1, PairKeySize)
			assert.True(t, bytes.Equal(k1, k2), "keys must be identical regardless of argument order")
		})
	}
}

func TestDerivePairKey_DistinctPairsDistinctKeys(t *testing.T) {
	k1 := DerivePairKey("ABCD12", "ZZTOP9")
	k2 := DerivePairKey("ABCD12", "ZZTOP8")

	assert.False(t, bytes.Equal(k1, k2), "different code pairs must derive different keys")
}

func TestDerivePairKey_Deterministic(t *testing.T) {
	k1 := DerivePairKey("ABCD12", "ZZTOP9")
	k2 := DerivePairKey("ABCD12", "ZZTOP9")

	assert.True(t, bytes.Equal(k1, k2), "derivation must be stable across calls")
}

func TestDeriveChannelName_Format(t *testing.T) {
	name := DeriveChannelName("ABCD12")

	assert.True(t, strings.HasPrefix(name, ChannelPrefix))
	assert.Len(t, name, len(ChannelPrefix)+channelHashChars)
	assert.NotContains(t, name, "ABCD12", "channel name must not leak the pairing code")
}

func TestDeriveChannelName_Deterministic(t *testing.T) {
	assert.Equal(t, DeriveChannelName("ABCD12"), DeriveChannelName("ABCD12"))
}

// TestDeriveChannelName_NoCollisions exercises the practical-injectivity
// property over a large sample of random codes.
func TestDeriveChannelName_NoCollisions(t *testing.T) {
	const sample = 5000

	seen := make(map[string]string, sample)
	for i := 0; i < sample; i++ {
		code, err := GeneratePairCode()
		require.NoError(t, err)

		name := DeriveChannelName(code)
		if other, ok := seen[name]; ok {
			// The same code hashing to the same name is fine; two distinct
			// codes sharing a name is a collision.
			require.Equal(t, other, code, "channel collision between %q and %q", other, code)
			continue
		}
		seen[name] = code
	}
}
