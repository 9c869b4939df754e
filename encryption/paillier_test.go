package encryption

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// Key generation dominates these tests; a single shared 1024-bit key keeps
// them fast enough.
func newTestPaillier(t *testing.T) *PaillierScheme {
	t.Helper()
	scheme, err := NewPaillierScheme(1024)
	require.NoError(t, err)
	return scheme
}

func TestPaillierRoundtrip(t *testing.T) {
	scheme := newTestPaillier(t)
	require.Equal(t, "paillier-1024", scheme.Name())

	ciphertext, err := scheme.Encrypt(big.NewInt(321))
	require.NoError(t, err)

	plaintext, err := scheme.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, int64(321), plaintext.Int64())
}

func TestPaillierHomomorphicSum(t *testing.T) {
	scheme := newTestPaillier(t)

	accumulated, err := scheme.Encrypt(big.NewInt(1))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		unit, err := scheme.Encrypt(big.NewInt(1))
		require.NoError(t, err)
		accumulated, err = scheme.Add(accumulated, unit)
		require.NoError(t, err)
	}

	plaintext, err := scheme.Decrypt(accumulated)
	require.NoError(t, err)
	require.Equal(t, int64(5), plaintext.Int64())
}

func TestPaillierRejectsEmptyCiphertext(t *testing.T) {
	scheme := newTestPaillier(t)

	_, err := scheme.Decrypt(nil)
	require.Error(t, err)
}

func TestPaillierNoMultiplication(t *testing.T) {
	scheme := newTestPaillier(t)
	require.False(t, scheme.SupportsMultiplication())

	_, err := scheme.Multiply([]byte{1}, []byte{2})
	require.Error(t, err)
}
