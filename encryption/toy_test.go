package encryption

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToyFHERoundtrip(t *testing.T) {
	scheme, err := NewToyFHE()
	require.NoError(t, err)

	for _, value := range []int64{0, 1, 2, 42, 1000} {
		ciphertext, err := scheme.Encrypt(big.NewInt(value))
		require.NoError(t, err)

		plaintext, err := scheme.Decrypt(ciphertext)
		require.NoError(t, err)
		require.Equal(t, value, plaintext.Int64())
	}
}

func TestToyFHEHomomorphicSum(t *testing.T) {
	scheme, err := NewToyFHE()
	require.NoError(t, err)

	values := []int64{1, 1, 1, 5, 12, 0, 7}
	var expected int64

	accumulated, err := scheme.Encrypt(big.NewInt(values[0]))
	require.NoError(t, err)
	expected = values[0]

	for _, v := range values[1:] {
		ciphertext, err := scheme.Encrypt(big.NewInt(v))
		require.NoError(t, err)

		accumulated, err = scheme.Add(accumulated, ciphertext)
		require.NoError(t, err)
		expected += v
	}

	plaintext, err := scheme.Decrypt(accumulated)
	require.NoError(t, err)
	require.Equal(t, expected, plaintext.Int64())
}

// The reference semantics are fixed: for any blinding r, the ciphertext
// stays below n^2 and decryption is reduction mod n.
func TestToyFHEReferenceSemantics(t *testing.T) {
	n := big.NewInt(2147483647)
	scheme := NewToyFHEWithModulus(n)
	nSquared := new(big.Int).Mul(n, n)

	for i := 0; i < 20; i++ {
		ciphertext, err := scheme.Encrypt(big.NewInt(123))
		require.NoError(t, err)

		c := new(big.Int).SetBytes(ciphertext)
		require.True(t, c.Cmp(nSquared) < 0)
		require.Equal(t, int64(123), new(big.Int).Mod(c, n).Int64())
	}
}

func TestToyFHEModulusIsOdd(t *testing.T) {
	for i := 0; i < 10; i++ {
		scheme, err := NewToyFHE()
		require.NoError(t, err)
		require.Equal(t, uint(1), scheme.Modulus().Bit(0))
	}
}

func TestToyFHENoMultiplication(t *testing.T) {
	scheme := NewToyFHEWithModulus(big.NewInt(1021))
	require.False(t, scheme.SupportsMultiplication())

	_, err := scheme.Multiply([]byte{1}, []byte{2})
	require.Error(t, err)
}

func TestToyFHEName(t *testing.T) {
	scheme := NewToyFHEWithModulus(big.NewInt(1021))
	require.Equal(t, "toy-fhe", scheme.Name())
}
