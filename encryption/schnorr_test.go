package encryption

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProveAndVerifyKnowledge(t *testing.T) {
	secret, err := MakeSecret()
	require.NoError(t, err)

	public := PublicFromSecret(secret)
	context := "election:voter:candidate:nullifier:nonce"

	proof, err := ProveKnowledge(secret, context)
	require.NoError(t, err)
	require.True(t, VerifyKnowledge(public, proof, context))
}

func TestProofIsContextBound(t *testing.T) {
	secret, err := MakeSecret()
	require.NoError(t, err)

	public := PublicFromSecret(secret)
	proof, err := ProveKnowledge(secret, "ctx-one")
	require.NoError(t, err)

	require.True(t, VerifyKnowledge(public, proof, "ctx-one"))
	require.False(t, VerifyKnowledge(public, proof, "ctx-two"))
	require.False(t, VerifyKnowledge(public, proof, "ctx-one "))
	require.False(t, VerifyKnowledge(public, proof, ""))
}

func TestProofRejectsWrongPublic(t *testing.T) {
	secret, err := MakeSecret()
	require.NoError(t, err)

	other, err := MakeSecret()
	require.NoError(t, err)
	for other.Cmp(secret) == 0 {
		other, err = MakeSecret()
		require.NoError(t, err)
	}

	proof, err := ProveKnowledge(secret, "ctx")
	require.NoError(t, err)
	require.False(t, VerifyKnowledge(PublicFromSecret(other), proof, "ctx"))
}

func TestVerifyKnowledgeNilSafety(t *testing.T) {
	secret, err := MakeSecret()
	require.NoError(t, err)
	public := PublicFromSecret(secret)

	require.False(t, VerifyKnowledge(public, nil, "ctx"))
	require.False(t, VerifyKnowledge(nil, &ZKProof{Commitment: big.NewInt(1), Response: big.NewInt(1)}, "ctx"))
	require.False(t, VerifyKnowledge(public, &ZKProof{}, "ctx"))
}

func TestMakeSecretInRange(t *testing.T) {
	one := big.NewInt(1)
	upper := new(big.Int).Sub(groupP, big.NewInt(2))

	for i := 0; i < 50; i++ {
		secret, err := MakeSecret()
		require.NoError(t, err)
		require.True(t, secret.Cmp(one) >= 0, "secret below 1: %s", secret)
		require.True(t, secret.Cmp(upper) <= 0, "secret above p-2: %s", secret)
	}
}
