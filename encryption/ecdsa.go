package encryption

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// ECDSASigner is the classical signature backend: secp256k1 over a
// Keccak-256 digest of the message. Interchangeable with the Dilithium
// signer behind SignatureProvider.
type ECDSASigner struct {
	privateKey *ecdsa.PrivateKey
}

func NewECDSASigner() (*ECDSASigner, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ECDSA key pair: %w", err)
	}
	return &ECDSASigner{privateKey: privateKey}, nil
}

func (e *ECDSASigner) Name() string {
	return "ecdsa-secp256k1"
}

func (e *ECDSASigner) Sign(message []byte) ([]byte, error) {
	return crypto.Sign(Keccak256(message), e.privateKey)
}

func (e *ECDSASigner) Verify(message, signature []byte) bool {
	sigPublicKey, err := crypto.SigToPub(Keccak256(message), signature)
	if err != nil {
		return false
	}

	return sigPublicKey.X.Cmp(e.privateKey.PublicKey.X) == 0 &&
		sigPublicKey.Y.Cmp(e.privateKey.PublicKey.Y) == 0
}

func (e *ECDSASigner) PublicKey() []byte {
	return crypto.FromECDSAPub(&e.privateKey.PublicKey)
}

// Keccak256 computes the legacy Keccak-256 digest over the concatenation of
// the inputs.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}
