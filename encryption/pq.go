package encryption

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/kyber/kyber512"
	"github.com/cloudflare/circl/sign/dilithium"
)

// SignatureProvider signs committed ledger payloads. Verification is an
// audit-time operation, not required for commit.
type SignatureProvider interface {
	Name() string
	Sign(message []byte) ([]byte, error)
	Verify(message, signature []byte) bool
	PublicKey() []byte
}

// KEMProvider encapsulates a shared secret that accompanies each committed
// vote as confidentiality metadata. Only the ciphertext is persisted; the
// shared secret never leaves memory.
type KEMProvider interface {
	Name() string
	Encapsulate() (ciphertext, sharedSecret []byte, err error)
	Decapsulate(ciphertext []byte) ([]byte, error)
}

// DilithiumSigner signs with CRYSTALS-Dilithium mode 2.
type DilithiumSigner struct {
	mode       dilithium.Mode
	publicKey  dilithium.PublicKey
	privateKey dilithium.PrivateKey
}

func NewDilithiumSigner() (*DilithiumSigner, error) {
	mode := dilithium.Mode2
	publicKey, privateKey, err := mode.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Dilithium key pair: %w", err)
	}

	return &DilithiumSigner{
		mode:       mode,
		publicKey:  publicKey,
		privateKey: privateKey,
	}, nil
}

func (d *DilithiumSigner) Name() string {
	return d.mode.Name()
}

func (d *DilithiumSigner) Sign(message []byte) ([]byte, error) {
	return d.mode.Sign(d.privateKey, message), nil
}

func (d *DilithiumSigner) Verify(message, signature []byte) bool {
	return d.mode.Verify(d.publicKey, message, signature)
}

func (d *DilithiumSigner) PublicKey() []byte {
	return d.publicKey.Bytes()
}

// KyberKEM wraps the Kyber512 key-encapsulation mechanism.
type KyberKEM struct {
	scheme     kem.Scheme
	publicKey  kem.PublicKey
	privateKey kem.PrivateKey
}

func NewKyberKEM() (*KyberKEM, error) {
	scheme := kyber512.Scheme()
	publicKey, privateKey, err := scheme.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate Kyber key pair: %w", err)
	}

	return &KyberKEM{
		scheme:     scheme,
		publicKey:  publicKey,
		privateKey: privateKey,
	}, nil
}

func (k *KyberKEM) Name() string {
	return k.scheme.Name()
}

func (k *KyberKEM) Encapsulate() ([]byte, []byte, error) {
	ciphertext, sharedSecret, err := k.scheme.Encapsulate(k.publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encapsulation failed: %w", err)
	}
	return ciphertext, sharedSecret, nil
}

func (k *KyberKEM) Decapsulate(ciphertext []byte) ([]byte, error) {
	sharedSecret, err := k.scheme.Decapsulate(k.privateKey, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decapsulation failed: %w", err)
	}
	return sharedSecret, nil
}
