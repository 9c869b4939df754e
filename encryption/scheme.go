package encryption

import "math/big"

// HomomorphicEncryptionScheme is the capability contract shared by the
// interchangeable tally backends. The orchestrator records Name() alongside
// every tally it exports so an auditor knows which variant produced it.
type HomomorphicEncryptionScheme interface {
	// Identity information
	Name() string
	KeySize() int

	// Core operations. Add must satisfy
	// Decrypt(Add(Encrypt(a), Encrypt(b))) == a + b for all valid a, b.
	Encrypt(value *big.Int) ([]byte, error)
	Decrypt(ciphertext []byte) (*big.Int, error)
	Add(ciphertext1, ciphertext2 []byte) ([]byte, error)

	// Multiply is optional; additive-only schemes return an error.
	Multiply(ciphertext1, ciphertext2 []byte) ([]byte, error)
	SupportsMultiplication() bool
}
