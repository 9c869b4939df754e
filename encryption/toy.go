package encryption

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const toyModulusBits = 31

// ToyFHE is a tiny integer additive-homomorphic scheme used when a real
// homomorphic backend is unavailable. The single odd modulus n serves as
// both public and private key material:
//
//	encrypt(v) = (v + r*n) mod n^2, r in [0, n)
//	add(c1,c2) = (c1 + c2) mod n^2
//	decrypt(c) = c mod n
//
// It is additively homomorphic only and semantically secure against a weak
// adversary only. A simulation stand-in, not a cryptosystem.
type ToyFHE struct {
	n        *big.Int
	nSquared *big.Int
}

// NewToyFHE generates a random odd modulus of the fixed toy bit-width.
func NewToyFHE() (*ToyFHE, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), toyModulusBits)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to generate toy modulus: %w", err)
	}
	n.SetBit(n, 0, 1) // force odd

	return NewToyFHEWithModulus(n), nil
}

// NewToyFHEWithModulus builds the scheme around a caller-chosen modulus.
// Fixing the modulus makes the scheme's arithmetic reproducible in tests.
func NewToyFHEWithModulus(n *big.Int) *ToyFHE {
	m := new(big.Int).Set(n)
	return &ToyFHE{
		n:        m,
		nSquared: new(big.Int).Mul(m, m),
	}
}

func (t *ToyFHE) Name() string {
	return "toy-fhe"
}

func (t *ToyFHE) KeySize() int {
	return toyModulusBits
}

// Modulus returns a copy of the shared key material.
func (t *ToyFHE) Modulus() *big.Int {
	return new(big.Int).Set(t.n)
}

func (t *ToyFHE) Encrypt(value *big.Int) ([]byte, error) {
	r, err := rand.Int(rand.Reader, t.n)
	if err != nil {
		return nil, fmt.Errorf("failed to draw blinding factor: %w", err)
	}

	c := new(big.Int).Mul(r, t.n)
	c.Add(c, value)
	c.Mod(c, t.nSquared)
	return c.Bytes(), nil
}

func (t *ToyFHE) Decrypt(ciphertext []byte) (*big.Int, error) {
	c := new(big.Int).SetBytes(ciphertext)
	return c.Mod(c, t.n), nil
}

func (t *ToyFHE) Add(ciphertext1, ciphertext2 []byte) ([]byte, error) {
	sum := new(big.Int).SetBytes(ciphertext1)
	sum.Add(sum, new(big.Int).SetBytes(ciphertext2))
	sum.Mod(sum, t.nSquared)
	return sum.Bytes(), nil
}

func (t *ToyFHE) Multiply(ciphertext1, ciphertext2 []byte) ([]byte, error) {
	return nil, fmt.Errorf("toy-fhe does not support homomorphic multiplication")
}

func (t *ToyFHE) SupportsMultiplication() bool {
	return false
}
