package encryption

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
)

// Schnorr proof of knowledge of a discrete logarithm, made non-interactive
// with the Fiat-Shamir transform: the verifier's random challenge is
// replaced by a hash of the prover's commitment, the public value and the
// caller-supplied context string. Binding the context to
// (election, voter, candidate, nullifier, per-cast nonce) makes each proof
// usable for exactly one cast.
//
// The group parameters are research toys, shared by all participants.
var (
	groupP = big.NewInt(2147483647) // 2^31 - 1, prime
	groupG = big.NewInt(5)
)

// ZKProof is a Schnorr-style commitment/response pair. Immutable once
// produced; embedded read-only in ledger payloads.
type ZKProof struct {
	Commitment *big.Int `json:"commitment"`
	Response   *big.Int `json:"response"`
}

// MakeSecret draws a uniformly random scalar in [1, p-2].
func MakeSecret() (*big.Int, error) {
	limit := new(big.Int).Sub(groupP, big.NewInt(2))
	s, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to draw secret scalar: %w", err)
	}
	return s.Add(s, big.NewInt(1)), nil
}

// PublicFromSecret returns g^secret mod p.
func PublicFromSecret(secret *big.Int) *big.Int {
	return new(big.Int).Exp(groupG, secret, groupP)
}

func challenge(commitment, public *big.Int, context string) *big.Int {
	payload := fmt.Sprintf("%s|%s|%s", commitment.String(), public.String(), context)
	digest := sha256.Sum256([]byte(payload))

	c := new(big.Int).SetBytes(digest[:])
	return c.Mod(c, new(big.Int).Sub(groupP, big.NewInt(1)))
}

// ProveKnowledge builds a non-interactive proof that the caller knows
// secret, bound to context.
func ProveKnowledge(secret *big.Int, context string) (*ZKProof, error) {
	r, err := MakeSecret()
	if err != nil {
		return nil, err
	}

	commitment := new(big.Int).Exp(groupG, r, groupP)
	public := PublicFromSecret(secret)
	c := challenge(commitment, public, context)

	// s = (r + c*secret) mod (p-1)
	response := new(big.Int).Mul(c, secret)
	response.Add(response, r)
	response.Mod(response, new(big.Int).Sub(groupP, big.NewInt(1)))

	return &ZKProof{Commitment: commitment, Response: response}, nil
}

// VerifyKnowledge recomputes the challenge and accepts iff
// g^s mod p == commitment * public^c mod p.
func VerifyKnowledge(public *big.Int, proof *ZKProof, context string) bool {
	if public == nil || proof == nil || proof.Commitment == nil || proof.Response == nil {
		return false
	}

	c := challenge(proof.Commitment, public, context)
	lhs := new(big.Int).Exp(groupG, proof.Response, groupP)

	rhs := new(big.Int).Exp(public, c, groupP)
	rhs.Mul(rhs, proof.Commitment)
	rhs.Mod(rhs, groupP)

	return lhs.Cmp(rhs) == 0
}
