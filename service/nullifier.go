package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DeriveNullifier computes the deterministic, voter-and-election-bound
// pseudonym used to detect double voting. Identical inputs always yield the
// identical nullifier; the digest cannot be inverted to recover the voter id
// without already knowing it. The candidate is deliberately not an input:
// one nullifier per voter per election, independent of choice.
func DeriveNullifier(electionID, voterID, templateID string) string {
	material := fmt.Sprintf("%s|%s|%s", electionID, voterID, templateID)
	digest := sha256.Sum256([]byte(material))
	return hex.EncodeToString(digest[:])
}
