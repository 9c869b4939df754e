package models

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Block is a single committed record in the hash-linked vote ledger.
// Hash is always recomputed from the other fields, never trusted as stored.
type Block struct {
	Index     uint64         `json:"index"`
	PrevHash  []byte         `json:"prev_hash"`
	Timestamp int64          `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
	Nonce     uint64         `json:"nonce"`
	Hash      []byte         `json:"hash"`
}

// blockForHash pins the field set and order covered by the digest. Payload
// keys are order-independent because encoding/json sorts map keys, so the
// encoding is canonical as long as payload values are strings, booleans or
// nested string maps.
type blockForHash struct {
	Index     uint64         `json:"index"`
	PrevHash  string         `json:"prev_hash"`
	Timestamp int64          `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
	Nonce     uint64         `json:"nonce"`
}

// ComputeHash returns the SHA-256 digest over the canonical encoding of the
// block, excluding the stored hash itself.
func (b *Block) ComputeHash() []byte {
	data, err := json.Marshal(blockForHash{
		Index:     b.Index,
		PrevHash:  hex.EncodeToString(b.PrevHash),
		Timestamp: b.Timestamp,
		Payload:   b.Payload,
		Nonce:     b.Nonce,
	})
	if err != nil {
		// Payload values are plain JSON types; marshaling cannot fail for
		// blocks built by this module.
		return nil
	}

	hash := sha256.Sum256(data)
	return hash[:]
}

// HashHex returns the block hash as a lowercase hex string.
func (b *Block) HashHex() string {
	return hex.EncodeToString(b.Hash)
}

// MeetsDifficulty reports whether the digest satisfies the work-factor
// prefix condition on its hex encoding.
func MeetsDifficulty(hash []byte, prefix string) bool {
	return strings.HasPrefix(hex.EncodeToString(hash), prefix)
}

// Validate checks that the stored hash matches a fresh recomputation and
// satisfies the work-factor prefix.
func (b *Block) Validate(prefix string) bool {
	calculated := b.ComputeHash()
	if !bytes.Equal(calculated, b.Hash) {
		return false
	}

	return MeetsDifficulty(calculated, prefix)
}
