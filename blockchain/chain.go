package blockchain

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"time"

	"evoting-backend/models"
)

// DefaultDifficultyPrefix is the hex prefix every mined block digest must
// carry. Deliberately cheap: the chain is a single-writer audit trail, not a
// consensus protocol.
const DefaultDifficultyPrefix = "000"

var (
	// ErrMiningExhausted is returned when the configured nonce ceiling is
	// reached before the difficulty prefix is met.
	ErrMiningExhausted = errors.New("mining exhausted: nonce ceiling reached")

	// ErrChainCorrupted is an audit-time signal; it is never produced during
	// normal vote casting.
	ErrChainCorrupted = errors.New("chain corrupted")
)

// Config controls mining behaviour for a VoteChain.
type Config struct {
	// DifficultyPrefix is the required hex prefix of every block digest.
	DifficultyPrefix string
	// MaxNonce bounds the nonce search; 0 keeps the original unbounded
	// behaviour, which loops forever under an unsatisfiable prefix.
	MaxNonce uint64
	// Workers > 1 partitions the nonce search space across goroutines;
	// first valid nonce wins. The external contract is unchanged.
	Workers int
}

// VoteChain is the append-only, hash-linked sequence of committed votes.
// It is not safe for concurrent use; the orchestrator serializes access.
type VoteChain struct {
	cfg    Config
	blocks []*models.Block
}

// New creates a chain holding only the genesis block. Genesis carries the
// all-zero previous hash sentinel and is not mined; validation skips it.
func New(cfg Config) *VoteChain {
	if cfg.DifficultyPrefix == "" {
		cfg.DifficultyPrefix = DefaultDifficultyPrefix
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	genesis := &models.Block{
		Index:     0,
		PrevHash:  make([]byte, 32),
		Timestamp: time.Now().UnixNano(),
		Payload:   map[string]any{"genesis": true},
	}
	genesis.Hash = genesis.ComputeHash()

	return &VoteChain{
		cfg:    cfg,
		blocks: []*models.Block{genesis},
	}
}

// NewFromBlocks restores a chain from persisted blocks, falling back to a
// fresh genesis when none are given.
func NewFromBlocks(cfg Config, blocks []*models.Block) *VoteChain {
	if len(blocks) == 0 {
		return New(cfg)
	}

	vc := New(cfg)
	vc.blocks = blocks
	return vc
}

// AppendBlock mines a block holding payload on top of the current tip and
// extends the chain with it. The new block becomes the tip.
func (vc *VoteChain) AppendBlock(payload map[string]any) (*models.Block, error) {
	prev := vc.blocks[len(vc.blocks)-1]
	block := &models.Block{
		Index:     uint64(len(vc.blocks)),
		PrevHash:  prev.Hash,
		Timestamp: time.Now().UnixNano(),
		Payload:   payload,
	}

	if err := vc.mine(block); err != nil {
		return nil, err
	}

	vc.blocks = append(vc.blocks, block)
	return block, nil
}

// ReMine searches a fresh nonce for the block at index in place. It does not
// repair forward links; callers re-chaining a tampered suffix must update
// each successor's PrevHash themselves. Used by audits and attack drills.
func (vc *VoteChain) ReMine(index int) error {
	if index < 0 || index >= len(vc.blocks) {
		return fmt.Errorf("block index out of range: %d", index)
	}
	return vc.mine(vc.blocks[index])
}

// ValidateChain walks the sequence once and reports whether every
// non-genesis block links to its predecessor, hashes to its stored digest
// and satisfies the work-factor prefix. It is the sole tamper detector.
func (vc *VoteChain) ValidateChain() bool {
	for i := 1; i < len(vc.blocks); i++ {
		curr := vc.blocks[i]
		prev := vc.blocks[i-1]

		if !bytes.Equal(curr.PrevHash, prev.Hash) {
			log.Printf("chain validation: block %d has broken previous-hash link", i)
			return false
		}

		if !curr.Validate(vc.cfg.DifficultyPrefix) {
			log.Printf("chain validation: block %d has invalid hash", i)
			return false
		}
	}

	return true
}

// ValidateUniqueNullifiers scans every payload's nullifier field and asserts
// no duplicates exist. The check is independent of chain validity: it
// catches replays injected directly into the ledger, bypassing the
// orchestrator's own double-vote guard.
func (vc *VoteChain) ValidateUniqueNullifiers() bool {
	seen := make(map[string]bool, len(vc.blocks))
	for i, block := range vc.blocks {
		raw, ok := block.Payload["nullifier"]
		if !ok {
			continue
		}

		nullifier, ok := raw.(string)
		if !ok {
			continue
		}

		if seen[nullifier] {
			log.Printf("nullifier audit: duplicate nullifier at block %d", i)
			return false
		}
		seen[nullifier] = true
	}

	return true
}

// Blocks returns the live block slice. Mutating a returned block is exactly
// the tampering that ValidateChain exists to detect.
func (vc *VoteChain) Blocks() []*models.Block {
	return vc.blocks
}

// Tip returns the most recently appended block.
func (vc *VoteChain) Tip() *models.Block {
	return vc.blocks[len(vc.blocks)-1]
}

// Length returns the number of blocks including genesis.
func (vc *VoteChain) Length() int {
	return len(vc.blocks)
}

// DifficultyPrefix returns the configured work-factor prefix.
func (vc *VoteChain) DifficultyPrefix() string {
	return vc.cfg.DifficultyPrefix
}
