package blockchain

import (
	"sync"
	"sync/atomic"

	"evoting-backend/models"
)

func (vc *VoteChain) mine(block *models.Block) error {
	if vc.cfg.Workers > 1 {
		return vc.minePartitioned(block)
	}
	return vc.mineSequential(block)
}

func (vc *VoteChain) mineSequential(block *models.Block) error {
	var nonce uint64
	for {
		block.Nonce = nonce
		block.Hash = block.ComputeHash()
		if models.MeetsDifficulty(block.Hash, vc.cfg.DifficultyPrefix) {
			return nil
		}

		if vc.cfg.MaxNonce > 0 && nonce >= vc.cfg.MaxNonce {
			return ErrMiningExhausted
		}
		nonce++
	}
}

// minePartitioned splits the nonce space across workers by stride; the first
// worker to satisfy the prefix wins. The block is only written once, after
// all workers have stopped, so callers observe the same contract as the
// sequential search.
func (vc *VoteChain) minePartitioned(block *models.Block) error {
	workers := vc.cfg.Workers

	type solution struct {
		nonce uint64
		hash  []byte
	}

	found := make(chan solution, workers)
	var done atomic.Bool
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(start uint64) {
			defer wg.Done()

			// Each worker hashes its own shallow copy. The payload map is
			// shared but only read.
			candidate := *block
			for nonce := start; ; nonce += uint64(workers) {
				if done.Load() {
					return
				}
				if vc.cfg.MaxNonce > 0 && nonce > vc.cfg.MaxNonce {
					return
				}

				candidate.Nonce = nonce
				hash := candidate.ComputeHash()
				if models.MeetsDifficulty(hash, vc.cfg.DifficultyPrefix) {
					done.Store(true)
					found <- solution{nonce: nonce, hash: hash}
					return
				}
			}
		}(uint64(w))
	}

	go func() {
		wg.Wait()
		close(found)
	}()

	sol, ok := <-found
	if !ok {
		return ErrMiningExhausted
	}

	block.Nonce = sol.nonce
	block.Hash = sol.hash
	return nil
}
