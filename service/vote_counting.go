package service

import (
	"errors"
	"sync"

	"evoting-backend/encryption"
)

// VoteCountingService caches decrypted election results. Per-candidate
// ciphertexts are decrypted exactly once, at reporting time; no partial or
// intermediate tally is ever exposed before then.
type VoteCountingService struct {
	mu      sync.RWMutex
	scheme  encryption.HomomorphicEncryptionScheme
	results map[string]int64
	counted bool
	total   int64
}

// VotingResults is the final decrypted count.
type VotingResults struct {
	TotalVotes     int64            `json:"total_votes"`
	Results        map[string]int64 `json:"results"`
	ProcessedVotes int              `json:"processed_votes"`
	Backend        string           `json:"backend"`
}

// VoteVerification cross-checks the count against enrollment and the ledger.
type VoteVerification struct {
	EnrolledVoters int   `json:"enrolled_voters"`
	CommittedVotes int   `json:"committed_votes"`
	CountedVotes   int64 `json:"counted_votes"`
	IsValid        bool  `json:"is_valid"`
}

func NewVoteCountingService(scheme encryption.HomomorphicEncryptionScheme) *VoteCountingService {
	return &VoteCountingService{
		scheme:  scheme,
		results: make(map[string]int64),
	}
}

// Record stores the decrypted results with the number of committed ledger
// votes they were derived from.
func (vcs *VoteCountingService) Record(results map[string]int64, committedVotes int) *VotingResults {
	vcs.mu.Lock()
	defer vcs.mu.Unlock()

	vcs.results = results
	vcs.counted = true
	vcs.total = 0
	for _, count := range results {
		vcs.total += count
	}

	return &VotingResults{
		TotalVotes:     vcs.total,
		Results:        vcs.results,
		ProcessedVotes: committedVotes,
		Backend:        vcs.scheme.Name(),
	}
}

// GetLatestResults returns the most recently recorded results.
func (vcs *VoteCountingService) GetLatestResults() (*VotingResults, error) {
	vcs.mu.RLock()
	defer vcs.mu.RUnlock()

	if !vcs.counted {
		return nil, errors.New("votes have not been counted yet")
	}

	return &VotingResults{
		TotalVotes: vcs.total,
		Results:    vcs.results,
		Backend:    vcs.scheme.Name(),
	}, nil
}

// VerifyVoteCount checks that the counted total is consistent with the
// number of enrolled voters and committed ledger blocks.
func (vcs *VoteCountingService) VerifyVoteCount(enrolledVoters, committedVotes int) (*VoteVerification, error) {
	vcs.mu.RLock()
	defer vcs.mu.RUnlock()

	if !vcs.counted {
		return nil, errors.New("votes have not been counted yet")
	}

	return &VoteVerification{
		EnrolledVoters: enrolledVoters,
		CommittedVotes: committedVotes,
		CountedVotes:   vcs.total,
		IsValid:        committedVotes <= enrolledVoters && vcs.total == int64(committedVotes),
	}, nil
}
