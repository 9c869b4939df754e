package service

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"

	"evoting-backend/biometric"
	"evoting-backend/models"
)

// AttackSimulator drives adversarial scenarios against a live election
// instance to demonstrate which manipulations the audit checks catch. The
// drills mutate the underlying ledger; run them only on throwaway
// instances.
type AttackSimulator struct {
	vs *VotingService
}

func NewAttackSimulator(vs *VotingService) *AttackSimulator {
	return &AttackSimulator{vs: vs}
}

// ReplayAttack appends a copy of the last committed payload directly onto
// the ledger, bypassing the orchestrator's double-vote guard. Returns true
// when the nullifier-uniqueness audit flags the replay.
func (as *AttackSimulator) ReplayAttack() (bool, error) {
	chain := as.vs.Chain()
	tip := chain.Tip()

	replayed := make(map[string]any, len(tip.Payload))
	for k, v := range tip.Payload {
		replayed[k] = v
	}

	if _, err := chain.AppendBlock(replayed); err != nil {
		return false, fmt.Errorf("failed to inject replayed block: %w", err)
	}
	return !chain.ValidateUniqueNullifiers(), nil
}

// TamperAttack rewrites a committed candidate choice and refreshes only the
// block's own digest, without re-mining. Returns true when the chain still
// validates, i.e. the tampering went undetected.
func (as *AttackSimulator) TamperAttack() (bool, error) {
	chain := as.vs.Chain()
	if chain.Length() < 3 {
		return false, errors.New("not enough blocks to tamper with")
	}

	target := chain.Blocks()[2]
	target.Payload["candidate"] = "Mallory"
	target.Hash = target.ComputeHash()

	return chain.ValidateChain(), nil
}

// NodeCompromiseAttack models a compromised writer that rewrites a block
// and re-mines it locally. The forward link to the successor still breaks,
// so validation should fail; true means the rewrite went undetected.
func (as *AttackSimulator) NodeCompromiseAttack() (bool, error) {
	chain := as.vs.Chain()
	if chain.Length() < 4 {
		return false, errors.New("not enough blocks to compromise")
	}

	compromised := chain.Blocks()[2]
	compromised.Payload["candidate"] = "Eve"
	if err := chain.ReMine(2); err != nil {
		return false, fmt.Errorf("re-mining failed: %w", err)
	}

	return chain.ValidateChain(), nil
}

// TemplateInversionAttack tries the naive inversion of the cancellable
// transform (XOR with zeros) and checks the guess against the true feature
// vector. Returns true on a successful inversion.
func (as *AttackSimulator) TemplateInversionAttack(voterID string, sample []byte) bool {
	template, ok := as.vs.Template(voterID)
	if !ok {
		return false
	}

	guessed := make([]byte, len(template.Transformed))
	copy(guessed, template.Transformed)

	original := biometric.ExtractFeatureVector(sample)[:len(guessed)]
	return bytes.Equal(guessed, original)
}

// HillClimbingAttack mutates single template bytes looking for a high
// similarity score against the true feature vector. Returns true when the
// best score crosses the acceptance threshold.
func (as *AttackSimulator) HillClimbingAttack(voterID string, sample []byte) bool {
	template, ok := as.vs.Template(voterID)
	if !ok {
		return false
	}

	target := biometric.ExtractFeatureVector(sample)[:len(template.Transformed)]
	best := 0
	for i := 0; i < 200; i++ {
		candidate := make([]byte, len(template.Transformed))
		copy(candidate, template.Transformed)
		pos := rand.Intn(len(candidate))
		candidate[pos] ^= byte(1 + rand.Intn(254))

		score := 0
		for j := range candidate {
			if candidate[j] == target[j] {
				score++
			}
		}
		if score > best {
			best = score
		}
	}

	return best > 24
}

// PresentationAttack attempts a cast under a synthetic spoofed identity.
// Returns true when the vote is accepted.
func (as *AttackSimulator) PresentationAttack(victimID string) bool {
	_, err := as.vs.CastVote("spoof_"+victimID, "Alice")
	return !errors.Is(err, ErrNotEnrolled)
}

// CollusionAttack has insiders submit an extra vote for a voter who already
// voted. Returns true when the extra vote is accepted.
func (as *AttackSimulator) CollusionAttack(voterID string) bool {
	_, err := as.vs.CastVote(voterID, "Bob")
	return !errors.Is(err, ErrDoubleVote)
}

// RunExperiment enrolls nothing and casts nothing itself; it assumes the
// election has already run, executes every drill in order and reports the
// outcomes together with the post-attack audit flags.
func (as *AttackSimulator) RunExperiment(firstVoterID string, firstSample []byte) (*models.AttackReport, error) {
	results, err := as.vs.DecryptResults()
	if err != nil {
		return nil, err
	}

	replayBlocked, err := as.ReplayAttack()
	if err != nil {
		return nil, err
	}
	tamperUndetected, err := as.TamperAttack()
	if err != nil {
		return nil, err
	}
	inversion := as.TemplateInversionAttack(firstVoterID, firstSample)
	hillClimbing := as.HillClimbingAttack(firstVoterID, firstSample)
	presentation := as.PresentationAttack(firstVoterID)
	collusion := as.CollusionAttack(firstVoterID)
	nodeCompromise, err := as.NodeCompromiseAttack()
	if err != nil {
		return nil, err
	}

	chain := as.vs.Chain()
	return &models.AttackReport{
		NumVoters:             as.vs.EnrolledCount(),
		HEBackend:             as.vs.SchemeName(),
		ChainValidAfter:       chain.ValidateChain(),
		NullifiersUniqueAfter: chain.ValidateUniqueNullifiers(),
		VoteResults:           results,
		ReplayBlocked:         replayBlocked,
		TamperUndetected:      tamperUndetected,
		TemplateInversion:     inversion,
		HillClimbing:          hillClimbing,
		PresentationSuccess:   presentation,
		CollusionSuccess:      collusion,
		NodeCompromiseHidden:  nodeCompromise,
	}, nil
}
