package models

// CastVoteReceipt is returned to the caller after a vote is committed.
// It carries only material that is already public in the ledger payload.
type CastVoteReceipt struct {
	ReceiptID string `json:"receipt_id"`
	VoterID   string `json:"voter_id"`
	Candidate string `json:"candidate"`
	BlockHash string `json:"block_hash"`
	ZKPValid  bool   `json:"zkp_valid"`
	Nullifier string `json:"nullifier"`
}

// ElectionReport is the persisted end-of-election document: audit flags,
// decrypted tally and a bounded preview of per-vote receipts.
type ElectionReport struct {
	ElectionID       string            `json:"election_id"`
	EnrolledVoters   int               `json:"enrolled_voters"`
	HEBackend        string            `json:"he_backend"`
	SignatureBackend string            `json:"signature_backend"`
	KEMBackend       string            `json:"kem_backend"`
	ChainValid       bool              `json:"chain_valid"`
	NullifiersUnique bool              `json:"nullifiers_unique"`
	Tally            map[string]int64  `json:"tally"`
	ReceiptsPreview  []CastVoteReceipt `json:"receipts_preview"`
	GeneratedAt      int64             `json:"generated_at"`
}

// AttackReport summarizes a run of the attack simulator against a live
// election instance.
type AttackReport struct {
	NumVoters             int              `json:"num_voters"`
	HEBackend             string           `json:"he_backend"`
	ChainValidAfter       bool             `json:"chain_valid_after_attacks"`
	NullifiersUniqueAfter bool             `json:"nullifiers_unique_after_attacks"`
	VoteResults           map[string]int64 `json:"vote_results"`
	ReplayBlocked         bool             `json:"replay_attack_blocked"`
	TamperUndetected      bool             `json:"tamper_attack_undetected"`
	TemplateInversion     bool             `json:"template_inversion_success"`
	HillClimbing          bool             `json:"hill_climbing_success"`
	PresentationSuccess   bool             `json:"presentation_attack_success"`
	CollusionSuccess      bool             `json:"collusion_attack_success"`
	NodeCompromiseHidden  bool             `json:"node_compromise_undetected"`
}
