package service

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"evoting-backend/biometric"
	"evoting-backend/blockchain"
	"evoting-backend/encryption"
	"evoting-backend/models"
	"evoting-backend/storage"
)

// Config assembles the collaborators and knobs for a VotingService. Zero
// values select the reference setup: toy homomorphic backend, Dilithium
// signatures, Kyber KEM, default difficulty, 24h session.
type Config struct {
	ElectionID       string
	StoragePath      string
	DifficultyPrefix string
	MaxNonce         uint64
	MiningWorkers    int
	SessionDuration  time.Duration

	Scheme encryption.HomomorphicEncryptionScheme
	Signer encryption.SignatureProvider
	KEM    encryption.KEMProvider
}

// VotingService is the orchestrator: the only component with mutable
// cross-cutting state. The secret registry, template map, used-nullifier
// set, encrypted tally and ledger tip are all guarded by one exclusive
// critical section so the double-vote check and its commit are atomic
// together.
type VotingService struct {
	mu sync.Mutex

	electionID string
	chain      *blockchain.VoteChain
	scheme     encryption.HomomorphicEncryptionScheme
	signer     encryption.SignatureProvider
	kem        encryption.KEMProvider
	store      *storage.JSONStore

	votingSession   *VotingSession
	countingService *VoteCountingService
	metrics         *MetricsCollector

	templates      map[string]*biometric.CancellableTemplate
	secretRegistry map[string]*big.Int
	encryptedTally map[string][]byte
	usedNullifiers map[string]bool
	votedVoters    map[string]bool
	receipts       []models.CastVoteReceipt
}

// VoterStatistics summarizes enrollment and participation.
type VoterStatistics struct {
	EnrolledCount int                       `json:"enrolled_count"`
	VotedCount    int                       `json:"voted_count"`
	VoterDetails  map[string]map[string]any `json:"voter_details"`
}

func NewVotingService(cfg Config) (*VotingService, error) {
	if cfg.ElectionID == "" {
		cfg.ElectionID = "default_election"
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 24 * time.Hour
	}

	scheme := cfg.Scheme
	if scheme == nil {
		var err error
		scheme, err = encryption.NewToyFHE()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tally backend: %w", err)
		}
	}

	signer := cfg.Signer
	if signer == nil {
		var err error
		signer, err = encryption.NewDilithiumSigner()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize signature provider: %w", err)
		}
	}

	kem := cfg.KEM
	if kem == nil {
		var err error
		kem, err = encryption.NewKyberKEM()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize KEM provider: %w", err)
		}
	}

	chainCfg := blockchain.Config{
		DifficultyPrefix: cfg.DifficultyPrefix,
		MaxNonce:         cfg.MaxNonce,
		Workers:          cfg.MiningWorkers,
	}

	var store *storage.JSONStore
	chain := blockchain.New(chainCfg)
	if cfg.StoragePath != "" {
		var err error
		store, err = storage.NewJSONStore(cfg.StoragePath)
		if err != nil {
			return nil, err
		}

		// Restore a previously persisted ledger for auditability. Secrets,
		// templates and the running tally are deliberately never persisted,
		// so a restored instance can audit but not continue the election.
		blocks, err := store.LoadChain(cfg.ElectionID)
		if err != nil {
			return nil, err
		}
		if len(blocks) > 0 {
			chain = blockchain.NewFromBlocks(chainCfg, blocks)
			log.Printf("restored ledger with %d blocks for election %s", len(blocks), cfg.ElectionID)
		}
	}

	return &VotingService{
		electionID:      cfg.ElectionID,
		chain:           chain,
		scheme:          scheme,
		signer:          signer,
		kem:             kem,
		store:           store,
		votingSession:   NewVotingSession(cfg.SessionDuration),
		countingService: NewVoteCountingService(scheme),
		metrics:         NewMetricsCollector(),
		templates:       make(map[string]*biometric.CancellableTemplate),
		secretRegistry:  make(map[string]*big.Int),
		encryptedTally:  make(map[string][]byte),
		usedNullifiers:  make(map[string]bool),
		votedVoters:     make(map[string]bool),
	}, nil
}

// EnrollVoter transitions a voter from Unenrolled to Enrolled: it derives a
// cancellable template from the biometric sample and allocates the voter's
// proof secret. The secret stays in memory and never reaches the ledger.
func (vs *VotingService) EnrollVoter(voterID string, sample []byte) (*biometric.CancellableTemplate, error) {
	started := time.Now()

	vs.mu.Lock()
	defer vs.mu.Unlock()

	if !vs.votingSession.IsActive() {
		return nil, ErrSessionClosed
	}
	if _, exists := vs.templates[voterID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyEnrolled, voterID)
	}

	featureVec := biometric.ExtractFeatureVector(sample)
	template, err := biometric.CreateCancellableTemplate(featureVec, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to build template: %w", err)
	}

	secret, err := encryption.MakeSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate voter secret: %w", err)
	}

	vs.templates[voterID] = template
	vs.secretRegistry[voterID] = secret
	vs.metrics.RecordEnrollment(time.Since(started))

	return template, nil
}

// CastVote runs the full cast sequence for one vote. All guard checks
// precede all mutations; the mutations then happen in the fixed order
// tally update, ledger append, nullifier marking. The sequence is atomic
// from the caller's perspective because the whole method holds the lock.
func (vs *VotingService) CastVote(voterID, candidate string) (*models.CastVoteReceipt, error) {
	started := time.Now()

	vs.mu.Lock()
	defer vs.mu.Unlock()

	if !vs.votingSession.IsActive() {
		return nil, ErrSessionClosed
	}

	// Step 1: enrollment guard.
	template, ok := vs.templates[voterID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotEnrolled, voterID)
	}
	secret := vs.secretRegistry[voterID]

	// Step 2: double-vote guard on the derived nullifier.
	nullifier := DeriveNullifier(vs.electionID, voterID, template.TemplateID)
	if vs.usedNullifiers[nullifier] {
		return nil, fmt.Errorf("%w (voter %s)", ErrDoubleVote, voterID)
	}

	// Step 3: prove and verify knowledge of the voter secret, bound to a
	// context that is unique per cast. The uuid nonce keeps contexts of
	// repeated attempts distinct even for identical voter and candidate.
	castNonce := uuid.NewString()
	context := fmt.Sprintf("%s:%s:%s:%s:%s", vs.electionID, voterID, candidate, nullifier, castNonce)
	proof, err := encryption.ProveKnowledge(secret, context)
	if err != nil {
		return nil, fmt.Errorf("failed to build proof: %w", err)
	}
	public := encryption.PublicFromSecret(secret)
	if !encryption.VerifyKnowledge(public, proof, context) {
		return nil, ErrProofInvalid
	}

	// Step 4: assemble the payload and attach signature and KEM metadata.
	// Everything up to here reads service state without mutating it, so any
	// failure aborts the cast cleanly.
	payload := map[string]any{
		"election_id": vs.electionID,
		"voter_id":    voterID,
		"candidate":   candidate,
		"nullifier":   nullifier,
		"nonce":       castNonce,
		"zkp": map[string]any{
			"commitment": proof.Commitment.String(),
			"response":   proof.Response.String(),
		},
		"template_id": template.TemplateID,
		"he_backend":  vs.scheme.Name(),
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}
	signature, err := vs.signer.Sign(serialized)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}
	kemCiphertext, _, err := vs.kem.Encapsulate()
	if err != nil {
		return nil, fmt.Errorf("failed to encapsulate: %w", err)
	}
	payload["signature"] = hex.EncodeToString(signature)
	payload["signature_backend"] = vs.signer.Name()
	payload["kem_ct"] = hex.EncodeToString(kemCiphertext)
	payload["kem_backend"] = vs.kem.Name()

	// Step 5: merge one encrypted unit vote into the candidate's running
	// ciphertext, then commit the payload as a new ledger block. The merge
	// is rolled back when the append fails, so an aborted cast leaves no
	// trace and can be retried; a crash between the mutations below is a
	// documented non-goal.
	unit, err := vs.scheme.Encrypt(big.NewInt(1))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt unit vote: %w", err)
	}
	prior, hadPrior := vs.encryptedTally[candidate]
	if hadPrior {
		merged, err := vs.scheme.Add(prior, unit)
		if err != nil {
			return nil, fmt.Errorf("failed to merge vote into tally: %w", err)
		}
		vs.encryptedTally[candidate] = merged
	} else {
		vs.encryptedTally[candidate] = unit
	}

	block, err := vs.chain.AppendBlock(payload)
	if err != nil {
		if hadPrior {
			vs.encryptedTally[candidate] = prior
		} else {
			delete(vs.encryptedTally, candidate)
		}
		return nil, fmt.Errorf("failed to append vote block: %w", err)
	}

	// Step 6: mark the nullifier spent only after the vote is committed.
	vs.usedNullifiers[nullifier] = true
	vs.votedVoters[voterID] = true

	receipt := models.CastVoteReceipt{
		ReceiptID: uuid.NewString(),
		VoterID:   voterID,
		Candidate: candidate,
		BlockHash: block.HashHex(),
		ZKPValid:  true,
		Nullifier: nullifier,
	}
	vs.receipts = append(vs.receipts, receipt)

	if vs.store != nil {
		if err := vs.store.SaveChain(vs.electionID, vs.chain.Blocks()); err != nil {
			log.Printf("warning: failed to persist ledger: %v", err)
		}
	}

	vs.metrics.RecordCast(time.Since(started))
	return &receipt, nil
}

// DecryptResults decrypts each candidate's accumulated ciphertext.
// Decryption is a pure read; the tally map is not mutated.
func (vs *VotingService) DecryptResults() (map[string]int64, error) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return vs.decryptResultsLocked()
}

func (vs *VotingService) decryptResultsLocked() (map[string]int64, error) {
	results := make(map[string]int64, len(vs.encryptedTally))
	for candidate, ciphertext := range vs.encryptedTally {
		plaintext, err := vs.scheme.Decrypt(ciphertext)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt tally for %s: %w", candidate, err)
		}
		results[candidate] = plaintext.Int64()
	}
	return results, nil
}

// CountVotes closes out the tally: it decrypts every candidate ciphertext
// and caches the results on the counting service.
func (vs *VotingService) CountVotes() (*VotingResults, error) {
	started := time.Now()

	vs.mu.Lock()
	defer vs.mu.Unlock()

	results, err := vs.decryptResultsLocked()
	if err != nil {
		return nil, err
	}

	vs.metrics.RecordCounting(time.Since(started))
	return vs.countingService.Record(results, vs.chain.Length()-1), nil
}

// ValidateChain re-walks the ledger; a pure audit signal.
func (vs *VotingService) ValidateChain() bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return vs.chain.ValidateChain()
}

// ValidateUniqueNullifiers independently re-derives the double-vote audit
// from ledger payloads alone.
func (vs *VotingService) ValidateUniqueNullifiers() bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return vs.chain.ValidateUniqueNullifiers()
}

// Audit runs both ledger checks and returns ErrChainCorrupted when either
// fails. Never invoked during casting.
func (vs *VotingService) Audit() error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if !vs.chain.ValidateChain() {
		return fmt.Errorf("%w: hash-link validation failed", blockchain.ErrChainCorrupted)
	}
	if !vs.chain.ValidateUniqueNullifiers() {
		return fmt.Errorf("%w: duplicate nullifier committed", blockchain.ErrChainCorrupted)
	}
	return nil
}

// Chain exposes the underlying ledger for audits and attack drills.
func (vs *VotingService) Chain() *blockchain.VoteChain {
	return vs.chain
}

// BlocksSnapshot returns a copy of the block slice taken under the service
// lock. Concurrent readers must use this instead of Chain().Blocks(), which
// races with casting.
func (vs *VotingService) BlocksSnapshot() []*models.Block {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	blocks := vs.chain.Blocks()
	snapshot := make([]*models.Block, len(blocks))
	copy(snapshot, blocks)
	return snapshot
}

// Receipts returns a copy of all receipts issued so far.
func (vs *VotingService) Receipts() []models.CastVoteReceipt {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	receipts := make([]models.CastVoteReceipt, len(vs.receipts))
	copy(receipts, vs.receipts)
	return receipts
}

// EnrolledCount returns the number of enrolled voters.
func (vs *VotingService) EnrolledCount() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.templates)
}

// PublicValue returns the voter's public proof value, derived on demand
// from the registered secret. The secret itself is never exposed.
func (vs *VotingService) PublicValue(voterID string) (*big.Int, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	secret, ok := vs.secretRegistry[voterID]
	if !ok {
		return nil, false
	}
	return encryption.PublicFromSecret(secret), true
}

// Template returns the enrolled template for voterID, if any.
func (vs *VotingService) Template(voterID string) (*biometric.CancellableTemplate, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	template, ok := vs.templates[voterID]
	return template, ok
}

// GetVoterStatistics reports per-voter enrollment and participation state.
func (vs *VotingService) GetVoterStatistics() *VoterStatistics {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	stats := &VoterStatistics{
		EnrolledCount: len(vs.templates),
		VotedCount:    len(vs.votedVoters),
		VoterDetails:  make(map[string]map[string]any, len(vs.templates)),
	}
	for voterID := range vs.templates {
		stats.VoterDetails[voterID] = map[string]any{
			"enrolled": true,
			"voted":    vs.votedVoters[voterID],
		}
	}
	return stats
}

// Metrics returns a snapshot of phase timings.
func (vs *VotingService) Metrics() MetricsResponse {
	return vs.metrics.Snapshot()
}

// IsVotingActive reports whether the session still accepts casts.
func (vs *VotingService) IsVotingActive() bool {
	return vs.votingSession.IsActive()
}

// Session exposes the session for status reporting.
func (vs *VotingService) Session() *VotingSession {
	return vs.votingSession
}

// EndVotingSession closes the session; further enrollments and casts fail
// with ErrSessionClosed.
func (vs *VotingService) EndVotingSession() {
	vs.votingSession.End()
}

// ElectionID returns the election identifier.
func (vs *VotingService) ElectionID() string {
	return vs.electionID
}

// SchemeName returns the tally backend identifier carried in payloads.
func (vs *VotingService) SchemeName() string {
	return vs.scheme.Name()
}

// CountingService exposes the counting collaborator.
func (vs *VotingService) CountingService() *VoteCountingService {
	return vs.countingService
}
