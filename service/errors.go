package service

import "errors"

// Error taxonomy for vote casting. All are local and non-retriable by the
// core; every failure aborts the cast before any tally, ledger or nullifier
// state is mutated.
var (
	// ErrNotEnrolled means the voter id has no registered secret/template.
	ErrNotEnrolled = errors.New("voter not enrolled")

	// ErrDoubleVote means the derived nullifier is already spent.
	ErrDoubleVote = errors.New("double vote blocked: nullifier already used")

	// ErrProofInvalid means zero-knowledge verification failed. Honest proof
	// construction always verifies, so this signals an internal bug rather
	// than an expected runtime path.
	ErrProofInvalid = errors.New("zero-knowledge proof verification failed")

	// ErrSessionClosed means the voting session has ended.
	ErrSessionClosed = errors.New("voting session has ended")

	// ErrAlreadyEnrolled means a voter attempted to enroll twice.
	ErrAlreadyEnrolled = errors.New("voter already enrolled")
)
