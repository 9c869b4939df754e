// Package biometric builds cancellable templates from raw fingerprint
// samples. The transform is one-way: the template can be revoked and
// reissued by drawing a new cancel token, without touching the underlying
// biometric.
package biometric

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const templateBytes = 32

// CancellableTemplate is the stable per-voter credential the voting core
// consumes. Only TemplateID ever reaches a ledger payload.
type CancellableTemplate struct {
	TemplateID  string `json:"template_id"`
	Transformed []byte `json:"transformed"`
	CancelToken []byte `json:"cancel_token"`
}

// ExtractFeatureVector reduces a raw sample to a fixed-width feature vector.
func ExtractFeatureVector(sample []byte) []byte {
	digest := sha3.Sum512(sample)
	return digest[:]
}

// CreateCancellableTemplate XORs the leading feature bytes with a random
// cancel token and derives the template identifier from the result.
func CreateCancellableTemplate(featureVec []byte, userID string) (*CancellableTemplate, error) {
	if len(featureVec) < templateBytes {
		return nil, fmt.Errorf("feature vector too short: %d bytes", len(featureVec))
	}

	cancelToken := make([]byte, templateBytes)
	if _, err := rand.Read(cancelToken); err != nil {
		return nil, fmt.Errorf("failed to generate cancel token: %w", err)
	}

	transformed := make([]byte, templateBytes)
	for i := range transformed {
		transformed[i] = featureVec[i] ^ cancelToken[i]
	}

	digest := sha256.Sum256(append([]byte(userID), transformed...))
	return &CancellableTemplate{
		TemplateID:  hex.EncodeToString(digest[:]),
		Transformed: transformed,
		CancelToken: cancelToken,
	}, nil
}

// RevokeAndReissue discards the old token and derives a fresh template from
// the same feature vector.
func RevokeAndReissue(featureVec []byte, userID string) (*CancellableTemplate, error) {
	return CreateCancellableTemplate(featureVec, userID)
}
