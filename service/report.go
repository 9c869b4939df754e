package service

import (
	"fmt"
	"log"
	"time"

	"evoting-backend/models"
)

// receiptsPreviewLimit bounds how many per-vote receipts the report embeds.
const receiptsPreviewLimit = 10

// BuildReport assembles the persisted end-of-election document: audit
// flags, the decrypted per-candidate tally and a bounded receipts preview.
// The report is written through the store when one is configured.
func (vs *VotingService) BuildReport() (*models.ElectionReport, error) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	tally, err := vs.decryptResultsLocked()
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt tally for report: %w", err)
	}

	preview := vs.receipts
	if len(preview) > receiptsPreviewLimit {
		preview = preview[:receiptsPreviewLimit]
	}
	receipts := make([]models.CastVoteReceipt, len(preview))
	copy(receipts, preview)

	report := &models.ElectionReport{
		ElectionID:       vs.electionID,
		EnrolledVoters:   len(vs.templates),
		HEBackend:        vs.scheme.Name(),
		SignatureBackend: vs.signer.Name(),
		KEMBackend:       vs.kem.Name(),
		ChainValid:       vs.chain.ValidateChain(),
		NullifiersUnique: vs.chain.ValidateUniqueNullifiers(),
		Tally:            tally,
		ReceiptsPreview:  receipts,
		GeneratedAt:      time.Now().Unix(),
	}

	if vs.store != nil {
		if err := vs.store.SaveReport(vs.electionID, report); err != nil {
			log.Printf("warning: failed to persist election report: %v", err)
		}
	}

	return report, nil
}
