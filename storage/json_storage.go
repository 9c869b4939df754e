package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"evoting-backend/models"
)

// chainFile is the on-disk envelope for a persisted ledger.
type chainFile struct {
	Blocks []*models.Block `json:"blocks"`
}

// JSONStore persists the vote ledger and election reports as JSON files,
// written atomically via a temp file and rename.
type JSONStore struct {
	basePath string
	mu       sync.Mutex
}

func NewJSONStore(basePath string) (*JSONStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &JSONStore{basePath: basePath}, nil
}

// SaveChain writes the full ledger for electionID.
func (s *JSONStore) SaveChain(electionID string, blocks []*models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(s.chainPath(electionID), chainFile{Blocks: blocks})
}

// LoadChain reads the ledger for electionID; a missing file yields an empty
// slice, not an error.
func (s *JSONStore) LoadChain(electionID string) ([]*models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.chainPath(electionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read chain file: %w", err)
	}

	var file chainFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chain: %w", err)
	}
	return file.Blocks, nil
}

// SaveReport persists the end-of-election report.
func (s *JSONStore) SaveReport(electionID string, report *models.ElectionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(s.reportPath(electionID), report)
}

// LoadReport reads a previously persisted report.
func (s *JSONStore) LoadReport(electionID string) (*models.ElectionReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.reportPath(electionID))
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report models.ElectionReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

func (s *JSONStore) chainPath(electionID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s_chain.json", electionID))
}

func (s *JSONStore) reportPath(electionID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s_report.json", electionID))
}

func (s *JSONStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}
