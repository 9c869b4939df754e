// Package registry is the enrollment source: it supplies, per voter, a
// stable identifier and a biometric sample. Records come either from a
// fingerprint dataset on disk or from deterministic synthetic samples when
// no dataset is mounted.
package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// VoterRecord pairs a voter identifier with the sample it was derived from.
type VoterRecord struct {
	VoterID    string `json:"voter_id"`
	SamplePath string `json:"sample_path,omitempty"`
	Sample     []byte `json:"-"`
}

// Config controls record discovery.
type Config struct {
	DatasetRoot string
	MaxRecords  int
}

// VoterRegistry holds the discovered records for lookup during enrollment.
type VoterRegistry struct {
	mu      sync.RWMutex
	records map[string]*VoterRecord
	order   []string
}

func New() *VoterRegistry {
	return &VoterRegistry{
		records: make(map[string]*VoterRecord),
	}
}

// LoadDataset discovers fingerprint sample files under the dataset root and
// derives voter identifiers from file names.
func (r *VoterRegistry) LoadDataset(cfg Config) error {
	records, err := DiscoverRecords(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range records {
		rec := records[i]
		if _, exists := r.records[rec.VoterID]; exists {
			continue
		}
		r.records[rec.VoterID] = &rec
		r.order = append(r.order, rec.VoterID)
	}
	return nil
}

// LoadTestData fabricates count deterministic synthetic records. Used for
// demos and tests where no dataset is mounted.
func (r *VoterRegistry) LoadTestData(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < count; i++ {
		voterID := fmt.Sprintf("voter_mock_%03d", i)
		if _, exists := r.records[voterID]; exists {
			continue
		}
		r.records[voterID] = &VoterRecord{
			VoterID: voterID,
			Sample:  []byte(fmt.Sprintf("synthetic-fingerprint-%03d", i)),
		}
		r.order = append(r.order, voterID)
	}
}

// Lookup returns the record for voterID, loading the sample bytes from disk
// on first use for dataset-backed records.
func (r *VoterRegistry) Lookup(voterID string) (*VoterRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[voterID]
	if !ok {
		return nil, fmt.Errorf("voter not found in registry: %s", voterID)
	}

	if record.Sample == nil && record.SamplePath != "" {
		sample, err := os.ReadFile(record.SamplePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read sample for %s: %w", voterID, err)
		}
		record.Sample = sample
	}

	return record, nil
}

// Exists reports whether the registry knows voterID.
func (r *VoterRegistry) Exists(voterID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[voterID]
	return ok
}

// All returns the records in discovery order.
func (r *VoterRegistry) All() []VoterRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]VoterRecord, 0, len(r.order))
	for _, id := range r.order {
		records = append(records, *r.records[id])
	}
	return records
}

func (r *VoterRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// DiscoverRecords finds fingerprint image files under the dataset root and
// derives voter identifiers from the file stems.
func DiscoverRecords(cfg Config) ([]VoterRecord, error) {
	if _, err := os.Stat(cfg.DatasetRoot); err != nil {
		return nil, fmt.Errorf("dataset root not found: %w", err)
	}

	var paths []string
	err := filepath.WalkDir(cfg.DatasetRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := strings.ToLower(filepath.Ext(path)); ext == ".bmp" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk dataset root: %w", err)
	}

	sort.Strings(paths)

	records := make([]VoterRecord, 0, len(paths))
	for _, path := range paths {
		if cfg.MaxRecords > 0 && len(records) >= cfg.MaxRecords {
			break
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		stem = strings.ReplaceAll(stem, " ", "_")
		records = append(records, VoterRecord{
			VoterID:    "voter_" + stem,
			SamplePath: path,
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no fingerprint samples discovered under %s", cfg.DatasetRoot)
	}
	return records, nil
}
