// Package store persists case records and the reviewer feedback log as JSON
// documents, the wire format the review UI and offline tooling consume.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/realview-labs/realview/internal/inspection"
)

const legacyCaseFile = "results.json"

// CaseStore keeps one JSON document per property under dir
// (results_<property_id>.json) with an in-memory index in front. Saving a
// property replaces its document wholesale.
type CaseStore struct {
	dir   string
	mu    sync.RWMutex
	cases map[string]*inspection.CaseRecord
}

// OpenCaseStore loads every case document in dir. Unreadable files are
// skipped with a warning so one corrupt document cannot take down the set.
func OpenCaseStore(dir string) (*CaseStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create case directory: %w", err)
	}

	s := &CaseStore{dir: dir, cases: make(map[string]*inspection.CaseRecord)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read case directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		isCaseFile := strings.HasPrefix(name, "results_") && strings.HasSuffix(name, ".json")
		if !isCaseFile && name != legacyCaseFile {
			continue
		}
		record, err := readCaseFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("Skipping unreadable case file", "file", name, "err", err)
			continue
		}
		if record.PropertyID == "" {
			slog.Warn("Skipping case file without property id", "file", name)
			continue
		}
		s.cases[record.PropertyID] = record
	}

	return s, nil
}

func readCaseFile(path string) (*inspection.CaseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record inspection.CaseRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("invalid case JSON: %w", err)
	}
	return &record, nil
}

// Save writes record to disk atomically and replaces any prior run for the
// same property.
func (s *CaseStore) Save(record *inspection.CaseRecord) error {
	if record.PropertyID == "" {
		return fmt.Errorf("case record has no property id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, "results_"+record.PropertyID+".json")
	if err := writeJSONAtomic(path, record); err != nil {
		return fmt.Errorf("failed to save case %s: %w", record.PropertyID, err)
	}

	s.cases[record.PropertyID] = record
	return nil
}

// Get returns the case record for propertyID.
func (s *CaseStore) Get(propertyID string) (*inspection.CaseRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.cases[propertyID]
	return record, ok
}

// List returns all case records sorted by property id.
func (s *CaseStore) List() []*inspection.CaseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*inspection.CaseRecord, 0, len(s.cases))
	for _, record := range s.cases {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].PropertyID < records[j].PropertyID })
	return records
}

// writeJSONAtomic writes v as indented JSON via a temp file and rename, so
// readers never observe a half-written document.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
