package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/realview-labs/realview/internal/inspection"
)

// Validation errors surfaced to feedback callers.
var (
	ErrUnknownProperty       = errors.New("feedback references unknown property")
	ErrUnknownFilename       = errors.New("feedback references unknown filename")
	ErrInvalidClassification = errors.New("invalid classification")
	ErrInvalidVerdict        = errors.New("invalid verdict")
	ErrAmbiguousEntry        = errors.New("entry must carry either a classification or a feature verdict")
)

// FeedbackStore is the append-only reviewer judgment log. Entries are never
// updated or deleted individually; corrections append a new entry for the
// same key and Resolve applies latest-wins. Reset clears the whole log.
type FeedbackStore struct {
	path  string
	cases *CaseStore

	mu      sync.RWMutex
	entries []inspection.FeedbackEntry
	// latest maps each judgment key to the index of its most recent entry,
	// so resolution is O(1) instead of rescanning the log.
	latest map[inspection.FeedbackKey]int
}

// OpenFeedbackStore loads the log at path, validating appends against cases.
func OpenFeedbackStore(path string, cases *CaseStore) (*FeedbackStore, error) {
	s := &FeedbackStore{
		path:   path,
		cases:  cases,
		latest: make(map[inspection.FeedbackKey]int),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback log: %w", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("invalid feedback log: %w", err)
	}
	for i, entry := range s.entries {
		s.latest[entry.Key()] = i
	}
	return s, nil
}

// Append validates entry, stamps id and time, and persists it. The write is
// atomic per entry: concurrent reviewers can append without corrupting the
// log or losing entries.
func (s *FeedbackStore) Append(entry inspection.FeedbackEntry) (inspection.FeedbackEntry, error) {
	if err := s.validate(entry); err != nil {
		return inspection.FeedbackEntry{}, err
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	s.latest[entry.Key()] = len(s.entries) - 1

	if err := writeJSONAtomic(s.path, s.entries); err != nil {
		// Roll back the in-memory append so memory and disk stay in step.
		s.entries = s.entries[:len(s.entries)-1]
		s.rebuildLatest()
		return inspection.FeedbackEntry{}, fmt.Errorf("failed to persist feedback: %w", err)
	}
	return entry, nil
}

func (s *FeedbackStore) validate(entry inspection.FeedbackEntry) error {
	record, ok := s.cases.Get(entry.PropertyID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, entry.PropertyID)
	}
	if _, ok := record.Image(entry.Filename); !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownFilename, entry.PropertyID, entry.Filename)
	}

	switch {
	case entry.FeatureLevel():
		if entry.Classification != "" {
			return ErrAmbiguousEntry
		}
		if !entry.Verdict.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidVerdict, entry.Verdict)
		}
	default:
		if entry.Verdict != "" {
			return ErrAmbiguousEntry
		}
		if !entry.Classification.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidClassification, entry.Classification)
		}
	}
	return nil
}

// List returns all entries in insertion order.
func (s *FeedbackStore) List() []inspection.FeedbackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]inspection.FeedbackEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Resolve returns the authoritative (latest) entry for key, if any.
func (s *FeedbackStore) Resolve(key inspection.FeedbackKey) (inspection.FeedbackEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.latest[key]
	if !ok {
		return inspection.FeedbackEntry{}, false
	}
	return s.entries[idx], true
}

// Reset clears the whole log, on disk and in memory. There is no partial
// truncation: either everything is gone or the call fails.
func (s *FeedbackStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSONAtomic(s.path, []inspection.FeedbackEntry{}); err != nil {
		return fmt.Errorf("failed to reset feedback log: %w", err)
	}
	s.entries = nil
	s.latest = make(map[inspection.FeedbackKey]int)
	return nil
}

func (s *FeedbackStore) rebuildLatest() {
	s.latest = make(map[inspection.FeedbackKey]int, len(s.entries))
	for i, entry := range s.entries {
		s.latest[entry.Key()] = i
	}
}
