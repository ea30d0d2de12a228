package history

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/flowgen/pkg/adapter"
	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/flowgen/pkg/utils/logging"
)

const (
	storageKey   = "flowchart_history"
	maxEntries   = 3
	excerptLimit = 80
)

// Store is a bounded most-recent-first log of successful generations,
// mirrored to a Storage slot on every mutation. History is a convenience
// feature: persistence faults are logged and swallowed, never returned.
type Store struct {
	storage adapter.Storage
	entries []*model.HistoryEntry
	now     func() time.Time
}

type Option func(*Store)

// WithClock overrides the entry timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New loads whatever the slot currently holds. Absent or corrupt data
// yields an empty history without any error surfaced.
func New(storage adapter.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.entries = load(storage)
	return s
}

func load(storage adapter.Storage) []*model.HistoryEntry {
	raw, ok := storage.Get(storageKey)
	if !ok {
		return nil
	}

	var entries []*model.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logging.Default().Warn("discarding corrupt history data", "error", err)
		return nil
	}

	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries
}

// Record prepends a new entry, evicts everything beyond the newest
// three, and persists the whole sequence.
func (s *Store) Record(input, mermaid string) {
	now := s.now()
	entry := &model.HistoryEntry{
		ID:        model.NewEntryID(now),
		Input:     excerpt(input),
		Mermaid:   mermaid,
		Timestamp: now.UnixMilli(),
	}

	s.entries = append([]*model.HistoryEntry{entry}, s.entries...)
	if len(s.entries) > maxEntries {
		s.entries = s.entries[:maxEntries]
	}

	data, err := json.Marshal(s.entries)
	if err != nil {
		logging.Default().Warn("failed to serialize history", "error", err)
		return
	}
	if err := s.storage.Set(storageKey, string(data)); err != nil {
		logging.Default().Warn("failed to persist history", "error", err)
	}
}

// Entries returns the stored sequence, newest first
func (s *Store) Entries() []*model.HistoryEntry {
	entries := make([]*model.HistoryEntry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

func excerpt(input string) string {
	runes := []rune(input)
	if len(runes) <= excerptLimit {
		return input
	}
	return string(runes[:excerptLimit]) + "..."
}
