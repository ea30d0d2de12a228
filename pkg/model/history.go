package model

import (
	"strconv"
	"sync"
	"time"
)

type EntryID string

var (
	entryIDMu   sync.Mutex
	lastEntryMS int64
	entrySeq    int
)

// NewEntryID generates a time-derived entry ID from epoch milliseconds.
// Rapid successive calls within the same millisecond get a counter suffix
// so IDs stay unique.
func NewEntryID(now time.Time) EntryID {
	entryIDMu.Lock()
	defer entryIDMu.Unlock()

	ms := now.UnixMilli()
	if ms == lastEntryMS {
		entrySeq++
		return EntryID(strconv.FormatInt(ms, 10) + "-" + strconv.Itoa(entrySeq))
	}

	lastEntryMS = ms
	entrySeq = 0
	return EntryID(strconv.FormatInt(ms, 10))
}

// HistoryEntry is one prior generation kept for quick reload. The JSON
// shape matches the persisted slot format: {id, input, mermaid, timestamp}.
type HistoryEntry struct {
	ID        EntryID `json:"id"`
	Input     string  `json:"input"`
	Mermaid   string  `json:"mermaid"`
	Timestamp int64   `json:"timestamp"`
}
