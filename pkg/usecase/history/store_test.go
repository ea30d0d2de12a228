package history_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/flowgen/pkg/adapter"
	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/flowgen/pkg/usecase/history"
	"github.com/m-mizutani/gt"
)

func TestRecordKeepsNewestThree(t *testing.T) {
	storage := adapter.NewMemoryStorage()
	store := history.New(storage)

	store.Record("process a", "flowchart TD\n    A --> B")
	store.Record("process b", "flowchart TD\n    B --> C")
	store.Record("process c", "flowchart TD\n    C --> D")
	store.Record("process d", "flowchart TD\n    D --> E")

	entries := store.Entries()
	gt.Equal(t, len(entries), 3)
	gt.Equal(t, entries[0].Input, "process d")
	gt.Equal(t, entries[1].Input, "process c")
	gt.Equal(t, entries[2].Input, "process b")
}

func TestRecordPersistsWholeSequence(t *testing.T) {
	storage := adapter.NewMemoryStorage()
	store := history.New(storage)

	store.Record("first process", "flowchart TD\n    A --> B")
	store.Record("second process", "flowchart TD\n    B --> C")

	raw, ok := storage.Get("flowchart_history")
	gt.True(t, ok)

	var persisted []*model.HistoryEntry
	gt.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	gt.Equal(t, len(persisted), 2)
	gt.Equal(t, persisted[0].Input, "second process")
	gt.Equal(t, persisted[1].Input, "first process")
	gt.NotEqual(t, persisted[0].ID, persisted[1].ID)
}

func TestRecordTruncatesExcerpt(t *testing.T) {
	storage := adapter.NewMemoryStorage()
	store := history.New(storage)

	long := strings.Repeat("x", 100)
	store.Record(long, "flowchart TD\n    A --> B")

	entries := store.Entries()
	gt.Equal(t, entries[0].Input, strings.Repeat("x", 80)+"...")

	// Exactly at the limit no marker is added
	exact := strings.Repeat("y", 80)
	store.Record(exact, "flowchart TD\n    A --> B")
	gt.Equal(t, store.Entries()[0].Input, exact)
}

func TestLoadExistingEntries(t *testing.T) {
	storage := adapter.NewMemoryStorage()
	first := history.New(storage)
	first.Record("saved process", "flowchart TD\n    A --> B")

	second := history.New(storage)
	entries := second.Entries()
	gt.Equal(t, len(entries), 1)
	gt.Equal(t, entries[0].Input, "saved process")
	gt.Equal(t, entries[0].Mermaid, "flowchart TD\n    A --> B")
}

func TestLoadCorruptData(t *testing.T) {
	storage := adapter.NewMemoryStorage()
	gt.NoError(t, storage.Set("flowchart_history", "{not json"))

	store := history.New(storage)
	gt.Equal(t, len(store.Entries()), 0)

	// The store stays usable and overwrites the corrupt slot
	store.Record("fresh process", "flowchart TD\n    A --> B")
	gt.Equal(t, len(store.Entries()), 1)
}

func TestLoadOversizedData(t *testing.T) {
	entries := []*model.HistoryEntry{
		{ID: "1", Input: "a"}, {ID: "2", Input: "b"},
		{ID: "3", Input: "c"}, {ID: "4", Input: "d"},
	}
	data, err := json.Marshal(entries)
	gt.NoError(t, err)

	storage := adapter.NewMemoryStorage()
	gt.NoError(t, storage.Set("flowchart_history", string(data)))

	store := history.New(storage)
	gt.Equal(t, len(store.Entries()), 3)
}

func TestEntryTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	storage := adapter.NewMemoryStorage()
	store := history.New(storage, history.WithClock(func() time.Time { return now }))

	store.Record("timed process", "flowchart TD\n    A --> B")

	entry := store.Entries()[0]
	gt.Equal(t, entry.Timestamp, now.UnixMilli())
	gt.True(t, strings.HasPrefix(string(entry.ID), "1748779200000"))
}
