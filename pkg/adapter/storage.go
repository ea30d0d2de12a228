package adapter

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/adrg/xdg"
	"github.com/m-mizutani/goerr/v2"
)

// Storage is a named key-value slot scoped to the local user, the
// stand-in for browser local storage. Get reports absence via the bool;
// readers treat unreadable data the same as absent data.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// FileStorage keeps all slots in a single JSON file
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage resolves the storage file under the XDG data home
func NewFileStorage() (*FileStorage, error) {
	path, err := xdg.DataFile("flowgen/storage.json")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve storage path")
	}
	return &FileStorage{path: path}, nil
}

// OpenFileStorage uses an explicit file path
func OpenFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.read()
	if err != nil {
		return "", false
	}

	value, ok := slots[key]
	return value, ok
}

func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.read()
	if err != nil {
		// Corrupt storage is overwritten rather than surfaced
		slots = map[string]string{}
	}
	slots[key] = value

	data, err := json.Marshal(slots)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal storage slots")
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write storage file",
			goerr.V("path", s.path))
	}

	return nil
}

func (s *FileStorage) read() (map[string]string, error) {
	slots := map[string]string{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return slots, err
	}

	if err := json.Unmarshal(data, &slots); err != nil {
		return map[string]string{}, err
	}

	return slots, nil
}

// MemoryStorage is an in-process Storage for tests and ephemeral sessions
type MemoryStorage struct {
	mu    sync.Mutex
	slots map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{slots: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.slots[key]
	return value, ok
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = value
	return nil
}
