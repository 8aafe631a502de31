package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/database/settings"
)

// SettingsSlot stores the blob as one row of the settings table.
type SettingsSlot struct {
	repo *settings.Repository
	key  string
}

func NewSettingsSlot(repo *settings.Repository, key string) *SettingsSlot {
	if key == "" {
		key = config.DefaultStorageKey
	}
	return &SettingsSlot{repo: repo, key: key}
}

func (s *SettingsSlot) Key() string {
	return s.key
}

func (s *SettingsSlot) Get(ctx context.Context) ([]byte, bool, error) {
	value, found, err := s.repo.WithContext(ctx).GetValue(s.key)
	if err != nil || !found {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *SettingsSlot) Set(ctx context.Context, data []byte) error {
	return s.repo.WithContext(ctx).SetSetting(s.key, string(data))
}

// FileSlot stores the blob in a single JSON file.
type FileSlot struct {
	path string
}

func NewFileSlot(path string) (*FileSlot, error) {
	if path == "" {
		return nil, fmt.Errorf("storage file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileSlot{path: path}, nil
}

func (f *FileSlot) Path() string {
	return f.path
}

func (f *FileSlot) Get(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes to a temp file in the same directory and renames it over the
// target, so readers never observe a partial blob.
func (f *FileSlot) Set(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(f.path), ".reading_state_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	tmpFile.Close()

	return os.Rename(tmpPath, f.path)
}

// MemorySlot keeps the blob in memory. GetErr and SetErr inject failures.
type MemorySlot struct {
	mu     sync.Mutex
	data   []byte
	found  bool
	writes int

	GetErr error
	SetErr error
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// NewMemorySlotWith returns a slot pre-populated with data.
func NewMemorySlotWith(data []byte) *MemorySlot {
	return &MemorySlot{data: append([]byte(nil), data...), found: true}
}

func (m *MemorySlot) Get(ctx context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	if !m.found {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

func (m *MemorySlot) Set(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data = append([]byte(nil), data...)
	m.found = true
	m.writes++
	return nil
}

// SetFailures swaps the injected errors under the slot's lock.
func (m *MemorySlot) SetFailures(getErr, setErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetErr = getErr
	m.SetErr = setErr
}

// Writes reports how many successful Set calls happened.
func (m *MemorySlot) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Snapshot returns the stored blob without going through Get.
func (m *MemorySlot) Snapshot() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}
