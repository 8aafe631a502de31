// Package storage persists the reading state as one serialized blob in a
// single fixed-key slot.
//
// # Backends
//
//	SettingsSlot  row in the settings table (sqlite or postgres)
//	FileSlot      JSON file replaced atomically on every write
//	MemorySlot    in-process, used by tests and dry runs
//
// Writes from the reading store go through a Writer, which applies snapshots
// in submission order from one goroutine and collapses a backlog to the
// newest snapshot. The slot therefore always converges on the last state
// submitted (last write wins) and never regresses to an older one.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/database"
	"github.com/mrlokans/readinglog/internal/database/settings"
	"github.com/mrlokans/readinglog/internal/entities"
)

// Adapter is a single slot holding the serialized reading state.
type Adapter interface {
	// Get returns the last stored blob. found is false when nothing was ever stored.
	Get(ctx context.Context) (data []byte, found bool, err error)

	// Set replaces the stored blob.
	Set(ctx context.Context, data []byte) error
}

// Encode serializes the full reading state.
func Encode(state entities.ReadingState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode reading state: %w", err)
	}
	return data, nil
}

// Decode parses a stored blob. Missing fields stay at their zero values.
func Decode(data []byte) (entities.ReadingState, error) {
	var state entities.ReadingState
	if len(strings.TrimSpace(string(data))) == 0 {
		return state, fmt.Errorf("decode reading state: empty blob")
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return entities.ReadingState{}, fmt.Errorf("decode reading state: %w", err)
	}
	return state, nil
}

// Load reads and decodes the slot. When the slot is empty the default state
// is returned with a nil error.
func Load(ctx context.Context, a Adapter) (entities.ReadingState, error) {
	data, found, err := a.Get(ctx)
	if err != nil {
		return entities.DefaultReadingState(), fmt.Errorf("read reading state: %w", err)
	}
	if !found {
		return entities.DefaultReadingState(), nil
	}
	state, err := Decode(data)
	if err != nil {
		return entities.DefaultReadingState(), err
	}
	return state, nil
}

// Save encodes and writes state synchronously.
func Save(ctx context.Context, a Adapter, state entities.ReadingState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	if err := a.Set(ctx, data); err != nil {
		return fmt.Errorf("write reading state: %w", err)
	}
	return nil
}

// NewAdapter builds the configured backend. db may be nil for the file backend.
func NewAdapter(cfg config.Storage, db *database.Database) (Adapter, error) {
	switch cfg.Backend {
	case config.StorageBackendDatabase, "":
		if db == nil {
			return nil, fmt.Errorf("database storage backend requires a database")
		}
		return NewSettingsSlot(settings.NewRepository(db.DB), cfg.Key), nil
	case config.StorageBackendFile:
		return NewFileSlot(cfg.FilePath)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
