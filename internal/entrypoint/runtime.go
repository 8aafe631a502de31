package entrypoint

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/database"
	"github.com/mrlokans/readinglog/internal/reading"
	"github.com/mrlokans/readinglog/internal/storage"
)

// Runtime is the loaded reading store together with the database backing
// it and the runtime settings.
type Runtime struct {
	Config *config.Config
	DB     *database.Database
	Store  *reading.Store
}

// Open connects to the database, builds the configured storage adapter and
// reloads the reading state.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	adapter, err := storage.NewAdapter(cfg.Storage, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	store := reading.NewStore(adapter,
		reading.WithLocation(cfg.Reading.Location()),
		reading.WithWriteTimeout(cfg.Storage.WriteTimeout),
	)
	state := store.Reload(ctx)
	log.Printf("Reading store: loaded %d queued, %d finished, %d sessions (backend %s)",
		len(state.TBRBooks), len(state.FinishedBooks), len(state.ReadingSessions), backendName(cfg.Storage))

	return &Runtime{Config: cfg, DB: db, Store: store}, nil
}

// Close flushes pending writes and releases the database.
func (r *Runtime) Close(ctx context.Context) error {
	var firstErr error
	if err := r.Store.Close(ctx); err != nil {
		firstErr = fmt.Errorf("flush reading state: %w", err)
	}
	if err := r.DB.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close database: %w", err)
	}
	return firstErr
}

func backendName(cfg config.Storage) string {
	if cfg.Backend == config.StorageBackendFile {
		return "file " + cfg.FilePath
	}
	return "database key " + cfg.Key
}
