// Command generate_demo fills the configured storage slot with six finished
// books and about six months of reading sessions.
// Usage: go run ./cmd/generate_demo [-seed 42] [-days 180] [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/database"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/storage"
)

func main() {
	seed := flag.Int64("seed", 0, "random seed; 0 picks one from the clock")
	days := flag.Int("days", defaultDays, "number of days of history to generate")
	dbPath := flag.String("db", "", "path to the sqlite database (defaults to DATABASE_PATH)")
	stateFile := flag.String("state-file", "", "write a JSON state file instead of the database slot")
	flag.Parse()

	cfg := config.NewConfig()
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *stateFile != "" {
		cfg.Storage.Backend = config.StorageBackendFile
		cfg.Storage.FilePath = *stateFile
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	if *days <= 0 {
		log.Fatalf("days must be positive, got %d", *days)
	}

	loc := cfg.Reading.Location()
	today := entities.DateOf(time.Now(), loc)
	state := generate(today, *days, rand.New(rand.NewSource(*seed)), loc)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	adapter, err := storage.NewAdapter(cfg.Storage, db)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := storage.Save(ctx, adapter, state); err != nil {
		log.Fatalf("Failed to save demo state: %v", err)
	}

	pages := 0
	for _, s := range state.ReadingSessions {
		pages += s.PagesRead
	}
	log.Printf("Demo state written (seed %d): %d finished books, %d sessions, %d pages",
		*seed, len(state.FinishedBooks), len(state.ReadingSessions), pages)
}
