// Package cli implements the readinglog command line.
//
// Every command except serve opens the configured storage, reloads the
// reading state, performs one operation and flushes before exiting.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/entrypoint"
	"github.com/mrlokans/readinglog/internal/metadata"
)

var errNotSaved = errors.New("reading state was not saved")

// catalogClient is the part of the catalog the commands use.
type catalogClient interface {
	Search(ctx context.Context, query string, limit int) ([]metadata.SearchResult, error)
	Details(ctx context.Context, workKey, editionKey string) (*metadata.Details, error)
}

type app struct {
	version string
	commit  string
	cfg     *config.Config

	open    func(ctx context.Context, cfg *config.Config) (*entrypoint.Runtime, error)
	catalog func(cfg config.Catalog) catalogClient
	serve   func(cfg *config.Config, version string)

	// global flags
	dbPath    string
	stateFile string
	timezone  string
}

func newApp(cfg *config.Config, version, commit string) *app {
	return &app{
		version: version,
		commit:  commit,
		cfg:     cfg,
		open:    entrypoint.Open,
		catalog: func(c config.Catalog) catalogClient { return metadata.NewOpenLibraryClient(c) },
		serve:   entrypoint.Run,
	}
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the HTTP server.
func NewRootCommand(version, commit string) *cobra.Command {
	return newApp(config.NewConfig(), version, commit).rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "readinglog",
		Short:         "Track the books you want to read, are reading and have finished",
		Version:       fmt.Sprintf("%s (%s)", a.version, a.commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.applyFlags()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.serve(a.cfg, a.version)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.dbPath, "db", "", "Path to the sqlite database (overrides DATABASE_PATH)")
	flags.StringVar(&a.stateFile, "state-file", "", "Keep the reading state in this JSON file instead of the database")
	flags.StringVar(&a.timezone, "timezone", "", "IANA timezone that decides what today is (overrides READING_TIMEZONE)")

	root.AddCommand(
		a.serveCommand(),
		a.statusCommand(),
		a.searchCommand(),
		a.tbrCommand(),
		a.startCommand(),
		a.progressCommand(),
		a.finishCommand(),
		a.sessionCommand(),
		a.statsCommand(),
		a.exportCommand(),
	)
	return root
}

func (a *app) applyFlags() error {
	if a.dbPath != "" {
		a.cfg.Database.Path = a.dbPath
	}
	if a.stateFile != "" {
		a.cfg.Storage.Backend = config.StorageBackendFile
		a.cfg.Storage.FilePath = a.stateFile
	}
	if a.timezone != "" {
		if _, err := time.LoadLocation(a.timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", a.timezone, err)
		}
		a.cfg.Reading.Timezone = a.timezone
	}
	return nil
}

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default if no command given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.serve(a.cfg, a.version)
			return nil
		},
	}
}

// withRuntime opens the store, runs fn and flushes, reporting the first error.
// A write the background writer dropped while fn ran also fails the command.
func (a *app) withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *entrypoint.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := a.open(ctx, a.cfg)
	if err != nil {
		return err
	}
	before := rt.Store.WriterStatus()

	runErr := fn(ctx, rt)
	if err := rt.Close(ctx); err != nil && runErr == nil {
		runErr = err
	}
	if after := rt.Store.WriterStatus(); after.Failed > before.Failed && runErr == nil {
		runErr = fmt.Errorf("%w: %s", errNotSaved, after.LastError)
	}
	return runErr
}
