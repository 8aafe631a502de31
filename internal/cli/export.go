package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/readinglog/internal/entrypoint"
	"github.com/mrlokans/readinglog/internal/exporters"
	"github.com/mrlokans/readinglog/internal/scheduler"
	"github.com/mrlokans/readinglog/internal/settingsstore"
)

func (a *app) exportCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the reading log as markdown notes",
		Long: "Write the reading log as markdown notes.\n\n" +
			"Without --dir the export directory configured in settings is used and the\n" +
			"outcome is recorded as the last export status.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				var (
					result exporters.ExportResult
					err    error
				)
				if dir != "" {
					result, err = exporters.NewMarkdownExporter(dir, rt.Store.Location()).Export(rt.Store.State())
				} else {
					result, err = scheduler.NewExportScheduler(settingsstore.New(rt.DB), rt.Store, nil).Run()
				}
				if err != nil {
					return fmt.Errorf("export failed: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Exported %d finished books (%d failed), %d recent sessions\n",
					result.BooksProcessed, result.BooksFailed, result.SessionsListed)
				for _, f := range result.Files {
					fmt.Fprintf(out, "  %s\n", f)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Export directory (defaults to the configured one)")
	return cmd
}
