package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const searchTimeout = 20 * time.Second

func (a *app) searchCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog for books to shelve",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query is required")
			}
			if limit < 1 || limit > 100 {
				return fmt.Errorf("limit must be between 1 and 100, got %d", limit)
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, cancel := context.WithTimeout(parent, searchTimeout)
			defer cancel()

			results, err := a.catalog(a.cfg.Catalog).Search(ctx, query, limit)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No books found for %q\n", query)
				return nil
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "WORK KEY\tTITLE\tAUTHOR\tYEAR")
			for _, r := range results {
				year := ""
				if r.FirstPublishYear > 0 {
					year = fmt.Sprint(r.FirstPublishYear)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.WorkKey, r.Title, r.Author, year)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")
	return cmd
}
