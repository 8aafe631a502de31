package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/entrypoint"
)

var errNoCurrentBook = errors.New("no book is currently being read")

// bookFlags describe a book on the command line. When no title is given the
// record comes from the shelves or, failing that, from the catalog.
type bookFlags struct {
	title   string
	authors []string
	edition string
	pages   int
	cover   string
}

func (f *bookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Book title (looked up in the catalog when omitted)")
	cmd.Flags().StringSliceVar(&f.authors, "author", nil, "Author name, repeatable")
	cmd.Flags().StringVar(&f.edition, "edition", "", "Edition key")
	cmd.Flags().IntVar(&f.pages, "pages", 0, "Total number of pages")
	cmd.Flags().StringVar(&f.cover, "cover", "", "Cover image URL")
}

func (a *app) resolveBook(ctx context.Context, rt *entrypoint.Runtime, arg string, f *bookFlags) (entities.Book, error) {
	workKey := entities.CleanWorkKey(arg)
	if workKey == "" {
		return entities.Book{}, errors.New("work key is required")
	}

	if f.title != "" {
		book := entities.Book{
			WorkKey:    workKey,
			EditionKey: entities.CleanWorkKey(f.edition),
			Title:      f.title,
			Authors:    entities.NormalizeAuthors(f.authors),
			CoverURL:   f.cover,
		}
		if f.pages > 0 {
			book.TotalPages = entities.IntPtr(f.pages)
		}
		return book, nil
	}

	if book, _, found := rt.Store.Lookup(workKey); found {
		return book, nil
	}

	details, err := a.catalog(a.cfg.Catalog).Details(ctx, workKey, entities.CleanWorkKey(f.edition))
	if err != nil {
		return entities.Book{}, fmt.Errorf("failed to look up %s: %w", workKey, err)
	}
	book := details.Book()
	if f.pages > 0 {
		book.TotalPages = entities.IntPtr(f.pages)
	}
	return book, nil
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show every shelf and today's pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				printState(cmd.OutOrStdout(), rt.Store.State(), rt.Store.Today())
				return nil
			})
		},
	}
}

func (a *app) tbrCommand() *cobra.Command {
	tbr := &cobra.Command{
		Use:   "tbr",
		Short: "Manage the to-be-read shelf",
	}

	var add bookFlags
	addCmd := &cobra.Command{
		Use:   "add <work-key>",
		Short: "Queue a book, or move it to the front if already queued",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				book, err := a.resolveBook(ctx, rt, args[0], &add)
				if err != nil {
					return err
				}
				state := rt.Store.AddToTBR(book)
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s (%d to be read)\n", bookLine(book), len(state.TBRBooks))
				return nil
			})
		},
	}
	add.register(addCmd)

	removeCmd := &cobra.Command{
		Use:   "remove <work-key>",
		Short: "Take a book off the to-be-read shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				workKey := entities.CleanWorkKey(args[0])
				if rt.Store.State().ShelfOf(workKey) != entities.ShelfTBR {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not queued\n", workKey)
					return nil
				}
				state := rt.Store.RemoveFromTBR(workKey)
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%d to be read)\n", workKey, len(state.TBRBooks))
				return nil
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the to-be-read shelf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				books, _ := rt.Store.Shelf(entities.ShelfTBR)
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "#\tWORK KEY\tTITLE\tAUTHORS")
				for i, b := range books {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, b.WorkKey, b.Title, b.Authors.Line())
				}
				return tw.Flush()
			})
		},
	}

	tbr.AddCommand(addCmd, removeCmd, listCmd)
	return tbr
}

func (a *app) startCommand() *cobra.Command {
	var flags bookFlags
	cmd := &cobra.Command{
		Use:   "start <work-key>",
		Short: "Make a book the one currently being read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				book, err := a.resolveBook(ctx, rt, args[0], &flags)
				if err != nil {
					return err
				}
				state := rt.Store.SetCurrentlyReading(book)
				cr := state.CurrentlyReading
				fmt.Fprintf(cmd.OutOrStdout(), "Now reading %s  %s\n", bookLine(cr.Book), pagesLine(cr.Book))
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}
