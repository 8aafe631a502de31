package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/entrypoint"
	"github.com/mrlokans/readinglog/internal/reading"
)

func parsePages(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid page count %q", arg)
	}
	if n < 0 {
		return 0, fmt.Errorf("page count cannot be negative: %d", n)
	}
	return n, nil
}

func (a *app) progressCommand() *cobra.Command {
	var total int
	cmd := &cobra.Command{
		Use:   "progress <page>",
		Short: "Move the current book to a page; pages gained count toward today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := parsePages(args[0])
			if err != nil {
				return err
			}
			update := reading.ProgressUpdate{CurrentPage: entities.IntPtr(page)}
			if cmd.Flags().Changed("total") {
				if total < 0 {
					return fmt.Errorf("page count cannot be negative: %d", total)
				}
				update.TotalPages = entities.IntPtr(total)
			}

			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				if rt.Store.State().CurrentlyReading == nil {
					return errNoCurrentBook
				}
				before := rt.Store.State().CurrentlyReading.CurrentPage
				state := rt.Store.UpdateProgress(update)
				cr := state.CurrentlyReading
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s", bookLine(cr.Book), pagesLine(cr.Book))
				if gained := cr.CurrentPage - before; gained > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  (+%d today)", gained)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&total, "total", 0, "Correct the total page count")
	return cmd
}

func (a *app) finishCommand() *cobra.Command {
	var (
		rating float64
		notes  string
	)
	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Move the current book to the finished shelf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := reading.FinishInput{Notes: notes}
			if cmd.Flags().Changed("rating") {
				input.Rating = &rating
			}

			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				if rt.Store.State().CurrentlyReading == nil {
					return errNoCurrentBook
				}
				state := rt.Store.FinishCurrentBook(input)
				fmt.Fprintf(cmd.OutOrStdout(), "Finished %s (%d books finished)\n",
					bookLine(state.FinishedBooks[0].Book), len(state.FinishedBooks))
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&rating, "rating", 0, "Rating, for example 4.5")
	cmd.Flags().StringVar(&notes, "notes", "", "Closing notes")
	return cmd
}

func (a *app) sessionCommand() *cobra.Command {
	var (
		workKey string
		date    string
	)
	cmd := &cobra.Command{
		Use:   "session <pages>",
		Short: "Log pages read without moving the current page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := parsePages(args[0])
			if err != nil {
				return err
			}
			if pages == 0 {
				return errors.New("page count must be positive")
			}
			input := reading.SessionInput{WorkKey: entities.CleanWorkKey(workKey), PagesRead: pages}
			if date != "" {
				if input.Date, err = entities.ParseDate(date); err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
			}

			return a.withRuntime(cmd, func(ctx context.Context, rt *entrypoint.Runtime) error {
				if input.WorkKey == "" {
					cr := rt.Store.State().CurrentlyReading
					if cr == nil {
						return fmt.Errorf("%w; pass --book", errNoCurrentBook)
					}
					input.WorkKey = cr.WorkKey
				}
				if input.Date.IsZero() {
					input.Date = rt.Store.Today()
				}
				rt.Store.AddReadingSession(input)
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %d pages of %s on %s\n", pages, input.WorkKey, input.Date)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&workKey, "book", "", "Work key of the book (defaults to the current book)")
	cmd.Flags().StringVar(&date, "date", "", "Day of the session as YYYY-MM-DD (defaults to today)")
	return cmd
}
