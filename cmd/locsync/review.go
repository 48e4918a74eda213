package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/usecase"
)

type reviewFunc func(ctx context.Context, uc *usecase.Review, id int64, actor string) (*usecase.ReviewResult, error)

func newReviewCmd(use, short string, fn reviewFunc) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   use + " <translation-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if actor == "" {
				actor = appConfig.DefaultUser
			}

			dbCtx, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			res, err := fn(cmd.Context(), usecase.NewReview(dbCtx), id, actor)
			if err != nil {
				return err
			}
			printReview(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "as", "", "Username performing the review (default: default_user)")
	return cmd
}

func newApproveCmd() *cobra.Command {
	return newReviewCmd("approve", "Approve a translation",
		func(ctx context.Context, uc *usecase.Review, id int64, actor string) (*usecase.ReviewResult, error) {
			return uc.Approve(ctx, id, actor)
		})
}

func newUnapproveCmd() *cobra.Command {
	return newReviewCmd("unapprove", "Withdraw the approval of a translation",
		func(ctx context.Context, uc *usecase.Review, id int64, actor string) (*usecase.ReviewResult, error) {
			return uc.Unapprove(ctx, id, actor)
		})
}

func newRejectCmd() *cobra.Command {
	return newReviewCmd("reject", "Reject a translation",
		func(ctx context.Context, uc *usecase.Review, id int64, actor string) (*usecase.ReviewResult, error) {
			return uc.Reject(ctx, id, actor)
		})
}

func newAmendCmd() *cobra.Command {
	var text string

	cmd := newReviewCmd("amend", "Reject a translation and approve a corrected text in its place",
		func(ctx context.Context, uc *usecase.Review, id int64, actor string) (*usecase.ReviewResult, error) {
			return uc.Amend(ctx, id, text, actor)
		})
	cmd.Flags().StringVarP(&text, "text", "t", "", "Replacement text (required)")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <translation-id>",
		Short: "List all translations of the same string and locale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			dbCtx, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			history, err := usecase.NewReview(dbCtx).History(cmd.Context(), id)
			if err != nil {
				return err
			}

			cell := textColumnWidth(getTerminalWidth(), 5, 1)
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "String", "State", "Fuzzy", "Date"})
			for _, tr := range history {
				fuzzy := ""
				if tr.Fuzzy {
					fuzzy = "yes"
				}
				t.AppendRow(table.Row{tr.ID, wrapString(tr.String, cell), tr.State(), fuzzy, tr.Date.Format("2006-01-02 15:04:05")})
			}
			t.Render()
			return nil
		},
	}
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid translation id: %s", arg)
	}
	return id, nil
}

func printReview(cmd *cobra.Command, res *usecase.ReviewResult) {
	out := cmd.OutOrStdout()
	if res.Rejected != nil {
		fmt.Fprintf(out, "Translation %d: %s\n", res.Rejected.ID, res.Rejected.State())
	}
	verb := "Translation"
	if res.Created {
		verb = "Created translation"
	}
	fmt.Fprintf(out, "%s %d: %s %q\n", verb, res.Translation.ID, res.Translation.State(), res.Translation.String)
}
