package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/usecase"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <project>",
		Short: "Show translated and approved counts per locale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			stats, err := usecase.NewStats(dbCtx).Project(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.SetTitle(fmt.Sprintf("%s (%d strings)", stats.Project.Name, stats.Entities))
			t.AppendHeader(table.Row{"Locale", "Name", "Translated", "Approved", "Missing", "Check"})
			for _, l := range stats.Locales {
				check := "ok"
				if !l.Consistent() {
					check = fmt.Sprintf("drift (%d pairs)", l.RecountPairs)
				}
				// counters include translations of obsolete strings
				missing := max(int64(stats.Entities)-l.TranslatedStrings-l.ApprovedStrings, 0)
				t.AppendRow(table.Row{l.LocaleCode, l.LocaleName, l.TranslatedStrings, l.ApprovedStrings, missing, check})
			}
			t.AppendFooter(table.Row{"", "Total", stats.Project.TranslatedStrings, stats.Project.ApprovedStrings, "", ""})
			t.Render()
			return nil
		},
	}
	return cmd
}
