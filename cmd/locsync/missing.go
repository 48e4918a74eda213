package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/report"
	"github.com/locsync/locsync/internal/usecase"
)

func newMissingCmd() *cobra.Command {
	var (
		format string
		colSep string
	)

	cmd := &cobra.Command{
		Use:   "missing <project> <locale> [single|condensed]",
		Short: "Export the strings of a project that have no translation in a locale",
		Long: "Export the strings of a project that have no translation in a locale.\n" +
			"condensed (default) merges strings with the same text into one TCSV row;\n" +
			"single writes one TCSV-simple row per string.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var modeName string
			if len(args) == 3 {
				modeName = args[2]
			}
			mode, err := report.ParseMode(modeName)
			if err != nil {
				return err
			}
			opts, err := readerOptions(colSep, "")
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

			res, err := usecase.NewMissingReport(dbCtx).Build(cmd.Context(), args[0], args[1], mode)
			if err != nil {
				return err
			}

			switch format {
			case "csv":
				return report.WriteCSV(cmd.OutOrStdout(), res.Sheet, opts.ColSep)
			case "table":
				report.WriteTable(cmd.OutOrStdout(), res.Sheet, textColumnWidth(getTerminalWidth(), len(res.Sheet.Header), 2))
				fmt.Fprintf(cmd.ErrOrStderr(), "%d missing %s strings in %s (%s)\n", res.Count, res.Locale, res.Project, res.Mode)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: csv, table)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or table")
	cmd.Flags().StringVar(&colSep, "col-sep", "", "CSV column separator (default from config, ';')")

	return cmd
}
