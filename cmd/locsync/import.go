package main

import (
	"fmt"
	"io"
	"slices"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/locsync/locsync/internal/application"
	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/formats"
	"github.com/locsync/locsync/internal/outcome"
)

func newImportCmd() *cobra.Command {
	var (
		project     string
		language    string
		colSep      string
		outcomeLog  string
		defaultUser string
		show        []string
	)

	cmd := &cobra.Command{
		Use:   "import <format> <file>",
		Short: "Import a translation file into a project",
		Long:  fmt.Sprintf("Import a translation file into a project. Formats: %s.", formats.Names()),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formats.ParseFormat(args[0])
			if err != nil {
				return err
			}
			opts, err := readerOptions(colSep, language)
			if err != nil {
				return err
			}
			kinds, err := parseKinds(show)
			if err != nil {
				return err
			}
			if outcomeLog == "" {
				outcomeLog = appConfig.Import.OutcomeLog
			}
			if defaultUser == "" {
				defaultUser = appConfig.DefaultUser
			}

			dbCtx, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			input := application.ImportFileInput{
				Project:     project,
				Format:      format,
				Path:        args[1],
				Options:     opts,
				DefaultUser: defaultUser,
				OutcomeLog:  outcomeLog,
			}
			var rows *outcome.MemorySink
			if len(kinds) > 0 {
				rows = outcome.NewMemorySink()
				input.Sink = rows
			}

			summary, err := application.ImportFile(cmd.Context(), dbCtx, input)
			if rows != nil {
				renderOutcomeRows(cmd.OutOrStdout(), rows.Rows(), kinds, getTerminalWidth())
			}
			if summary != nil {
				outcome.RenderCounts(cmd.OutOrStdout(), summary.Outcomes)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d out of %d\n", summary.Imported, summary.Total)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project slug or name (required)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language for tcsv-simple files")
	cmd.Flags().StringVar(&colSep, "col-sep", "", "TCSV column separator (default from config, ';')")
	cmd.Flags().StringVar(&outcomeLog, "outcome-log", "", "Append outcome rows as JSON lines to this file")
	cmd.Flags().StringVar(&defaultUser, "default-user", "", "Author of records without a known user")
	cmd.Flags().StringSliceVar(&show, "show", nil, "List the rows with these outcomes, e.g. NOTFOUND,SKIPPED")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

// readerOptions merges reader flags with the configured defaults.
func readerOptions(colSep, language string) (formats.Options, error) {
	opts := formats.Options{ColSep: appConfig.ColSepRune(), Language: appConfig.Import.Language}
	if colSep != "" {
		r, size := utf8.DecodeRuneInString(colSep)
		if size != len(colSep) {
			return opts, fmt.Errorf("invalid --col-sep %q: must be a single character", colSep)
		}
		opts.ColSep = r
	}
	if language != "" {
		opts.Language = language
	}
	return opts, nil
}

func parseKinds(values []string) ([]outcome.Kind, error) {
	kinds := make([]outcome.Kind, 0, len(values))
	for _, v := range values {
		k, err := outcome.ParseKind(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --show: %w", err)
		}
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// renderOutcomeRows prints the rows whose outcome is one of kinds.
func renderOutcomeRows(w io.Writer, rows []outcome.Row, kinds []outcome.Kind, termWidth int) {
	textWidth := textColumnWidth(termWidth, 5, 2)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Outcome", "Language", "Source", "Entity", "Translation"})
	for _, r := range rows {
		if !slices.Contains(kinds, r.Outcome) {
			continue
		}
		source := r.SourceLabel
		if r.SourceKey != "" {
			source = r.SourceKey
		}
		translation := r.Translation
		if r.Error != "" {
			translation = r.Error
		}
		t.AppendRow(table.Row{r.Outcome, r.Language, wrapString(source, textWidth), r.EntityLabel, wrapString(translation, textWidth)})
	}
	if t.Length() == 0 {
		return
	}
	t.Render()
}
