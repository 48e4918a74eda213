package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/locsync/locsync/internal/formats"
	"github.com/locsync/locsync/internal/record"
)

func newParseCmd() *cobra.Command {
	var (
		language string
		colSep   string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "parse <format> <file>",
		Short: "Show the records read from a translation file without importing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formats.ParseFormat(args[0])
			if err != nil {
				return err
			}
			opts, err := readerOptions(colSep, language)
			if err != nil {
				return err
			}
			records, err := formats.ParseFile(f, args[1], opts)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputRecordsJSON(cmd, records)
			case "table":
				outputRecordsTable(cmd, records)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language for tcsv-simple files")
	cmd.Flags().StringVar(&colSep, "col-sep", "", "TCSV column separator")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type recordOutput struct {
	Key      string `json:"key,omitempty"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Language string `json:"language"`
	User     string `json:"user,omitempty"`
	Created  string `json:"created,omitempty"`
	Updated  string `json:"updated,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func outputRecordsJSON(cmd *cobra.Command, records []record.Record) error {
	output := make([]recordOutput, 0, len(records))
	for _, r := range records {
		output = append(output, recordOutput{
			Key:      r.SourceKey(),
			Source:   r.Source,
			Target:   r.Target,
			Language: r.Language,
			User:     r.User,
			Created:  formatTime(r.CreatedAt),
			Updated:  formatTime(r.UpdatedAt),
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputRecordsTable(cmd *cobra.Command, records []record.Record) {
	cell := textColumnWidth(getTerminalWidth(), 5, 2)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Source", "Target", "Language", "User"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.SourceKey(),
			wrapString(r.Source, cell),
			wrapString(r.Target, cell),
			r.Language,
			r.User,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Records", len(records)})
	t.Render()
}
