// Package report renders untranslated strings as fill-in sheets that the
// TCSV readers can import back.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"

	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/formats"
	"github.com/locsync/locsync/internal/normalize"
)

// Mode selects the sheet layout.
type Mode int

const (
	// ModeCondensed emits one row per distinct source string, listing every
	// resource:key that uses it.
	ModeCondensed Mode = iota
	// ModeSingle emits one row per entity.
	ModeSingle
)

// ParseMode converts a mode name. An empty name is ModeCondensed.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "condensed":
		return ModeCondensed, nil
	case "single":
		return ModeSingle, nil
	default:
		return 0, errors.NewValidationError("mode", name, "expected single or condensed")
	}
}

func (m Mode) String() string {
	switch m {
	case ModeCondensed:
		return "condensed"
	case ModeSingle:
		return "single"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Missing is an entity with no translation in the report language.
type Missing struct {
	Resource string
	Key      string
	Source   string
}

// Sheet is a rendered report: a header and rows of equal width.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// Build lays out missing strings for language in the given mode.
func Build(mode Mode, language string, missing []Missing) (Sheet, error) {
	switch mode {
	case ModeCondensed:
		return condensed(language, missing), nil
	case ModeSingle:
		return single(missing), nil
	default:
		return Sheet{}, errors.NewValidationError("mode", mode.String(), "unknown report mode")
	}
}

// condensed uses the TCSV layout, grouping entities whose source strings
// normalise to the same value.
func condensed(language string, missing []Missing) Sheet {
	type group struct {
		source string
		keys   []string
	}
	var (
		order  []string
		groups = make(map[string]*group)
	)
	for _, m := range missing {
		id := normalize.SourceString(m.Source)
		if id == "" {
			id = m.Source
		}
		g, ok := groups[id]
		if !ok {
			g = &group{source: m.Source}
			groups[id] = g
			order = append(order, id)
		}
		g.keys = append(g.keys, m.Resource+":"+m.Key)
	}

	sheet := Sheet{Header: formats.TCSVHeader}
	for _, id := range order {
		g := groups[id]
		sheet.Rows = append(sheet.Rows, []string{formats.JoinKeys(g.keys), g.source, "", language, "", ""})
	}
	return sheet
}

// single uses the TCSV-simple layout.
func single(missing []Missing) Sheet {
	sheet := Sheet{Header: formats.TCSVSimpleHeader}
	for _, m := range missing {
		sheet.Rows = append(sheet.Rows, []string{m.Key, m.Resource, m.Source, "", "", "", ""})
	}
	return sheet
}

// WriteCSV writes the sheet as delimited text.
func WriteCSV(w io.Writer, sheet Sheet, sep rune) error {
	cw := csv.NewWriter(w)
	if sep != 0 {
		cw.Comma = sep
	}
	if err := cw.Write(sheet.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(sheet.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteTable renders the sheet for a terminal. Cells wider than maxCell
// are truncated; zero disables truncation.
func WriteTable(w io.Writer, sheet Sheet, maxCell int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, 0, len(sheet.Header))
	for _, h := range sheet.Header {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for _, r := range sheet.Rows {
		row := make(table.Row, 0, len(r))
		for _, cell := range r {
			cell = strings.Join(strings.Fields(cell), " ")
			if maxCell > 0 {
				cell = runewidth.Truncate(cell, maxCell, "...")
			}
			row = append(row, cell)
		}
		t.AppendRow(row)
	}
	t.Render()
}
