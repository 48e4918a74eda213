package formats

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/record"
)

// TCSVHeader is the header row of a TCSV file. The Key column holds one or
// more resource:key pairs separated by ';'.
var TCSVHeader = []string{"Key", "String", "Translation", "Language", "Author", "Date/Time"}

// TCSVSimpleHeader is the header row of a TCSV-simple file, which carries a
// single key per row and no language column.
var TCSVSimpleHeader = []string{"Key", "Resource", "String", "Translation", "Comment", "Author", "Date/Time"}

// KeySeparator joins resource:key pairs in the TCSV Key column.
const KeySeparator = ";"

var tcsvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

// JoinKeys renders resource:key pairs for the TCSV Key column.
func JoinKeys(pairs []string) string {
	return strings.Join(pairs, KeySeparator)
}

type csvRows struct {
	format Format
	r      *csv.Reader
}

func newCSVRows(format Format, r io.Reader, sep rune, header []string) (*csvRows, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = len(header)
	cr.LazyQuotes = true

	head, err := cr.Read()
	if err != nil {
		return nil, errors.NewParseError(string(format), "", "missing header", err)
	}
	for i := range head {
		head[i] = strings.TrimSpace(head[i])
	}
	if !slices.Equal(head, header) {
		return nil, errors.NewParseError(string(format), "",
			fmt.Sprintf("invalid heading %q, expecting %q", head, header), nil)
	}
	return &csvRows{format: format, r: cr}, nil
}

// each calls fn for every data row with its line number.
func (c *csvRows) each(fn func(line int, row []string) error) error {
	for {
		row, err := c.r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.NewParseError(string(c.format), "", "invalid row", err)
		}
		line, _ := c.r.FieldPos(0)
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

func (c *csvRows) time(line int, value string) (time.Time, error) {
	t, ok := parseTime(tcsvTimeLayouts, value)
	if !ok {
		return time.Time{}, errors.NewParseError(string(c.format), "",
			fmt.Sprintf("line %d: invalid date %q", line, value), nil)
	}
	return t, nil
}

func parseTCSV(r io.Reader, opts Options) (record.Slice, error) {
	rows, err := newCSVRows(TCSV, r, opts.colSep(), TCSVHeader)
	if err != nil {
		return nil, err
	}

	var out record.Slice
	err = rows.each(func(line int, row []string) error {
		at, err := rows.time(line, row[5])
		if err != nil {
			return err
		}
		for _, pair := range strings.Split(row[0], KeySeparator) {
			resource, key, _ := strings.Cut(strings.TrimSpace(pair), ":")
			out = append(out, record.Record{
				Source:    row[1],
				Target:    row[2],
				Language:  row[3],
				User:      row[4],
				Resource:  resource,
				Key:       key,
				CreatedAt: at,
				UpdatedAt: at,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseTCSVSimple(r io.Reader, opts Options) (record.Slice, error) {
	if strings.TrimSpace(opts.Language) == "" {
		return nil, errors.NewValidationError("language", "", "tcsv-simple files need a target language")
	}
	rows, err := newCSVRows(TCSVSimple, r, opts.colSep(), TCSVSimpleHeader)
	if err != nil {
		return nil, err
	}

	var out record.Slice
	err = rows.each(func(line int, row []string) error {
		at, err := rows.time(line, row[6])
		if err != nil {
			return err
		}
		out = append(out, record.Record{
			Key:       row[0],
			Resource:  row[1],
			Source:    row[2],
			Target:    row[3],
			User:      row[5],
			Language:  opts.Language,
			CreatedAt: at,
			UpdatedAt: at,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
