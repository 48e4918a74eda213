// Package formats reads translation exchange files into canonical records.
package formats

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/record"
)

// Format names a supported file format.
type Format string

const (
	TMX        Format = "tmx"
	TXML       Format = "txml"
	XLIFF      Format = "xliff"
	TCSV       Format = "tcsv"
	TCSVSimple Format = "tcsv-simple"
)

// All lists the supported formats.
var All = []Format{TMX, TXML, XLIFF, TCSV, TCSVSimple}

// ParseFormat converts a name into a Format, case-insensitively.
func ParseFormat(name string) (Format, error) {
	for _, f := range All {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	return "", errors.NewValidationError("format", name, fmt.Sprintf("unknown format; available: %s", Names()))
}

// Names returns the format names joined for help text.
func Names() string {
	names := make([]string, 0, len(All))
	for _, f := range All {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// Options tune the readers that need them.
type Options struct {
	// ColSep is the TCSV column separator. Zero means ';'.
	ColSep rune
	// Language is the target language of TCSV-simple files.
	Language string
}

func (o Options) colSep() rune {
	if o.ColSep == 0 {
		return ';'
	}
	return o.ColSep
}

// ParseFile reads the file at path.
func ParseFile(format Format, path string, opts Options) (record.Slice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := Parse(format, f, opts)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) && pe.File == "" {
			pe.File = path
		}
		return nil, err
	}
	return records, nil
}

// Parse reads one document from r.
func Parse(format Format, r io.Reader, opts Options) (record.Slice, error) {
	r = decodeBOM(r)
	switch format {
	case TMX:
		return parseTMX(r)
	case TXML:
		return parseTXML(r)
	case XLIFF:
		return parseXLIFF(r)
	case TCSV:
		return parseTCSV(r, opts)
	case TCSVSimple:
		return parseTCSVSimple(r, opts)
	default:
		return nil, errors.NewValidationError("format", string(format), "unknown format")
	}
}

// decodeBOM transcodes UTF-16 input with a byte order mark to UTF-8 and
// drops a UTF-8 byte order mark.
func decodeBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// charsetReader lets encoding/xml read documents declaring a non UTF-8
// charset. Input is already UTF-8 when the declaration names UTF-16, since
// decodeBOM transcoded it.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	if strings.HasPrefix(strings.ToLower(label), "utf-16") {
		return input, nil
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func parseTime(layouts []string, value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
