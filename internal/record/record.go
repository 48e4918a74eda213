// Package record defines the canonical translation record produced by every
// exchange-format reader and consumed by the importer.
package record

import (
	"iter"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Record is one translated string, independent of the file format it came from.
type Record struct {
	Source   string
	Target   string
	Language string
	// User is the author's username; empty means unknown.
	User string
	// Resource and Key identify the string directly when both are set.
	Resource  string
	Key       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasKey reports whether the record carries an explicit resource and key.
func (r Record) HasKey() bool {
	return r.Resource != "" && r.Key != ""
}

// SourceKey returns "resource:key", or an empty string when the record has no key.
func (r Record) SourceKey() string {
	if !r.HasKey() {
		return ""
	}
	return r.Resource + ":" + r.Key
}

const excerptRunes = 40

// Excerpt is a short single-line label for the source string.
func (r Record) Excerpt() string {
	s := strings.Join(strings.Fields(r.Source), " ")
	if utf8.RuneCountInString(s) <= excerptRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:excerptRunes-1]) + "…"
}

// Source produces records. Each call to Records starts a fresh pass.
type Source interface {
	Records() iter.Seq2[Record, error]
}

// Slice is an in-memory Source.
type Slice []Record

// Records implements Source.
func (s Slice) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for _, r := range s {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Collect drains a source, stopping at the first error.
func Collect(src Source) ([]Record, error) {
	var out []Record
	for r, err := range src.Records() {
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// SortByUpdated orders records by UpdatedAt ascending, keeping input order for ties.
func SortByUpdated(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
}
