// Package outcome records what the importer did with every input record.
package outcome

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies the result for one record or one matched entity.
type Kind string

const (
	// Import means a translation was created.
	Import Kind = "IMPORT"
	// Skipped means the entity already had a translation in the locale.
	Skipped Kind = "SKIPPED"
	// NotFound means no entity matched the record.
	NotFound Kind = "NOTFOUND"
	// SkippedNotConfigured means the record's locale is not enabled for the project.
	SkippedNotConfigured Kind = "SKIPPED-NOT-CONFIGURED"
	// Failed means the per-entity transaction was rolled back.
	Failed Kind = "FAILED"
)

// Kinds lists every outcome in report order.
var Kinds = []Kind{Import, Skipped, NotFound, SkippedNotConfigured, Failed}

// ParseKind converts a string into a Kind, ignoring case.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

// Row is one line of the outcome log.
type Row struct {
	Outcome     Kind
	Language    string
	SourceKey   string
	SourceLabel string
	// Entity fields are set when a record matched an entity.
	EntityLabel   string
	EntityID      int64
	TranslationID int64
	Translation   string
	Error         string
	At            time.Time
}

// Sink receives outcome rows for one import batch. Close releases the sink
// and must be called exactly once when the batch ends.
type Sink interface {
	Write(row Row) error
	Close() error
}

// Discard drops every row.
var Discard Sink = discard{}

type discard struct{}

func (discard) Write(Row) error { return nil }
func (discard) Close() error    { return nil }

type tee []Sink

// Tee writes every row to all sinks.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

func (t tee) Write(row Row) error {
	for _, s := range t {
		if err := s.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) Close() error {
	var first error
	for _, s := range t {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Scoped opens a sink, hands it to fn and closes it afterwards. A close error
// is returned only when fn succeeded.
func Scoped(open func() (Sink, error), fn func(Sink) error) (err error) {
	sink, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(sink)
}
