package application

import (
	"context"
	"fmt"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/formats"
	"github.com/locsync/locsync/internal/logging"
	"github.com/locsync/locsync/internal/outcome"
	"github.com/locsync/locsync/internal/usecase"
)

// ImportFileInput aggregates what is needed to import one exchange file.
type ImportFileInput struct {
	Project     string
	Format      formats.Format
	Path        string
	Options     formats.Options
	DefaultUser string
	// OutcomeLog is a JSON-lines file the outcome rows are appended to.
	// Empty disables the file log.
	OutcomeLog string
	// Sink, when set, receives the rows as well. It is not closed.
	Sink outcome.Sink
}

// ImportFile parses the file and imports its records. The outcome log is
// opened for this batch only and closed before returning.
func ImportFile(ctx context.Context, dbCtx *database.Context, input ImportFileInput) (*usecase.Summary, error) {
	records, err := formats.ParseFile(input.Format, input.Path, input.Options)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug().
		Str("file", input.Path).
		Str("format", string(input.Format)).
		Int("records", len(records)).
		Msg("parsed file")

	var summary *usecase.Summary
	err = outcome.Scoped(func() (outcome.Sink, error) {
		return openSink(input)
	}, func(sink outcome.Sink) error {
		var err error
		summary, err = usecase.NewImporter(dbCtx, input.DefaultUser).Import(ctx, records, input.Project, sink)
		return err
	})
	if err != nil {
		return summary, err
	}
	return summary, nil
}

func openSink(input ImportFileInput) (outcome.Sink, error) {
	var sinks []outcome.Sink
	if input.OutcomeLog != "" {
		file, err := outcome.OpenFile(input.OutcomeLog)
		if err != nil {
			return nil, fmt.Errorf("outcome log: %w", err)
		}
		sinks = append(sinks, file)
	}
	if input.Sink != nil {
		sinks = append(sinks, unclosed{input.Sink})
	}
	switch len(sinks) {
	case 0:
		return outcome.Discard, nil
	case 1:
		return sinks[0], nil
	default:
		return outcome.Tee(sinks...), nil
	}
}

// unclosed shields a caller-owned sink from Close.
type unclosed struct {
	outcome.Sink
}

func (unclosed) Close() error { return nil }
