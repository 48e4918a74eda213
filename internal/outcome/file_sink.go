package outcome

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// stickyWriter keeps the first write error, which zerolog would otherwise
// hand to its global error handler and drop.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (w *stickyWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}

// JSONSink writes rows as JSON lines tagged with a batch id.
type JSONSink struct {
	log     zerolog.Logger
	out     *stickyWriter
	closer  io.Closer
	batchID string
}

// NewJSONSink writes to w. The caller keeps ownership of w.
func NewJSONSink(w io.Writer) *JSONSink {
	batchID := uuid.NewString()
	out := &stickyWriter{w: w}
	return &JSONSink{
		log:     zerolog.New(out).With().Str("batch", batchID).Logger(),
		out:     out,
		batchID: batchID,
	}
}

// OpenFile appends JSON lines to the file at path, creating it and its
// directory when missing.
func OpenFile(path string) (*JSONSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create outcome log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open outcome log: %w", err)
	}
	s := NewJSONSink(f)
	s.closer = f
	return s, nil
}

// BatchID identifies the batch in every written line.
func (s *JSONSink) BatchID() string {
	return s.batchID
}

// Write implements Sink. Once a write fails every later call returns the
// same error.
func (s *JSONSink) Write(row Row) error {
	if s.out.err != nil {
		return fmt.Errorf("write outcome log: %w", s.out.err)
	}
	ev := s.log.Log().
		Str("outcome", string(row.Outcome)).
		Str("language", row.Language).
		Str("source_label", row.SourceLabel)
	if row.SourceKey != "" {
		ev = ev.Str("source_key", row.SourceKey)
	}
	if row.EntityID != 0 {
		ev = ev.Int64("matched_entity_id", row.EntityID).Str("matched_entity_label", row.EntityLabel)
	}
	if row.TranslationID != 0 {
		ev = ev.Int64("translation_id", row.TranslationID).Str("translation", row.Translation)
	}
	if row.Error != "" {
		ev = ev.Str("error", row.Error)
	}
	if !row.At.IsZero() {
		ev = ev.Time("time", row.At)
	}
	ev.Send()
	if s.out.err != nil {
		return fmt.Errorf("write outcome log: %w", s.out.err)
	}
	return nil
}

// Close implements Sink. It reports the first write error along with the
// error of closing the file.
func (s *JSONSink) Close() error {
	var writeErr error
	if s.out.err != nil {
		writeErr = fmt.Errorf("write outcome log: %w", s.out.err)
	}
	if s.closer == nil {
		return writeErr
	}
	err := s.closer.Close()
	s.closer = nil
	return errors.Join(writeErr, err)
}
