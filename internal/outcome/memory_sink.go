package outcome

import (
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
)

// MemorySink keeps every row in memory.
type MemorySink struct {
	mu     sync.Mutex
	rows   []Row
	closed bool
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write implements Sink.
func (s *MemorySink) Write(row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return nil
}

// Close implements Sink.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *MemorySink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Rows returns a copy of the rows written so far.
func (s *MemorySink) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}

// Kinds returns the outcome of every row in write order.
func (s *MemorySink) Kinds() []Kind {
	rows := s.Rows()
	kinds := make([]Kind, 0, len(rows))
	for _, r := range rows {
		kinds = append(kinds, r.Outcome)
	}
	return kinds
}

// Counts tallies rows by outcome.
func (s *MemorySink) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, r := range s.Rows() {
		counts[r.Outcome]++
	}
	return counts
}

// RenderCounts writes a table of outcome counts in report order.
func RenderCounts(w io.Writer, counts map[Kind]int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Outcome", "Count"})
	total := 0
	for _, k := range Kinds {
		if counts[k] == 0 {
			continue
		}
		t.AppendRow(table.Row{string(k), counts[k]})
		total += counts[k]
	}
	t.AppendFooter(table.Row{"Total", total})
	t.Render()
}
