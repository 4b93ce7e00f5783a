package report

import (
	"io"

	"github.com/nao1215/staffscan/internal/model"
)

// Writer renders a roster in one output format.
type Writer interface {
	// Write renders the roster and returns the number of bytes written.
	Write(roster model.Roster) (int, error)
}

// MultiWriter writes the same roster to several Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the roster with every writer and stops on the first error.
func (m *MultiWriter) Write(roster model.Roster) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(roster)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// linkedInNote reports whether a record gets the "LinkedIn profile" note.
func linkedInNote(e model.Employee) bool {
	return e.IsLinkedInProfile() || containsFold(e.Source, "linkedin")
}
