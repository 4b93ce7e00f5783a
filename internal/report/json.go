package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/staffscan/internal/model"
)

// JSONWriter outputs rosters as JSON. The output has an "employees" array
// and can be read back as a record file.
//
// Design decision: the employee objects use the same keys as record files
// (first_name, last_name, company_name), so a JSON report can be fed to
// 'staffscan merge' or 'staffscan run --records' without conversion.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the roster.
func (w *JSONWriter) Write(roster model.Roster) (int, error) {
	if roster.Employees == nil {
		roster.Employees = []model.Employee{}
	}
	return w.writeJSON(roster)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
