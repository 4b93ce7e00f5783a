package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/staffscan/internal/model"
)

// ErrUnknownFormat is returned for output formats without a writer.
var ErrUnknownFormat = errors.New("unknown report format")

// Format is an output format.
type Format string

// Output formats.
const (
	FormatExcel    Format = "xlsx"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatTable    Format = "table"
)

// ParseFormat maps a format name or alias to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return FormatExcel, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "table", "text", "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatExcel, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".json":
		return FormatJSON, nil
	case ".txt":
		return FormatTable, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// NewWriter returns the writer for a format.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatExcel:
		return NewExcelWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatTable:
		return NewTableWriter(output), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteFile renders the roster into path, choosing the format by extension.
// Parent directories are created as needed.
func WriteFile(path string, roster model.Roster) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w, err := NewWriter(format, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(roster); err != nil {
		return fmt.Errorf("failed to write %s report: %w", format, err)
	}
	return nil
}
