// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// Reporter writes the end-of-run report to an output.
type Reporter interface {
	// Write renders a complete run report.
	Write(report *schemas.RunReport) error
	// Close releases the underlying output (e.g., file handles).
	Close() error
}

// Formats lists the report formats New accepts.
var Formats = []string{"text", "json", "yaml"}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for format writing to outputPath. An empty path or
// "stdout" writes to standard output. Timestamps in text reports are shown in
// the named IANA timezone.
func New(format, outputPath, timezone string) (Reporter, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}

	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"
	if isStdOut {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	r, err := NewWriter(format, writer, loc)
	if err != nil && !isStdOut {
		writer.Close()
	}
	return r, err
}

// NewWriter creates a reporter that takes ownership of w.
func NewWriter(format string, w io.WriteCloser, loc *time.Location) (Reporter, error) {
	if loc == nil {
		loc = time.Local
	}
	switch format {
	case "text", "":
		return &TextReporter{w: w, loc: loc}, nil
	case "json":
		return &JSONReporter{w: w}, nil
	case "yaml":
		return &YAMLReporter{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// LoadLocation resolves an IANA timezone name. An empty name is the local zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown report timezone %q: %w", name, err)
	}
	return loc, nil
}
