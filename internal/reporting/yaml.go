// internal/reporting/yaml.go
package reporting

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// YAMLReporter writes the report as a YAML document.
type YAMLReporter struct {
	w io.WriteCloser
}

func (r *YAMLReporter) Write(report *schemas.RunReport) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

func (r *YAMLReporter) Close() error {
	return r.w.Close()
}
