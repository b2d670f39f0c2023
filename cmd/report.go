// File: cmd/report.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/config"
	"github.com/xkilldash9x/feedback-cli/internal/observability"
	"github.com/xkilldash9x/feedback-cli/internal/reporting"
)

// newReportCmd creates and configures the `report` command.
func newReportCmd() *cobra.Command {
	var inputPath, outputPath, format, timezone string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render a saved JSON run report",
		Long: `Reads a report written by 'run --format json' and renders it again in the
requested format, for example as the human readable text summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			rc := cfg.Report()
			rc.Format = strings.ToLower(strings.TrimSpace(format))
			rc.Output = ""
			if cmd.Flags().Changed("output") {
				if rc.Output, err = homedir.Expand(outputPath); err != nil {
					return fmt.Errorf("failed to expand --output: %w", err)
				}
			}
			if cmd.Flags().Changed("timezone") {
				rc.Timezone = timezone
			}
			return runReport(cmd.OutOrStdout(), inputPath, rc, observability.GetLogger())
		},
	}

	reportCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path of the saved JSON report (required)")
	_ = reportCmd.MarkFlagRequired("input")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. If unset, the report is printed to stdout.")
	reportCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml.")
	reportCmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for text timestamps. (Overrides config/env)")

	return reportCmd
}

// runReport contains the core, testable logic of the report command.
func runReport(stdout io.Writer, inputPath string, rc config.ReportConfig, logger *zap.Logger) error {
	path, err := homedir.Expand(inputPath)
	if err != nil {
		return fmt.Errorf("failed to expand --input: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	report, err := reporting.ReadJSON(f)
	if err != nil {
		return err
	}
	logger.Debug("Loaded saved report.", zap.String("path", path), zap.String("run_id", report.RunID))
	return writeReport(stdout, report, rc)
}

// writeReport renders report per rc. Reports without an output path go to
// stdout.
func writeReport(stdout io.Writer, report *schemas.RunReport, rc config.ReportConfig) (err error) {
	var reporter reporting.Reporter
	if rc.Output == "" || rc.Output == "stdout" {
		loc, lerr := reporting.LoadLocation(rc.Timezone)
		if lerr != nil {
			return lerr
		}
		reporter, err = reporting.NewWriter(rc.Format, nopCloser{stdout}, loc)
	} else {
		reporter, err = reporting.New(rc.Format, rc.Output, rc.Timezone)
	}
	if err != nil {
		return fmt.Errorf("failed to create reporter: %w", err)
	}
	defer func() {
		if cerr := reporter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close reporter: %w", cerr)
		}
	}()

	if err := reporter.Write(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if rc.Output != "" && rc.Output != "stdout" {
		observability.GetLogger().Info("Report written.", zap.String("path", rc.Output), zap.String("format", rc.Format))
	}
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
