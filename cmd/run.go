// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/internal/browser"
	"github.com/xkilldash9x/feedback-cli/internal/config"
	"github.com/xkilldash9x/feedback-cli/internal/metrics"
	"github.com/xkilldash9x/feedback-cli/internal/observability"
	"github.com/xkilldash9x/feedback-cli/internal/orchestrator"
)

// shutdownTimeout bounds browser shutdown after the run.
const shutdownTimeout = 15 * time.Second

// runOptions holds the flags of the run command.
type runOptions struct {
	yes             bool
	dryRun          bool
	headless        bool
	mode            string
	format          string
	output          string
	metricsTextfile string
}

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Log in and submit every configured feedback form",
		Long: `Logs in to the student portal and fills the theory, lab, mentor and
teaching & learning feedback forms listed in the configuration. Forms the
portal reports as already submitted are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg, opts); err != nil {
				return err
			}
			return runFeedback(cmd.Context(), cmd, cfg, opts, observability.GetLogger())
		},
	}

	runCmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Start without asking for confirmation.")
	runCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the planned submissions and exit without opening a browser.")
	runCmd.Flags().BoolVar(&opts.headless, "headless", false, "Run the browser without a window. (Overrides config/env)")
	runCmd.Flags().StringVar(&opts.mode, "mode", "", "Portal mode: 'production' or 'local'. (Overrides config/env)")
	runCmd.Flags().StringVarP(&opts.format, "format", "f", "", "Report format: text, json or yaml. (Overrides config/env)")
	runCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Report file path. If unset, the report is printed to stdout.")
	runCmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write run metrics to this node-exporter textfile.")

	return runCmd
}

// applyRunFlags overrides configuration values with the flags the user set.
func applyRunFlags(cmd *cobra.Command, cfg config.Interface, opts *runOptions) error {
	flags := cmd.Flags()
	if flags.Changed("headless") {
		cfg.SetBrowserHeadless(opts.headless)
	}
	if flags.Changed("mode") {
		mode := strings.ToLower(strings.TrimSpace(opts.mode))
		if mode != config.ModeProduction && mode != config.ModeLocal {
			return fmt.Errorf("invalid --mode %q: must be %s or %s", opts.mode, config.ModeProduction, config.ModeLocal)
		}
		cfg.SetPortalMode(mode)
	}
	if flags.Changed("format") {
		cfg.SetReportFormat(strings.ToLower(strings.TrimSpace(opts.format)))
	}
	if flags.Changed("output") {
		path, err := homedir.Expand(opts.output)
		if err != nil {
			return fmt.Errorf("failed to expand --output: %w", err)
		}
		cfg.SetReportOutput(path)
	}
	if flags.Changed("metrics-textfile") {
		path, err := homedir.Expand(opts.metricsTextfile)
		if err != nil {
			return fmt.Errorf("failed to expand --metrics-textfile: %w", err)
		}
		cfg.SetMetricsTextfile(path)
	}
	return nil
}

// runFeedback contains the core logic of the run command.
func runFeedback(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts *runOptions, logger *zap.Logger) error {
	out := cmd.OutOrStdout()
	items := config.BuildItems(cfg.Feedback())

	if opts.dryRun {
		printPlan(out, cfg, items)
		return nil
	}

	printBanner(out, cfg, items)
	if !opts.yes {
		ok, err := confirmStart(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Operation cancelled by user.")
			return nil
		}
	}

	if err := promptPassword(cfg, out); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(items) == 0 {
		logger.Warn("No feedback items are configured; the run will only log in and scan the portal.")
	}

	var prom *metrics.PrometheusRecorder
	recorder := metrics.Nop()
	if cfg.Metrics().Textfile != "" {
		prom = metrics.NewPrometheusRecorder()
		recorder = prom
	}

	manager, err := browser.NewManager(ctx, logger, cfg.Browser())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error during browser shutdown.", zap.Error(err))
		}
	}()

	session, err := manager.NewSession(cfg.Timing().TypeDelay)
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	defer session.Close()

	coordinator, err := orchestrator.New(session, cfg, recorder, logger)
	if err != nil {
		return err
	}

	report, runErr := coordinator.Run(ctx, items)
	if report != nil {
		if err := writeReport(out, report, cfg.Report()); err != nil {
			logger.Error("Failed to write report.", zap.Error(err))
			if runErr == nil {
				runErr = err
			}
		}
	}
	if prom != nil {
		if err := prom.WriteTextfile(cfg.Metrics().Textfile); err != nil {
			logger.Warn("Failed to write metrics.", zap.Error(err))
		} else {
			logger.Info("Metrics written.", zap.String("path", cfg.Metrics().Textfile))
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return runErr
		}
		return fmt.Errorf("feedback run failed: %w", runErr)
	}
	coordinator.Linger(ctx)
	return nil
}
