// File: internal/orchestrator/coordinator.go
// Description: Runs a complete feedback session: login, portal preparation,
// one submission attempt per configured item in category order, and the
// end-of-run report.

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/config"
	"github.com/xkilldash9x/feedback-cli/internal/metrics"
	"github.com/xkilldash9x/feedback-cli/internal/submission"
)

// attempter runs one submission attempt. *submission.Flow implements it.
type attempter interface {
	Attempt(ctx context.Context, spec submission.CategorySpec, item schemas.SubmissionItem, ledger submission.Ledger) submission.Outcome
}

// Coordinator drives one run against a single page. Attempts are strictly
// sequential.
type Coordinator struct {
	page    schemas.Page
	cfg     config.Interface
	nav     *PortalNavigator
	flow    attempter
	markers submission.MarkerSet
	stats   *submission.RunStatistics
	limiter *rate.Limiter
	metrics metrics.Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a Coordinator. A nil recorder disables metrics.
func New(page schemas.Page, cfg config.Interface, recorder metrics.Recorder, logger *zap.Logger) (*Coordinator, error) {
	if page == nil || cfg == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize coordinator with nil dependencies")
	}
	if recorder == nil {
		recorder = metrics.Nop()
	}
	logger = logger.Named("coordinator")
	nav := NewPortalNavigator(page, cfg.Portal(), cfg.Timing(), logger)
	flow, err := submission.NewFlow(page, nav, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		page:    page,
		cfg:     cfg,
		nav:     nav,
		flow:    flow,
		markers: submission.NewMarkerSet(cfg.Markers()),
		stats:   submission.NewRunStatistics(),
		limiter: newPacer(cfg.Timing().BetweenItems),
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// newPacer spaces consecutive attempts by interval. The first attempt starts
// immediately.
func newPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Run logs in and attempts every item. Login failures are fatal and return
// no report. Cancellation stops the item loop; the partial report is returned
// together with the context error.
func (c *Coordinator) Run(ctx context.Context, items []schemas.SubmissionItem) (*schemas.RunReport, error) {
	report := &schemas.RunReport{
		RunID:      uuid.NewString(),
		Mode:       c.cfg.Portal().ModeName(),
		StartedAt:  c.now(),
		Configured: config.ConfiguredCounts(items),
	}
	logger := c.logger.With(zap.String("run_id", report.RunID))
	logger.Info("Feedback run starting.",
		zap.String("mode", report.Mode),
		zap.String("enrollment_no", c.cfg.Credentials().EnrollmentNo),
		zap.String("feedback_option", c.cfg.Feedback().Option),
		zap.Int("items", len(items)),
	)

	if fs, ok := c.page.(fallbackSetter); ok {
		fs.SetFallbackDialogHandler(FallbackDialogHandler(c.markers, c.logger))
	}

	if err := c.Login(ctx); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	c.verifyDashboard(ctx)
	report.UnlistedSubjects = c.unlistedSubjects(ctx, items)

	if err := c.openFeedbackOptions(ctx); err != nil {
		logger.Error("Failed to open feedback options.", zap.Error(err))
	} else {
		c.scanFeedbackLinks(ctx)
	}

	runErr := c.attemptAll(ctx, items)

	if runErr == nil {
		if err := c.nav.GoTo(ctx, config.PageDashboard); err != nil {
			logger.Warn("Failed to return to dashboard.", zap.Error(err))
		}
	}
	c.finish(report)
	logger.Info("Feedback run complete.",
		zap.Int("submitted", report.Submitted),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Int("duplicates", report.Duplicates),
		zap.Duration("duration", report.Duration),
	)
	return report, runErr
}

// attemptAll runs the items in category order, paced by the limiter.
func (c *Coordinator) attemptAll(ctx context.Context, items []schemas.SubmissionItem) error {
	for _, category := range schemas.Categories {
		queue := itemsOf(items, category)
		if len(queue) == 0 {
			continue
		}
		spec, err := submission.SpecFor(category, c.cfg.Form(), c.cfg.Timing())
		if err != nil {
			return err
		}
		c.logger.Info("Processing category.", zap.String("category", spec.Label), zap.Int("items", len(queue)))

		for i, item := range queue {
			if err := c.limiter.Wait(ctx); err != nil {
				return interrupted(ctx, err)
			}
			c.logger.Info("Attempting item.",
				zap.String("category", category.Title()),
				zap.Int("index", i+1),
				zap.Int("of", len(queue)),
				zap.String("primary", item.PrimaryLabel),
				zap.String("secondary", item.SecondaryLabel),
			)
			out := c.flow.Attempt(ctx, spec, item, c.stats)
			result := c.stats.Record(out)
			c.metrics.ObserveAttempt(category, result, out.Signal, out.Duration)
			c.logOutcome(out, result)

			if ctx.Err() != nil {
				return interrupted(ctx, ctx.Err())
			}
		}
	}
	return nil
}

func interrupted(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return fmt.Errorf("run interrupted: %w", err)
}

func (c *Coordinator) logOutcome(out submission.Outcome, result schemas.AttemptResult) {
	fields := []zap.Field{
		zap.String("item", out.Item.String()),
		zap.String("result", string(result)),
		zap.String("reason", out.Reason),
		zap.Duration("duration", out.Duration),
	}
	switch result {
	case schemas.ResultSubmitted:
		c.logger.Info("Item submitted.", fields...)
	case schemas.ResultDuplicate:
		c.logger.Warn("Item already submitted.", fields...)
	case schemas.ResultSkipped:
		c.logger.Info("Item skipped.", fields...)
	default:
		if out.NotFound {
			c.logger.Warn("Item skipped; label not offered by the portal.", fields...)
			return
		}
		c.logger.Error("Item failed.", fields...)
	}
}

func (c *Coordinator) finish(report *schemas.RunReport) {
	snap := c.stats.Snapshot()
	report.EndedAt = c.now()
	report.Duration = report.EndedAt.Sub(report.StartedAt)
	report.Submitted = snap.Submitted
	report.Failed = snap.Failed
	report.Skipped = snap.Skipped
	report.Duplicates = snap.Duplicates
	report.SkippedItems = snap.SkippedItems
	report.DuplicateItems = snap.DuplicateItems
	report.Attempts = snap.Attempts
	c.metrics.ObserveRun(report.Duration)
}

// Linger keeps the browser open for a final look before shutdown.
func (c *Coordinator) Linger(ctx context.Context) {
	d := c.cfg.Timing().Linger
	if d <= 0 {
		return
	}
	c.logger.Info("Keeping the browser open before closing.", zap.Duration("linger", d))
	if err := submission.Pause(ctx, d); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Debug("Linger interrupted.", zap.Error(err))
	}
}

func itemsOf(items []schemas.SubmissionItem, category schemas.Category) []schemas.SubmissionItem {
	var out []schemas.SubmissionItem
	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}
