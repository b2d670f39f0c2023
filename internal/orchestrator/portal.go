// internal/orchestrator/portal.go
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/config"
	"github.com/xkilldash9x/feedback-cli/internal/submission"
)

// FeedbackLink is one entry of the feedback options page.
type FeedbackLink struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Href string `json:"href"`
}

// isTeaching reports whether the link opens the Teaching & Learning form.
func (l FeedbackLink) isTeaching() bool {
	return strings.Contains(strings.ToLower(l.Text), "teaching") || strings.Contains(strings.ToLower(l.ID), "teaching")
}

// verifyDashboard checks the landing page after login. Only the local fixture
// has a marker element; production just logs where the browser ended up.
func (c *Coordinator) verifyDashboard(ctx context.Context) {
	loc := c.nav.location(ctx)
	c.logger.Info("Reached dashboard.", zap.String("url", loc.URL), zap.String("title", loc.Title))
	if !c.cfg.Portal().IsLocal() {
		return
	}
	waitCtx, cancel := withTimeout(ctx, c.cfg.Timing().PageReady)
	defer cancel()
	if err := c.page.WaitVisible(waitCtx, c.cfg.Form().DashboardSelector); err != nil {
		c.logger.Warn("Dashboard marker did not appear.", zap.Error(err))
	}
}

// unlistedSubjects lists theory subjects the fixture offers that no item
// covers. A subject is covered when its value or text contains a configured code.
func (c *Coordinator) unlistedSubjects(ctx context.Context, items []schemas.SubmissionItem) []schemas.OptionCandidate {
	if !c.cfg.Portal().IsLocal() {
		return nil
	}
	if err := c.nav.GoTo(ctx, config.PageTheory); err != nil {
		c.logger.Warn("Could not open theory page to list subjects.", zap.Error(err))
		return nil
	}
	selector := c.cfg.Form().FixtureSubjectSelect
	waitCtx, cancel := withTimeout(ctx, c.cfg.Timing().PageReady)
	_ = c.page.WaitVisible(waitCtx, selector)
	cancel()

	options, err := submission.ReadOptions(ctx, c.page, selector)
	if err != nil {
		c.logger.Warn("Could not read theory subjects.", zap.Error(err))
		return nil
	}
	configured := config.ConfiguredSubjects(items, schemas.CategoryTheory)

	var unlisted []schemas.OptionCandidate
	for _, opt := range options {
		if strings.TrimSpace(opt.Value) == "" {
			continue
		}
		if !coveredBy(opt, configured) {
			unlisted = append(unlisted, opt)
		}
	}
	if len(unlisted) > 0 {
		c.logger.Warn("Theory subjects offered but not configured.", zap.Int("count", len(unlisted)))
	}
	return unlisted
}

func coveredBy(opt schemas.OptionCandidate, subjects []string) bool {
	value, text := strings.ToUpper(opt.Value), strings.ToUpper(opt.DisplayText)
	for _, s := range subjects {
		if strings.Contains(value, s) || strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// openFeedbackOptions brings up the page listing the feedback forms.
func (c *Coordinator) openFeedbackOptions(ctx context.Context) error {
	if !c.cfg.Portal().IsLocal() {
		return c.nav.GoTo(ctx, config.PageFeedback)
	}
	if err := c.nav.GoTo(ctx, config.PageDashboard); err != nil {
		return err
	}
	var clicked bool
	if err := evaluate(ctx, c.page, clickFirstScript, &clicked, c.cfg.Form().FixtureFeedbackLink); err != nil {
		return fmt.Errorf("failed to open feedback link: %w", err)
	}
	if !clicked {
		c.logger.Warn("Fixture feedback link not found.", zap.String("selector", c.cfg.Form().FixtureFeedbackLink))
	}
	if err := submission.Pause(ctx, c.cfg.Timing().ClickSettle); err != nil {
		return err
	}
	c.nav.ScrollTop(ctx)
	return nil
}

// scanFeedbackLinks logs the feedback links on the options page and opens the
// Teaching & Learning form once, which the portal requires before that form
// accepts submissions. Failures are logged and never stop the run.
func (c *Coordinator) scanFeedbackLinks(ctx context.Context) []FeedbackLink {
	var links []FeedbackLink
	if err := evaluate(ctx, c.page, listLinksScript, &links, c.cfg.Form().FeedbackLinkSelector); err != nil {
		c.logger.Error("Feedback link scan failed.", zap.Error(err))
		return nil
	}
	if len(links) == 0 {
		c.logger.Warn("No feedback links found on page.")
		return nil
	}
	for _, l := range links {
		c.logger.Debug("Found feedback link.", zap.String("id", l.ID), zap.String("text", l.Text), zap.String("href", l.Href))
	}

	var teaching *FeedbackLink
	for i := range links {
		if links[i].isTeaching() && links[i].ID != "" {
			teaching = &links[i]
			break
		}
	}
	if teaching == nil {
		c.logger.Warn("Teaching & Learning link not found.")
		return links
	}

	c.logger.Info("Opening Teaching & Learning link.", zap.String("text", teaching.Text))
	if err := c.page.Click(ctx, "#"+teaching.ID); err != nil {
		c.logger.Error("Failed to open Teaching & Learning link.", zap.Error(err))
		return links
	}
	if err := submission.Pause(ctx, c.cfg.Timing().LinkSettle); err != nil {
		return links
	}
	if err := c.nav.GoTo(ctx, config.PageFeedback); err != nil {
		c.logger.Error("Failed to return to feedback options.", zap.Error(err))
	}
	return links
}
