// internal/orchestrator/navigation.go
package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/config"
	"github.com/xkilldash9x/feedback-cli/internal/submission"
)

// PortalNavigator opens named portal pages. In production it loads the page
// URL; against the local fixture it calls the fixture's showPage function.
type PortalNavigator struct {
	page   schemas.Page
	portal config.PortalConfig
	timing config.TimingConfig
	logger *zap.Logger
}

var _ submission.Navigator = (*PortalNavigator)(nil)

// NewPortalNavigator returns a navigator for page.
func NewPortalNavigator(page schemas.Page, portal config.PortalConfig, timing config.TimingConfig, logger *zap.Logger) *PortalNavigator {
	return &PortalNavigator{
		page:   page,
		portal: portal,
		timing: timing,
		logger: logger.Named("navigator"),
	}
}

// GoTo opens the page called name and scrolls to the top.
func (n *PortalNavigator) GoTo(ctx context.Context, name string) error {
	if n.portal.IsLocal() {
		var shown bool
		if err := evaluate(ctx, n.page, showPageScript, &shown, name); err != nil {
			return fmt.Errorf("failed to show fixture page %s: %w", name, err)
		}
		if !shown {
			n.logger.Warn("Fixture has no showPage function.", zap.String("page", name))
		}
		if err := submission.Pause(ctx, n.timing.LocalPageSettle); err != nil {
			return err
		}
	} else {
		url, err := n.portal.PageURL(name)
		if err != nil {
			return err
		}
		n.logger.Debug("Opening portal page.", zap.String("page", name), zap.String("url", url))
		navCtx, cancel := withTimeout(ctx, n.timing.Navigation)
		defer cancel()
		if err := n.page.Navigate(navCtx, url); err != nil {
			return fmt.Errorf("failed to open %s: %w", name, err)
		}
	}
	n.ScrollTop(ctx)
	return nil
}

// ScrollTop scrolls the window to the top. Failures are only logged.
func (n *PortalNavigator) ScrollTop(ctx context.Context) {
	if err := evaluate(ctx, n.page, scrollTopScript, nil); err != nil {
		n.logger.Debug("Failed to scroll to top.", zap.Error(err))
	}
}

// pageLocation describes the document currently loaded.
type pageLocation struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (n *PortalNavigator) location(ctx context.Context) pageLocation {
	var loc pageLocation
	if err := evaluate(ctx, n.page, currentLocationScript, &loc); err != nil {
		n.logger.Debug("Failed to read page location.", zap.Error(err))
	}
	return loc
}
