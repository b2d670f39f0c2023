// internal/browser/session.go
package browser

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/browser/jsexec"
	"github.com/xkilldash9x/feedback-cli/internal/browser/stealth"
)

//go:embed js_scripts/select_option.js
var selectOptionScript string

// Session is a single chromedp tab implementing schemas.Page.
type Session struct {
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *zap.Logger
	harvester *Harvester
	dialogs   *dialogBroker
	typeDelay time.Duration
}

var _ schemas.Page = (*Session)(nil)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("browser session is closed")

func newSession(tabCtx context.Context, cancel context.CancelFunc, logger *zap.Logger, persona stealth.Persona, typeDelay time.Duration) (*Session, error) {
	s := &Session{
		ctx:       tabCtx,
		cancel:    cancel,
		logger:    logger.Named("session"),
		typeDelay: typeDelay,
	}
	s.dialogs = newDialogBroker(s.defaultDialogHandler)

	// The first Run creates the tab.
	if err := chromedp.Run(tabCtx, stealth.Apply(persona, s.logger)); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open browser tab: %w", err)
	}

	listenDialogs(tabCtx, s.dialogs, s.logger)

	s.harvester = NewHarvester(tabCtx, s.logger)
	if err := s.harvester.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start network harvester: %w", err)
	}
	return s, nil
}

// defaultDialogHandler accepts dialogs nobody subscribed to so the page is
// never left blocked.
func (s *Session) defaultDialogHandler(d schemas.Dialog) {
	s.logger.Info("Unclaimed dialog accepted.", zap.String("message", d.Message()))
	if err := d.Accept(); err != nil {
		s.logger.Debug("Failed to accept dialog.", zap.Error(err))
	}
}

// SetFallbackDialogHandler replaces the handler used when no subscription is live.
func (s *Session) SetFallbackDialogHandler(h schemas.DialogHandler) {
	if h == nil {
		h = s.defaultDialogHandler
	}
	s.dialogs.setFallback(h)
}

// run executes actions against the tab, bounded by ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.ctx.Err() != nil {
		return ErrSessionClosed
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until selector is visible or ctx expires.
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element %s did not become visible: %w", selector, err)
	}
	return nil
}

// Click dispatches a native mouse click on the first match of selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// SelectOption sets the value of a select element and fires input and change
// events, which is what triggers the portal's postbacks.
func (s *Session) SelectOption(ctx context.Context, selector, value string) error {
	expr, err := jsexec.Call(selectOptionScript, selector, value)
	if err != nil {
		return err
	}
	var problem string
	if err := s.run(ctx, chromedp.Evaluate(expr, &problem)); err != nil {
		return fmt.Errorf("failed to select %q in %s: %w", value, selector, err)
	}
	if problem != "" {
		return fmt.Errorf("failed to select %q in %s: %s", value, selector, problem)
	}
	return nil
}

// Type focuses selector and types text one key at a time.
func (s *Session) Type(ctx context.Context, selector, text string) error {
	actions := []chromedp.Action{chromedp.Focus(selector, chromedp.ByQuery)}
	if s.typeDelay <= 0 {
		actions = append(actions, chromedp.SendKeys(selector, text, chromedp.ByQuery))
	} else {
		for _, r := range text {
			actions = append(actions, chromedp.KeyEvent(string(r)), chromedp.Sleep(s.typeDelay))
		}
	}
	if err := s.run(ctx, actions...); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

// Evaluate runs expression and decodes the result into res.
func (s *Session) Evaluate(ctx context.Context, expression string, res interface{}) error {
	if err := s.run(ctx, chromedp.Evaluate(expression, res)); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// WaitNetworkIdle waits for quiet seconds without in-flight requests.
func (s *Session) WaitNetworkIdle(ctx context.Context, quiet time.Duration) error {
	return s.harvester.WaitNetworkIdle(ctx, quiet)
}

// OnDialog subscribes handler to the dialogs of this tab.
func (s *Session) OnDialog(handler schemas.DialogHandler) func() {
	return s.dialogs.subscribe(handler)
}

// NetworkFailures is the number of failed requests seen so far.
func (s *Session) NetworkFailures() int {
	return s.harvester.Failures()
}

// Close stops event collection and closes the tab.
func (s *Session) Close() {
	s.harvester.Stop()
	s.cancel()
}
