// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/internal/browser/stealth"
	"github.com/xkilldash9x/feedback-cli/internal/config"
)

// launchTimeout bounds the liveness check after the browser process starts.
const launchTimeout = 30 * time.Second

// Manager owns the Chrome process for the duration of a run.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
}

// NewManager launches Chrome and verifies it responds.
func NewManager(ctx context.Context, logger *zap.Logger, cfg config.BrowserConfig) (*Manager, error) {
	m := &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
	}
	if err := m.launch(ctx); err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return m, nil
}

func (m *Manager) launch(ctx context.Context) error {
	m.logger.Info("Launching browser.", zap.Bool("headless", m.cfg.Headless))

	m.allocatorCtx, m.allocatorCancel = chromedp.NewExecAllocator(ctx, defaultAllocatorOptions(m.cfg)...)

	var ctxOpts []chromedp.ContextOption
	if m.cfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(m.logger.Sugar().Debugf))
	}
	m.browserCtx, m.browserCancel = chromedp.NewContext(m.allocatorCtx, ctxOpts...)

	probeCtx, cancel := context.WithTimeout(m.browserCtx, launchTimeout)
	defer cancel()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		m.browserCancel()
		m.allocatorCancel()
		return fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("Browser launched successfully and is responsive.")
	return nil
}

// NewSession opens a new tab. typeDelay paces keystrokes typed by the session.
func (m *Manager) NewSession(typeDelay time.Duration) (*Session, error) {
	tabCtx, cancel := chromedp.NewContext(m.browserCtx)
	s, err := newSession(tabCtx, cancel, m.logger, stealth.FromConfig(m.cfg), typeDelay)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Browser session opened.")
	return s, nil
}

// Shutdown closes the browser, waiting for Chrome to exit or ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down browser.")
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Cancel(m.browserCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	m.browserCancel()
	m.allocatorCancel()
	if err != nil {
		return fmt.Errorf("browser shutdown incomplete: %w", err)
	}
	return nil
}
