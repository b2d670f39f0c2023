// internal/orchestrator/login.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/internal/config"
	"github.com/xkilldash9x/feedback-cli/internal/submission"
)

var (
	// ErrLoginFieldsNotFound means the login page has no enrollment or password input.
	ErrLoginFieldsNotFound = errors.New("login form fields not found on page")
	// ErrLoginButtonNotFound means the login page has no recognizable login button.
	ErrLoginButtonNotFound = errors.New("login button not found on page")
)

type loginFields struct {
	Enrollment string `json:"enrollment"`
	Password   string `json:"password"`
}

// Login signs in with the configured credentials. Any error is fatal to the run.
func (c *Coordinator) Login(ctx context.Context) error {
	portal := c.cfg.Portal()
	timing := c.cfg.Timing()
	creds := c.cfg.Credentials()

	url, err := portal.LoginURL()
	if err != nil {
		return err
	}
	c.logger.Info("Opening login page.", zap.String("url", url))
	navCtx, cancel := withTimeout(ctx, timing.Navigation)
	err = c.page.Navigate(navCtx, url)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	if err := submission.Pause(ctx, timing.LoginSettle); err != nil {
		return err
	}

	var fields loginFields
	if err := evaluate(ctx, c.page, findLoginFieldsScript, &fields); err != nil {
		return fmt.Errorf("failed to inspect login page: %w", err)
	}
	if fields.Enrollment == "" || fields.Password == "" {
		return ErrLoginFieldsNotFound
	}
	c.logger.Debug("Found login fields.", zap.String("enrollment_field", fields.Enrollment), zap.String("password_field", fields.Password))

	c.logger.Info("Entering credentials.", zap.String("enrollment_no", creds.EnrollmentNo))
	if err := c.page.Type(ctx, fields.Enrollment, creds.EnrollmentNo); err != nil {
		return fmt.Errorf("failed to enter enrollment number: %w", err)
	}
	if err := c.page.Type(ctx, fields.Password, creds.Password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}

	var button string
	if err := evaluate(ctx, c.page, findLoginButtonScript, &button); err != nil {
		return fmt.Errorf("failed to inspect login page: %w", err)
	}
	if button == "" {
		return ErrLoginButtonNotFound
	}
	c.logger.Debug("Found login button.", zap.String("selector", button))

	if err := c.page.Click(ctx, button); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}

	if portal.IsLocal() {
		if err := submission.Pause(ctx, timing.ClickSettle); err != nil {
			return err
		}
		if err := c.nav.GoTo(ctx, config.PageDashboard); err != nil {
			return fmt.Errorf("failed to open dashboard: %w", err)
		}
	} else {
		waitCtx, cancel := withTimeout(ctx, timing.Navigation)
		err := c.page.WaitNetworkIdle(waitCtx, timing.NetworkQuiet)
		cancel()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			c.logger.Warn("Navigation after login did not settle; continuing.", zap.Error(err))
		}
		if err := submission.Pause(ctx, timing.LoginSettle); err != nil {
			return err
		}
	}
	c.nav.ScrollTop(ctx)
	c.logger.Info("Login successful.")
	return nil
}
