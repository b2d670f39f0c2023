// internal/submission/submitter.go
package submission

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// ErrNoSubmitControl means none of the locators found a visible control.
var ErrNoSubmitControl = errors.New("no interactable submit control found")

// bottomMargin is how far above the page end the initial scroll stops.
const bottomMargin = 500

// SubmitTiming paces the submit sequence.
type SubmitTiming struct {
	ScrollSettle time.Duration
	ClickSettle  time.Duration
	// ClickTimeout bounds the native click, which waits for the node to be visible.
	ClickTimeout time.Duration
}

// controlProbe describes a candidate submit control.
type controlProbe struct {
	Found      bool   `json:"found"`
	Visible    bool   `json:"visible"`
	InViewport bool   `json:"inViewport"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Tag        string `json:"tag"`
}

// Submitter finds and activates the form's submit control.
type Submitter struct {
	page     schemas.Page
	locators []string
	timing   SubmitTiming
	logger   *zap.Logger
}

// NewSubmitter creates a submitter trying locators in order.
func NewSubmitter(page schemas.Page, locators []string, timing SubmitTiming, logger *zap.Logger) *Submitter {
	return &Submitter{page: page, locators: locators, timing: timing, logger: logger.Named("submitter")}
}

// locate returns the first locator that resolves to a visible control.
func (s *Submitter) locate(ctx context.Context) (string, controlProbe, error) {
	for _, sel := range s.locators {
		var probe controlProbe
		if err := evaluate(ctx, s.page, probeControlScript, &probe, sel); err != nil {
			s.logger.Debug("Submit locator probe failed.", zap.String("selector", sel), zap.Error(err))
			continue
		}
		if probe.Found && probe.Visible {
			return sel, probe, nil
		}
	}
	return "", controlProbe{}, ErrNoSubmitControl
}

// InvokeSubmit activates the submit control. It returns false only when no
// control was found or both the native and the scripted click failed. A true
// result says nothing about whether the portal accepted the form.
func (s *Submitter) InvokeSubmit(ctx context.Context) bool {
	if err := evaluate(ctx, s.page, scrollBottomScript, nil, bottomMargin); err != nil {
		s.logger.Debug("Failed to scroll to form end.", zap.Error(err))
	}
	if err := Pause(ctx, s.timing.ScrollSettle); err != nil {
		return false
	}

	sel, probe, err := s.locate(ctx)
	if err != nil {
		s.logger.Error("Submit button not found.", zap.Strings("locators", s.locators))
		return false
	}
	s.logger.Debug("Found submit control.",
		zap.String("selector", sel),
		zap.String("id", probe.ID),
		zap.String("name", probe.Name),
		zap.String("tag", probe.Tag),
	)

	if !probe.InViewport {
		if err := evaluate(ctx, s.page, scrollIntoViewScript, nil, sel); err != nil {
			s.logger.Debug("Failed to scroll submit control into view.", zap.Error(err))
		}
		if err := Pause(ctx, s.timing.ScrollSettle); err != nil {
			return false
		}
	}

	if err := s.click(ctx, sel); err != nil {
		s.logger.Warn("Native click failed; trying scripted click.", zap.String("selector", sel), zap.Error(err))
		var clicked bool
		if err := evaluate(ctx, s.page, jsClickScript, &clicked, sel); err != nil || !clicked {
			s.logger.Error("Scripted click failed.", zap.String("selector", sel), zap.Error(err))
			return false
		}
	}

	if err := Pause(ctx, s.timing.ClickSettle); err != nil {
		s.logger.Debug("Interrupted after submit click.", zap.Error(err))
	}
	s.logger.Info("Submit button clicked.", zap.String("selector", sel))
	return true
}

func (s *Submitter) click(ctx context.Context, sel string) error {
	if s.timing.ClickTimeout <= 0 {
		return s.page.Click(ctx, sel)
	}
	clickCtx, cancel := context.WithTimeout(ctx, s.timing.ClickTimeout)
	defer cancel()
	return s.page.Click(clickCtx, sel)
}
