// internal/submission/scripts.go
package submission

import (
	"context"
	_ "embed"
	"time"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/browser/jsexec"
)

var (
	//go:embed js_scripts/read_options.js
	readOptionsScript string
	//go:embed js_scripts/rating_controls.js
	ratingControlsScript string
	//go:embed js_scripts/check_rating.js
	checkRatingScript string
	//go:embed js_scripts/probe_control.js
	probeControlScript string
	//go:embed js_scripts/scroll_into_view.js
	scrollIntoViewScript string
	//go:embed js_scripts/scroll_center.js
	scrollCenterScript string
	//go:embed js_scripts/scroll_by.js
	scrollByScript string
	//go:embed js_scripts/scroll_bottom.js
	scrollBottomScript string
	//go:embed js_scripts/js_click.js
	jsClickScript string
)

// evaluate invokes one of the embedded page functions with args.
func evaluate(ctx context.Context, page schemas.Page, script string, res interface{}, args ...interface{}) error {
	expr, err := jsexec.Call(script, args...)
	if err != nil {
		return err
	}
	return page.Evaluate(ctx, expr, res)
}

// Pause waits for d unless ctx ends first. Non-positive durations return at once.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
