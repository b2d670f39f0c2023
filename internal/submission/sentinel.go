// internal/submission/sentinel.go
package submission

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// Sentinel watches for the portal's already-submitted notice after a selection.
type Sentinel struct {
	page    schemas.Page
	markers MarkerSet
	logger  *zap.Logger
}

// NewSentinel creates a sentinel for page.
func NewSentinel(page schemas.Page, markers MarkerSet, logger *zap.Logger) *Sentinel {
	return &Sentinel{page: page, markers: markers, logger: logger.Named("sentinel")}
}

// SentinelWatch is one armed subscription. Dialogs that are not duplicate
// notices are accepted and the watch keeps listening until Await returns.
type SentinelWatch struct {
	sentinel    *Sentinel
	settlement  *settlement
	unsubscribe func()
}

// Arm subscribes before the action that may raise the notice, so both
// immediate and postback-delayed dialogs are seen.
func (s *Sentinel) Arm() *SentinelWatch {
	w := &SentinelWatch{sentinel: s, settlement: newSettlement()}
	w.unsubscribe = s.page.OnDialog(w.handle)
	return w
}

func (w *SentinelWatch) handle(d schemas.Dialog) {
	s := w.sentinel
	msg := d.Message()
	if !s.markers.IsDuplicate(msg) {
		s.logger.Info("Dialog is not a duplicate notice; accepting.", zap.String("message", msg))
		if err := d.Accept(); err != nil {
			s.logger.Debug("Failed to accept dialog.", zap.Error(err))
		}
		return
	}

	claimed := w.settlement.claim()
	if err := d.Dismiss(); err != nil {
		s.logger.Debug("Failed to dismiss duplicate notice.", zap.Error(err))
	}
	if claimed {
		s.logger.Info("Duplicate notice received.", zap.String("message", msg))
		w.settlement.deliver(schemas.SignalDuplicate)
	}
}

// Await reports whether a duplicate notice arrived within timeout. The
// subscription is released on every path.
func (w *SentinelWatch) Await(ctx context.Context, timeout time.Duration) bool {
	defer w.Release()
	_, ok := w.settlement.wait(ctx, timeout)
	return ok
}

// Release unsubscribes the watch. It is safe to call more than once.
func (w *SentinelWatch) Release() {
	w.unsubscribe()
}

// AwaitDuplicateSignal arms and awaits in one call, for notices expected to
// arrive after this point.
func (s *Sentinel) AwaitDuplicateSignal(ctx context.Context, timeout time.Duration) bool {
	return s.Arm().Await(ctx, timeout)
}
