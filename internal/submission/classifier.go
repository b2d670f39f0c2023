// internal/submission/classifier.go
package submission

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// Classifier turns the dialog raised after a submit into a ConfirmationSignal.
type Classifier struct {
	page    schemas.Page
	markers MarkerSet
	logger  *zap.Logger

	// Secondary wait for network quiet after a timeout. It never changes the signal.
	networkIdle  time.Duration
	networkQuiet time.Duration
}

// NewClassifier creates a classifier for page.
func NewClassifier(page schemas.Page, markers MarkerSet, networkIdle, networkQuiet time.Duration, logger *zap.Logger) *Classifier {
	return &Classifier{
		page:         page,
		markers:      markers,
		logger:       logger.Named("classifier"),
		networkIdle:  networkIdle,
		networkQuiet: networkQuiet,
	}
}

// ConfirmationWatch resolves on the first dialog after arming.
type ConfirmationWatch struct {
	classifier  *Classifier
	settlement  *settlement
	unsubscribe func()
	armedAt     time.Time
}

// Arm subscribes ahead of the submit click.
func (c *Classifier) Arm() *ConfirmationWatch {
	w := &ConfirmationWatch{classifier: c, settlement: newSettlement(), armedAt: time.Now()}
	w.unsubscribe = c.page.OnDialog(w.handle)
	return w
}

func (w *ConfirmationWatch) handle(d schemas.Dialog) {
	c := w.classifier
	msg := d.Message()
	signal := c.markers.Classify(msg)
	claimed := w.settlement.claim()

	if err := Acknowledge(d, signal); err != nil {
		c.logger.Debug("Failed to acknowledge dialog.", zap.Error(err))
	}
	if !claimed {
		c.logger.Debug("Dialog arrived after confirmation settled.", zap.String("message", msg))
		return
	}

	fields := []zap.Field{zap.String("message", msg), zap.String("signal", string(signal))}
	switch signal {
	case schemas.SignalSuccess:
		c.logger.Info("Submission confirmed.", fields...)
	case schemas.SignalDuplicate:
		c.logger.Warn("Portal reports feedback already submitted.", fields...)
	case schemas.SignalError:
		c.logger.Error("Portal reported a submission error.", fields...)
	default:
		c.logger.Warn("Unrecognized confirmation dialog.", fields...)
	}
	w.settlement.deliver(signal)
}

// Await returns the signal of the first dialog, or SignalTimeout when none
// arrives within timeout. It always returns one of the five signals.
func (w *ConfirmationWatch) Await(ctx context.Context, timeout time.Duration) schemas.ConfirmationSignal {
	defer w.Release()
	c := w.classifier

	if sig, ok := w.settlement.wait(ctx, timeout); ok {
		c.logger.Debug("Confirmation received.", zap.Duration("elapsed", time.Since(w.armedAt)))
		return sig
	}
	w.Release()
	c.logger.Warn("No confirmation dialog received.", zap.Duration("timeout", timeout))

	if c.networkIdle > 0 && ctx.Err() == nil {
		idleCtx, cancel := context.WithTimeout(ctx, c.networkIdle)
		defer cancel()
		if err := c.page.WaitNetworkIdle(idleCtx, c.networkQuiet); err != nil {
			c.logger.Debug("Network still active.", zap.Error(err))
		} else {
			c.logger.Debug("Network idle detected.")
		}
	}
	return schemas.SignalTimeout
}

// Release unsubscribes the watch. It is safe to call more than once.
func (w *ConfirmationWatch) Release() {
	w.unsubscribe()
}

// Classify arms and awaits in one call.
func (c *Classifier) Classify(ctx context.Context, timeout time.Duration) schemas.ConfirmationSignal {
	return c.Arm().Await(ctx, timeout)
}
