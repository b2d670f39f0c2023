// internal/orchestrator/dialogs.go
package orchestrator

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/submission"
)

// fallbackSetter is implemented by pages that route unclaimed dialogs to a
// replaceable handler.
type fallbackSetter interface {
	SetFallbackDialogHandler(schemas.DialogHandler)
}

// FallbackDialogHandler acknowledges dialogs raised while no watch is armed:
// duplicate and error notices are dismissed, anything else accepted.
func FallbackDialogHandler(markers submission.MarkerSet, logger *zap.Logger) schemas.DialogHandler {
	logger = logger.Named("dialogs")
	return func(d schemas.Dialog) {
		signal := markers.Classify(d.Message())
		fields := []zap.Field{zap.String("message", d.Message()), zap.String("signal", string(signal))}
		switch signal {
		case schemas.SignalDuplicate:
			logger.Warn("Unclaimed already-submitted notice.", fields...)
		case schemas.SignalError:
			logger.Warn("Unclaimed error dialog.", fields...)
		default:
			logger.Info("Unclaimed dialog.", fields...)
		}
		if err := submission.Acknowledge(d, signal); err != nil {
			logger.Debug("Failed to acknowledge dialog.", zap.Error(err))
		}
	}
}
