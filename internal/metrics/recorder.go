// Package metrics records per-run submission metrics.
package metrics

import (
	"time"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// Recorder receives one observation per attempt and one per run.
type Recorder interface {
	// ObserveAttempt records the outcome of one submission attempt. An empty
	// signal means the attempt never reached the confirmation step.
	ObserveAttempt(category schemas.Category, result schemas.AttemptResult, signal schemas.ConfirmationSignal, duration time.Duration)

	// ObserveRun records the total duration of a run.
	ObserveRun(duration time.Duration)
}

// NoopRecorder discards all observations.
type NoopRecorder struct{}

// Nop returns a recorder for runs without a metrics textfile.
func Nop() Recorder {
	return NoopRecorder{}
}

func (NoopRecorder) ObserveAttempt(schemas.Category, schemas.AttemptResult, schemas.ConfirmationSignal, time.Duration) {
}

func (NoopRecorder) ObserveRun(time.Duration) {}
