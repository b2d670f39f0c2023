// internal/submission/watch.go
package submission

import (
	"context"
	"sync"
	"time"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// settlement resolves a dialog wait exactly once. Either a dialog claims it
// and then delivers its signal, or the deadline claims it and later dialogs
// are left to the caller's fallback.
type settlement struct {
	mu      sync.Mutex
	settled bool
	signal  chan schemas.ConfirmationSignal
}

func newSettlement() *settlement {
	return &settlement{signal: make(chan schemas.ConfirmationSignal, 1)}
}

func (s *settlement) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return false
	}
	s.settled = true
	return true
}

func (s *settlement) deliver(sig schemas.ConfirmationSignal) {
	s.signal <- sig
}

// wait returns the delivered signal, or false when the deadline or ctx won.
func (s *settlement) wait(ctx context.Context, timeout time.Duration) (schemas.ConfirmationSignal, bool) {
	if timeout < 0 {
		timeout = 0
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case sig := <-s.signal:
		return sig, true
	case <-timer.C:
	case <-ctx.Done():
	}
	if s.claim() {
		return "", false
	}
	// A dialog claimed first; its acknowledgement is bounded, so this returns.
	return <-s.signal, true
}
