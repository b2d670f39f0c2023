// internal/submission/classifier_test.go
package submission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

func TestClassifier_EverySignal(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name          string
		message       string // empty means no dialog
		want          schemas.ConfirmationSignal
		wantDismissed bool
	}{
		{"duplicate wins over submitted", "Feedback already submitted", schemas.SignalDuplicate, true},
		{"already given", "Feedback already given for this teacher", schemas.SignalDuplicate, true},
		{"success", "Data Submitted Successfully", schemas.SignalSuccess, false},
		{"submitted", "Your response has been submitted", schemas.SignalSuccess, false},
		{"error", "Error saving response", schemas.SignalError, true},
		{"failed", "Request failed, try later", schemas.SignalError, true},
		{"unknown", "Session will expire soon", schemas.SignalUnknown, false},
		{"blank message", " ", schemas.SignalUnknown, false},
		{"timeout", "", schemas.SignalTimeout, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage()
			c := NewClassifier(page, DefaultMarkers(), 20*time.Millisecond, 5*time.Millisecond, zaptest.NewLogger(t))

			w := c.Arm()
			var d *fakeDialog
			if tt.message != "" {
				d = page.raise(tt.message)
			}
			got := w.Await(context.Background(), testWindow)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, 0, page.subscribers())
			if d != nil {
				accepted, dismissed := d.counts()
				assert.Equal(t, tt.wantDismissed, dismissed == 1)
				assert.Equal(t, !tt.wantDismissed, accepted == 1)
			}
			assert.Equal(t, tt.want == schemas.SignalTimeout, page.called("idle"),
				"network idle is only consulted after a timeout")
		})
	}
}

func TestClassifier_FirstDialogWins(t *testing.T) {
	page := newFakePage()
	c := NewClassifier(page, DefaultMarkers(), 0, 0, zaptest.NewLogger(t))

	w := c.Arm()
	page.raise("Data submitted successfully")
	second := page.raise("Error: duplicate postback")
	assert.Equal(t, schemas.SignalSuccess, w.Await(context.Background(), testWindow))

	_, dismissed := second.counts()
	assert.Equal(t, 1, dismissed, "later dialogs are still acknowledged")
}

func TestClassifier_DelayedDialog(t *testing.T) {
	defer goleak.VerifyNone(t)

	page := newFakePage()
	c := NewClassifier(page, DefaultMarkers(), 0, 0, zaptest.NewLogger(t))

	w := c.Arm()
	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(15 * time.Millisecond)
		page.raise("Submitted successfully")
	}()
	assert.Equal(t, schemas.SignalSuccess, w.Await(context.Background(), time.Second))
	<-done
}

func TestClassifier_RaceAtDeadline(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Whichever side wins, the result is exactly one defined signal and the
	// dialog is acknowledged exactly once.
	for i := 0; i < 25; i++ {
		page := newFakePage()
		c := NewClassifier(page, DefaultMarkers(), 0, 0, zaptest.NewLogger(t))
		w := c.Arm()

		dialogs := make(chan *fakeDialog, 1)
		go func() {
			time.Sleep(5 * time.Millisecond)
			dialogs <- page.raise("Success")
		}()
		got := w.Await(context.Background(), 5*time.Millisecond)
		d := <-dialogs

		assert.Contains(t, []schemas.ConfirmationSignal{schemas.SignalSuccess, schemas.SignalTimeout}, got)
		accepted, dismissed := d.counts()
		assert.Equal(t, 1, accepted+dismissed)
	}
}

func TestClassifier_Classify(t *testing.T) {
	page := newFakePage()
	c := NewClassifier(page, DefaultMarkers(), 0, 0, zaptest.NewLogger(t))
	assert.Equal(t, schemas.SignalTimeout, c.Classify(context.Background(), 10*time.Millisecond))
	assert.False(t, page.called("idle"), "a zero network wait skips the idle check")
}
