// internal/submission/sentinel_test.go
package submission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

const testWindow = 60 * time.Millisecond

func TestSentinel(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("duplicate notice", func(t *testing.T) {
		page := newFakePage()
		s := NewSentinel(page, DefaultMarkers(), zaptest.NewLogger(t))

		w := s.Arm()
		d := page.raise("Feedback already submitted")
		assert.True(t, w.Await(context.Background(), testWindow))

		accepted, dismissed := d.counts()
		assert.Equal(t, 0, accepted)
		assert.Equal(t, 1, dismissed)
		assert.Equal(t, 0, page.subscribers())
	})

	t.Run("unrelated notice is accepted and the window runs out", func(t *testing.T) {
		page := newFakePage()
		s := NewSentinel(page, DefaultMarkers(), zaptest.NewLogger(t))

		w := s.Arm()
		d := page.raise("Please select a teacher")
		start := time.Now()
		assert.False(t, w.Await(context.Background(), testWindow))
		assert.GreaterOrEqual(t, time.Since(start), testWindow)

		accepted, _ := d.counts()
		assert.Equal(t, 1, accepted)
		assert.Equal(t, 0, page.subscribers())
	})

	t.Run("keeps listening after an unrelated notice", func(t *testing.T) {
		page := newFakePage()
		s := NewSentinel(page, DefaultMarkers(), zaptest.NewLogger(t))

		w := s.Arm()
		page.raise("Loading teachers")
		go func() {
			time.Sleep(10 * time.Millisecond)
			page.raise("You have already given feedback")
		}()
		assert.True(t, w.Await(context.Background(), time.Second))
	})

	t.Run("no dialog", func(t *testing.T) {
		page := newFakePage()
		s := NewSentinel(page, DefaultMarkers(), zaptest.NewLogger(t))
		assert.False(t, s.AwaitDuplicateSignal(context.Background(), testWindow))
		assert.Equal(t, 0, page.subscribers())
	})

	t.Run("canceled context", func(t *testing.T) {
		page := newFakePage()
		s := NewSentinel(page, DefaultMarkers(), zaptest.NewLogger(t))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, s.AwaitDuplicateSignal(ctx, time.Minute))
		assert.Equal(t, 0, page.subscribers())
	})

	t.Run("dialogs after the window are not claimed", func(t *testing.T) {
		page := newFakePage()
		s := NewSentinel(page, DefaultMarkers(), zaptest.NewLogger(t))
		assert.False(t, s.AwaitDuplicateSignal(context.Background(), testWindow))

		page.raise("Feedback already submitted")
		assert.Len(t, page.unclaimed, 1)
	})

	t.Run("release without await", func(t *testing.T) {
		page := newFakePage()
		s := NewSentinel(page, DefaultMarkers(), zaptest.NewLogger(t))
		w := s.Arm()
		w.Release()
		w.Release()
		assert.Equal(t, 0, page.subscribers())
	})
}
