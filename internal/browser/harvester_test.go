// internal/browser/harvester_test.go
package browser

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestIsNoisyAsset(t *testing.T) {
	cases := map[string]bool{
		"https://fonts.googleapis.com/css?family=Roboto": true,
		"https://portal.example.edu/static/site.css":     true,
		"https://portal.example.edu/img/logo.PNG":        false,
		"https://portal.example.edu/img/logo.png":        true,
		"https://portal.example.edu/Feedback.aspx":       false,
		"":                                               false,
	}
	for url, want := range cases {
		assert.Equal(t, want, isNoisyAsset(url), url)
	}
}

func TestHarvester_RequestFailedCountsOnlyRelevantFailures(t *testing.T) {
	h := NewHarvester(context.Background(), zaptest.NewLogger(t))

	h.requestStarted("1", "https://portal.example.edu/Feedback.aspx")
	h.requestStarted("2", "https://fonts.gstatic.com/roboto.woff2")
	h.requestStarted("3", "https://portal.example.edu/api/save")

	h.requestFailed("1", "net::ERR_CONNECTION_RESET", false)
	h.requestFailed("2", "net::ERR_FAILED", false)
	h.requestFailed("3", "net::ERR_ABORTED", true)

	assert.Equal(t, 1, h.Failures())
	assert.Empty(t, h.inflight)
}

func TestHarvester_WaitNetworkIdle(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("idle immediately", func(t *testing.T) {
		h := NewHarvester(context.Background(), zaptest.NewLogger(t))
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, h.WaitNetworkIdle(ctx, 40*time.Millisecond))
	})

	t.Run("waits for in-flight request", func(t *testing.T) {
		h := NewHarvester(context.Background(), zaptest.NewLogger(t))
		h.requestStarted(network.RequestID("r1"), "https://portal.example.edu/Feedback.aspx")

		go func() {
			time.Sleep(100 * time.Millisecond)
			h.requestDone("r1")
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		start := time.Now()
		require.NoError(t, h.WaitNetworkIdle(ctx, 40*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("context expiry", func(t *testing.T) {
		h := NewHarvester(context.Background(), zaptest.NewLogger(t))
		h.requestStarted("stuck", "https://portal.example.edu/slow")

		ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
		defer cancel()
		err := h.WaitNetworkIdle(ctx, 40*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
