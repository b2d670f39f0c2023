// internal/browser/harvester.go
package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// noisyAssets are URL fragments whose load failures are not worth reporting.
var noisyAssets = []string{
	"fonts.googleapis.com",
	"fonts.gstatic.com",
	".css",
	".png",
	".jpg",
	".jpeg",
	".ico",
	".svg",
}

// Harvester listens to the network and runtime events of one tab. It tracks
// in-flight requests for idle detection and reports failed requests and
// uncaught page exceptions.
type Harvester struct {
	logger *zap.Logger

	sessionCtx     context.Context
	listenerCtx    context.Context
	cancelListener context.CancelFunc

	lock     sync.RWMutex
	inflight map[network.RequestID]string
	failures int

	isStarted bool
}

// NewHarvester creates a harvester bound to a tab context.
func NewHarvester(sessionCtx context.Context, logger *zap.Logger) *Harvester {
	return &Harvester{
		sessionCtx: sessionCtx,
		logger:     logger.Named("harvester"),
		inflight:   make(map[network.RequestID]string),
	}
}

// Start enables the network and runtime domains and begins listening.
func (h *Harvester) Start() error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.isStarted {
		return nil
	}

	h.listenerCtx, h.cancelListener = context.WithCancel(h.sessionCtx)
	chromedp.ListenTarget(h.listenerCtx, h.handleEvent)

	if err := chromedp.Run(h.sessionCtx, network.Enable(), runtime.Enable()); err != nil {
		h.cancelListener()
		return err
	}

	h.isStarted = true
	h.logger.Debug("Harvester started and listening for events.")
	return nil
}

// Stop detaches the listener.
func (h *Harvester) Stop() {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.cancelListener != nil {
		h.cancelListener()
		h.cancelListener = nil
	}
	h.isStarted = false
}

func (h *Harvester) handleEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		h.requestStarted(e.RequestID, e.Request.URL)
	case *network.EventLoadingFinished:
		h.requestDone(e.RequestID)
	case *network.EventLoadingFailed:
		h.requestFailed(e.RequestID, e.ErrorText, e.Canceled)
	case *runtime.EventExceptionThrown:
		if e.ExceptionDetails != nil {
			msg := e.ExceptionDetails.Text
			if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
				msg = e.ExceptionDetails.Exception.Description
			}
			h.logger.Warn("Page error.", zap.String("message", msg), zap.String("url", e.ExceptionDetails.URL))
		}
	}
}

func (h *Harvester) requestStarted(id network.RequestID, url string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.inflight[id] = url
}

func (h *Harvester) requestDone(id network.RequestID) {
	h.lock.Lock()
	defer h.lock.Unlock()
	delete(h.inflight, id)
}

func (h *Harvester) requestFailed(id network.RequestID, errorText string, canceled bool) {
	h.lock.Lock()
	url := h.inflight[id]
	delete(h.inflight, id)
	h.lock.Unlock()

	if canceled || isNoisyAsset(url) {
		return
	}
	h.lock.Lock()
	h.failures++
	h.lock.Unlock()
	h.logger.Warn("Network request failed.", zap.String("url", url), zap.String("error", errorText))
}

// Failures returns the number of reported request failures.
func (h *Harvester) Failures() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.failures
}

func isNoisyAsset(url string) bool {
	for _, fragment := range noisyAssets {
		if strings.Contains(url, fragment) {
			return true
		}
	}
	return false
}

// WaitNetworkIdle polls until no request has been in flight for quietPeriod.
func (h *Harvester) WaitNetworkIdle(ctx context.Context, quietPeriod time.Duration) error {
	if quietPeriod <= 0 {
		quietPeriod = 500 * time.Millisecond
	}
	ticker := time.NewTicker(quietPeriod / 2)
	defer ticker.Stop()

	lastActivity := time.Now()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("WaitNetworkIdle aborted due to context cancellation.", zap.Error(ctx.Err()))
			return ctx.Err()
		case <-ticker.C:
			h.lock.RLock()
			inflightCount := len(h.inflight)
			h.lock.RUnlock()

			if inflightCount > 0 {
				lastActivity = time.Now()
				h.logger.Debug("Waiting for network idle...", zap.Int("inflight_requests", inflightCount))
			} else if time.Since(lastActivity) >= quietPeriod {
				return nil
			}
		}
	}
}
