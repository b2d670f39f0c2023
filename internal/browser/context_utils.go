// internal/browser/context_utils.go
package browser

import "context"

// CombineContext derives a context from ctx1, which carries the chromedp
// target, that is also canceled when ctx2 is done. Deadlines of ctx2 apply
// through its cancellation.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(ctx1)
	stop := context.AfterFunc(ctx2, cancel)
	return combined, func() {
		stop()
		cancel()
	}
}
