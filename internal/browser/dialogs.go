// internal/browser/dialogs.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// dialogAckTimeout bounds the CDP call that closes a dialog.
const dialogAckTimeout = 5 * time.Second

// dialogBroker routes JavaScript dialogs to subscribers. Each dialog goes to
// exactly one receiver: the newest live subscription, or the fallback handler
// when nobody is listening.
type dialogBroker struct {
	mu       sync.Mutex
	nextID   uint64
	subs     []subscription
	fallback schemas.DialogHandler
}

type subscription struct {
	id      uint64
	handler schemas.DialogHandler
}

func newDialogBroker(fallback schemas.DialogHandler) *dialogBroker {
	return &dialogBroker{fallback: fallback}
}

// subscribe registers handler and returns an idempotent unsubscribe func.
func (b *dialogBroker) subscribe(handler schemas.DialogHandler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *dialogBroker) setFallback(handler schemas.DialogHandler) {
	b.mu.Lock()
	b.fallback = handler
	b.mu.Unlock()
}

// dispatch delivers d to one receiver. The handler runs without the lock held
// so it may unsubscribe itself.
func (b *dialogBroker) dispatch(d schemas.Dialog) {
	b.mu.Lock()
	handler := b.fallback
	if n := len(b.subs); n > 0 {
		handler = b.subs[n-1].handler
	}
	b.mu.Unlock()

	if handler == nil {
		_ = d.Accept()
		return
	}
	handler(d)
}

func (b *dialogBroker) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// cdpDialog is a dialog open in a chromedp tab.
type cdpDialog struct {
	tabCtx  context.Context
	message string
	kind    page.DialogType

	once sync.Once
	err  error
}

func (d *cdpDialog) Message() string { return d.message }

func (d *cdpDialog) Accept() error { return d.handle(true) }

func (d *cdpDialog) Dismiss() error { return d.handle(false) }

// handle closes the dialog once; later calls return the first result.
func (d *cdpDialog) handle(accept bool) error {
	d.once.Do(func() {
		ctx, cancel := context.WithTimeout(d.tabCtx, dialogAckTimeout)
		defer cancel()
		if err := chromedp.Run(ctx, page.HandleJavaScriptDialog(accept)); err != nil {
			d.err = fmt.Errorf("failed to handle %s dialog: %w", d.kind, err)
		}
	})
	return d.err
}

// listenDialogs forwards dialog events of the tab to the broker. Dispatch
// happens on its own goroutine because handlers call back into the tab.
func listenDialogs(tabCtx context.Context, broker *dialogBroker, logger *zap.Logger) {
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		e, ok := ev.(*page.EventJavascriptDialogOpening)
		if !ok {
			return
		}
		logger.Debug("Dialog opened.", zap.String("type", string(e.Type)), zap.String("message", e.Message))
		d := &cdpDialog{tabCtx: tabCtx, message: e.Message, kind: e.Type}
		go broker.dispatch(d)
	})
}
