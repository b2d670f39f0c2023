package schemas

import (
	"context"
	"time"
)

// -- Browser Driver Interfaces --

// Dialog is a blocking in-page notification (alert, confirm, prompt). It must
// be acknowledged exactly once before the page can continue.
type Dialog interface {
	// Message returns the text shown to the user.
	Message() string
	// Accept confirms the dialog.
	Accept() error
	// Dismiss cancels the dialog.
	Dismiss() error
}

// DialogHandler receives dialogs delivered to a subscription.
type DialogHandler func(Dialog)

// Page is the single browser tab a run drives. Every blocking operation takes
// a context and honours its deadline.
type Page interface {
	// Navigate loads url and waits for the document to load.
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until the element matching selector is rendered.
	WaitVisible(ctx context.Context, selector string) error
	// Click performs a native mouse click on the element matching selector.
	Click(ctx context.Context, selector string) error
	// SelectOption sets a <select> value and fires its change event.
	SelectOption(ctx context.Context, selector, value string) error
	// Type focuses the element and sends text as key events.
	Type(ctx context.Context, selector, text string) error
	// Evaluate runs expression in the page and decodes its result into res.
	// A nil res discards the result.
	Evaluate(ctx context.Context, expression string, res interface{}) error
	// WaitNetworkIdle returns once no request has been in flight for quiet.
	WaitNetworkIdle(ctx context.Context, quiet time.Duration) error
	// OnDialog subscribes handler to dialogs. The newest subscription receives
	// each dialog exclusively. The returned function is idempotent.
	OnDialog(handler DialogHandler) (unsubscribe func())
}
