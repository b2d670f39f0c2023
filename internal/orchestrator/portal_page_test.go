// internal/orchestrator/portal_page_test.go
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// portalPage is a scripted portal answering the login, navigation and link
// scripts.
type portalPage struct {
	mu sync.Mutex

	fields   loginFields
	button   string
	links    []FeedbackLink
	subjects []schemas.OptionCandidate
	hasShow  bool

	navigateErr error
	evalErr     error

	fallback schemas.DialogHandler
	calls    []string
}

func newPortalPage() *portalPage {
	return &portalPage{
		fields:  loginFields{Enrollment: "#txtUser", Password: "#txtPass"},
		button:  "#btnLogin",
		hasShow: true,
	}
}

func (p *portalPage) record(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *portalPage) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *portalPage) has(call string) bool {
	for _, c := range p.callLog() {
		if c == call {
			return true
		}
	}
	return false
}

func (p *portalPage) Navigate(_ context.Context, url string) error {
	p.record("navigate:%s", url)
	return p.navigateErr
}

func (p *portalPage) WaitVisible(_ context.Context, selector string) error {
	p.record("wait:%s", selector)
	return nil
}

func (p *portalPage) Click(_ context.Context, selector string) error {
	p.record("click:%s", selector)
	return nil
}

func (p *portalPage) SelectOption(_ context.Context, selector, value string) error {
	p.record("select:%s=%s", selector, value)
	return nil
}

func (p *portalPage) Type(_ context.Context, selector, text string) error {
	p.record("type:%s=%s", selector, text)
	return nil
}

func (p *portalPage) WaitNetworkIdle(context.Context, time.Duration) error {
	p.record("idle")
	return nil
}

func (p *portalPage) OnDialog(schemas.DialogHandler) func() { return func() {} }

func (p *portalPage) SetFallbackDialogHandler(h schemas.DialogHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fallback = h
}

func isCall(expr, script string) bool {
	return strings.HasPrefix(expr, "("+strings.TrimSpace(script))
}

func (p *portalPage) Evaluate(_ context.Context, expr string, res interface{}) error {
	if p.evalErr != nil {
		return p.evalErr
	}
	var result interface{}
	switch {
	case isCall(expr, findLoginFieldsScript):
		p.record("find-fields")
		result = p.fields
	case isCall(expr, findLoginButtonScript):
		p.record("find-button")
		result = p.button
	case isCall(expr, showPageScript):
		p.record("show:%s", lastArg(expr))
		result = p.hasShow
	case isCall(expr, listLinksScript):
		p.record("links")
		result = p.links
	case isCall(expr, clickFirstScript):
		p.record("click-first:%s", lastArg(expr))
		result = true
	case isCall(expr, scrollTopScript):
		result = true
	case isCall(expr, currentLocationScript):
		result = pageLocation{URL: "https://portal.test/index.aspx", Title: "Dashboard"}
	case p.subjects != nil:
		p.record("options:%s", lastArg(expr))
		result = map[string]interface{}{"found": true, "options": p.subjects}
	default:
		return fmt.Errorf("unexpected script: %.40s", expr)
	}
	if res == nil {
		return nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, res)
}

// lastArg returns the single string argument of a rendered call, or "".
func lastArg(expr string) string {
	open := strings.LastIndex(expr, ")(")
	if open < 0 {
		return ""
	}
	var arg string
	if err := json.Unmarshal([]byte(strings.TrimSuffix(expr[open+2:], ")")), &arg); err != nil {
		return ""
	}
	return arg
}
