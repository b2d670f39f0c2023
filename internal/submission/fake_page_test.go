// internal/submission/fake_page_test.go
package submission

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// fakeDialog records how it was acknowledged.
type fakeDialog struct {
	mu        sync.Mutex
	message   string
	accepted  int
	dismissed int
}

func newFakeDialog(message string) *fakeDialog { return &fakeDialog{message: message} }

func (d *fakeDialog) Message() string { return d.message }

func (d *fakeDialog) Accept() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accepted++
	return nil
}

func (d *fakeDialog) Dismiss() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dismissed++
	return nil
}

func (d *fakeDialog) counts() (accepted, dismissed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepted, d.dismissed
}

type fakeSub struct {
	id      int
	handler schemas.DialogHandler
}

// fakePage is a scripted portal form. It answers the embedded page scripts
// from its fields and raises dialogs on configured selections and submits.
type fakePage struct {
	mu sync.Mutex

	selects  map[string][]schemas.OptionCandidate
	radios   []RatingControl
	controls map[string]controlProbe

	clickErr       error
	jsClickWorks   bool
	waitVisibleErr error
	checkProblems  map[string]string

	// Dialog raised after selecting in the keyed selector, or after submitting.
	dialogOnSelect map[string]string
	dialogOnSubmit string

	subs   []fakeSub
	nextID int

	calls     []string
	selected  map[string]string
	checked   map[string]string
	unclaimed []*fakeDialog
	raised    []*fakeDialog
}

func newFakePage() *fakePage {
	return &fakePage{
		selects:        make(map[string][]schemas.OptionCandidate),
		controls:       make(map[string]controlProbe),
		checkProblems:  make(map[string]string),
		dialogOnSelect: make(map[string]string),
		selected:       make(map[string]string),
		checked:        make(map[string]string),
		jsClickWorks:   true,
	}
}

func (p *fakePage) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePage) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePage) called(prefix string) bool {
	for _, c := range p.callLog() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (p *fakePage) subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// raise delivers a dialog the way the browser broker does: to the newest
// subscriber, or it is left unclaimed.
func (p *fakePage) raise(message string) *fakeDialog {
	d := newFakeDialog(message)
	p.mu.Lock()
	p.raised = append(p.raised, d)
	var handler schemas.DialogHandler
	if n := len(p.subs); n > 0 {
		handler = p.subs[n-1].handler
	} else {
		p.unclaimed = append(p.unclaimed, d)
	}
	p.mu.Unlock()

	if handler != nil {
		handler(d)
	} else {
		_ = d.Accept()
	}
	return d
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.record("navigate:" + url)
	return nil
}

func (p *fakePage) WaitVisible(_ context.Context, selector string) error {
	p.record("wait:" + selector)
	return p.waitVisibleErr
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	p.record("click:" + selector)
	if p.clickErr != nil {
		return p.clickErr
	}
	p.afterSubmit()
	return nil
}

func (p *fakePage) afterSubmit() {
	if p.dialogOnSubmit != "" {
		p.raise(p.dialogOnSubmit)
	}
}

func (p *fakePage) SelectOption(_ context.Context, selector, value string) error {
	p.record("select:" + selector + "=" + value)
	p.mu.Lock()
	p.selected[selector] = value
	msg := p.dialogOnSelect[selector]
	p.mu.Unlock()
	if msg != "" {
		p.raise(msg)
	}
	return nil
}

func (p *fakePage) Type(_ context.Context, selector, text string) error {
	p.record("type:" + selector)
	return nil
}

func (p *fakePage) WaitNetworkIdle(context.Context, time.Duration) error {
	p.record("idle")
	return nil
}

func (p *fakePage) OnDialog(handler schemas.DialogHandler) func() {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, fakeSub{id: id, handler: handler})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, s := range p.subs {
				if s.id == id {
					p.subs = append(p.subs[:i], p.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// scriptArgs splits an expression built by jsexec.Call back into its arguments.
func scriptArgs(expr, script string) ([]interface{}, bool) {
	prefix := "(" + strings.TrimRight(strings.TrimSpace(script), ";") + ")("
	if !strings.HasPrefix(expr, prefix) {
		return nil, false
	}
	var args []interface{}
	if err := json.Unmarshal([]byte("["+strings.TrimSuffix(expr[len(prefix):], ")")+"]"), &args); err != nil {
		return nil, false
	}
	return args, true
}

func argString(args []interface{}, i int) string {
	if i < len(args) {
		if s, ok := args[i].(string); ok {
			return s
		}
	}
	return ""
}

func (p *fakePage) Evaluate(_ context.Context, expr string, res interface{}) error {
	var result interface{}
	switch {
	case strings.HasPrefix(expr, "("+strings.TrimSpace(readOptionsScript)):
		args, _ := scriptArgs(expr, readOptionsScript)
		sel := argString(args, 0)
		p.record("options:" + sel)
		p.mu.Lock()
		opts, ok := p.selects[sel]
		p.mu.Unlock()
		result = map[string]interface{}{"found": ok, "options": opts}
	case strings.HasPrefix(expr, "("+strings.TrimSpace(ratingControlsScript)):
		p.record("scan")
		result = p.radios
	case strings.HasPrefix(expr, "("+strings.TrimSpace(checkRatingScript)):
		args, _ := scriptArgs(expr, checkRatingScript)
		group, value := argString(args, 0), argString(args, 1)
		p.record("check:" + group + "=" + value)
		if problem := p.checkProblems[group]; problem != "" {
			result = problem
			break
		}
		p.mu.Lock()
		p.checked[group] = value
		p.mu.Unlock()
		result = ""
	case strings.HasPrefix(expr, "("+strings.TrimSpace(probeControlScript)):
		args, _ := scriptArgs(expr, probeControlScript)
		sel := argString(args, 0)
		p.record("probe:" + sel)
		result = p.controls[sel]
	case strings.HasPrefix(expr, "("+strings.TrimSpace(jsClickScript)):
		args, _ := scriptArgs(expr, jsClickScript)
		p.record("jsclick:" + argString(args, 0))
		if p.jsClickWorks {
			p.afterSubmit()
		}
		result = p.jsClickWorks
	case strings.HasPrefix(expr, "("+strings.TrimSpace(scrollIntoViewScript)):
		p.record("scroll-into-view")
		result = true
	case strings.HasPrefix(expr, "("+strings.TrimSpace(scrollCenterScript)),
		strings.HasPrefix(expr, "("+strings.TrimSpace(scrollByScript)),
		strings.HasPrefix(expr, "("+strings.TrimSpace(scrollBottomScript)):
		p.record("scroll")
		result = true
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

// portalForm sets up a form with a subject and teacher dropdown, four
// question groups and a visible submit button.
func portalForm() *fakePage {
	p := newFakePage()
	p.selects["#subject"] = []schemas.OptionCandidate{
		{Value: "", DisplayText: "--Select--"},
		{Value: "CS3010", DisplayText: "CS3010 - Compilers Lab"},
		{Value: "CS301", DisplayText: "CS301 - Compilers"},
	}
	p.selects["#teacher"] = []schemas.OptionCandidate{
		{Value: "", DisplayText: "--Select--"},
		{Value: "T7", DisplayText: "Dr. R. Sharma"},
		{Value: "T1", DisplayText: "Dr. Asha Verma"},
	}
	for _, group := range []string{"FeedbackGroup1", "FeedbackGroup2", "FeedbackGroup3", "FeedbackGroup4"} {
		for _, v := range []string{"1", "2", "3", "4", "5"} {
			p.radios = append(p.radios, RatingControl{Group: group, Value: v, Visible: true})
		}
	}
	p.radios = append(p.radios, RatingControl{Group: "semester", Value: "5", Visible: true})
	p.controls["#submit"] = controlProbe{Found: true, Visible: true, InViewport: true, ID: "submit", Tag: "INPUT"}
	return p
}
