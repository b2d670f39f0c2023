// internal/submission/flow.go
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/config"
)

// formScrollOffset is how far the page scrolls from the selectors to the questions.
const formScrollOffset = 400

// PrimaryMatch selects the resolver for the primary dropdown.
type PrimaryMatch int

const (
	// MatchTiered uses Resolve.
	MatchTiered PrimaryMatch = iota
	// MatchContains uses ResolveContains.
	MatchContains
)

// CategorySpec describes the form of one category.
type CategorySpec struct {
	Category          schemas.Category
	Page              string
	PrimarySelector   string
	SecondarySelector string
	PrimaryMatch      PrimaryMatch
	PrimaryNoun       string
	SecondaryNoun     string
	// MissingReason is recorded when the item lacks a label.
	MissingReason string
	// Label names the form in de-duplication keys.
	Label string
	// PrimarySettle is the wait after the primary selection, while the
	// portal repopulates the secondary dropdown.
	PrimarySettle time.Duration
}

// SpecFor returns the form description of category.
func SpecFor(category schemas.Category, form config.FormConfig, timing config.TimingConfig) (CategorySpec, error) {
	spec := CategorySpec{
		Category:          category,
		PrimarySelector:   form.SubjectSelector,
		SecondarySelector: form.TeacherSelector,
		PrimaryMatch:      MatchTiered,
		PrimaryNoun:       "Subject",
		SecondaryNoun:     "Teacher",
		MissingReason:     "Missing teacher name",
		PrimarySettle:     timing.SelectSettle,
	}
	switch category {
	case schemas.CategoryTheory:
		spec.Page, spec.Label = config.PageTheory, "Theory Feedback"
	case schemas.CategoryLab:
		spec.Page, spec.Label = config.PageLab, "Lab Feedback"
	case schemas.CategoryTeaching:
		spec.Page, spec.Label = config.PageTeaching, "Teaching & Learning Feedback"
	case schemas.CategoryMentor:
		spec.Page, spec.Label = config.PageMentor, "Mentor Feedback"
		spec.PrimarySelector = form.DepartmentSelector
		spec.PrimaryMatch = MatchContains
		spec.PrimaryNoun, spec.SecondaryNoun = "Department", "Mentor"
		spec.MissingReason = "Missing department or name"
		spec.PrimarySettle = timing.DepartmentSettle
	default:
		return CategorySpec{}, fmt.Errorf("no form known for category %q", category)
	}
	return spec, nil
}

// DedupKey identifies a submission within a run.
func DedupKey(label, primaryText, secondary string) string {
	return label + "-" + primaryText + "-" + secondary
}

// Navigator opens a named portal page.
type Navigator interface {
	GoTo(ctx context.Context, page string) error
}

// Ledger answers whether a key was already submitted in this run.
type Ledger interface {
	IsSubmitted(key string) bool
}

// Outcome is the classified result of one attempt.
type Outcome struct {
	Item   schemas.SubmissionItem
	Result schemas.AttemptResult
	Reason string
	// NotFound marks a Failed result caused by an unresolvable label. Such
	// results are reported as skips.
	NotFound  bool
	Key       string
	Signal    schemas.ConfirmationSignal
	Fill      schemas.FillOutcome
	Primary   string
	Secondary string
	Duration  time.Duration
}

// Record converts the outcome to its report line.
func (o Outcome) Record() schemas.AttemptRecord {
	return schemas.AttemptRecord{
		Item:      o.Item,
		Result:    o.Result,
		Reason:    o.Reason,
		Signal:    o.Signal,
		Primary:   o.Primary,
		Secondary: o.Secondary,
		Answered:  o.Fill.AnsweredCount,
		Questions: o.Fill.TotalQuestionGroups,
		Duration:  o.Duration,
	}
}

// Flow runs single submission attempts against the shared page.
type Flow struct {
	page       schemas.Page
	nav        Navigator
	sentinel   *Sentinel
	filler     *Filler
	submitter  *Submitter
	classifier *Classifier
	policy     UnconfirmedPolicy
	preferred  string
	timing     config.TimingConfig
	logger     *zap.Logger
}

// NewFlow wires the flow components from configuration.
func NewFlow(page schemas.Page, nav Navigator, cfg config.Interface, logger *zap.Logger) (*Flow, error) {
	policy, err := ParseUnconfirmedPolicy(cfg.Submission().UnconfirmedPolicy)
	if err != nil {
		return nil, err
	}
	timing := cfg.Timing()
	markers := NewMarkerSet(cfg.Markers())
	return &Flow{
		page:      page,
		nav:       nav,
		sentinel:  NewSentinel(page, markers, logger),
		filler:    NewFiller(page, GroupRulesFromConfig(cfg.Form()), logger),
		submitter: NewSubmitter(page, cfg.Form().SubmitLocators, SubmitTiming{
			ScrollSettle: timing.ScrollSettle,
			ClickSettle:  timing.ClickSettle,
			ClickTimeout: timing.PageReady,
		}, logger),
		classifier: NewClassifier(page, markers, timing.NetworkIdle, timing.NetworkQuiet, logger),
		policy:     policy,
		preferred:  cfg.Feedback().Option,
		timing:     timing,
		logger:     logger.Named("flow"),
	}, nil
}

// Attempt runs one item through select, duplicate check, fill, submit and
// confirmation. It always returns a classified outcome. The ledger may be nil.
func (f *Flow) Attempt(ctx context.Context, spec CategorySpec, item schemas.SubmissionItem, ledger Ledger) (out Outcome) {
	start := time.Now()
	out = Outcome{Item: item}
	defer func() { out.Duration = time.Since(start) }()

	logger := f.logger.With(
		zap.String("category", string(spec.Category)),
		zap.String("primary", item.PrimaryLabel),
		zap.String("secondary", item.SecondaryLabel),
	)

	if strings.TrimSpace(item.PrimaryLabel) == "" || strings.TrimSpace(item.SecondaryLabel) == "" {
		logger.Info("Skipping item with a missing label.")
		out.Result, out.Reason = schemas.ResultSkipped, spec.MissingReason
		return out
	}

	fail := func(reason string, err error) Outcome {
		out.Result, out.Reason = schemas.ResultFailed, reason
		if err != nil {
			logger.Error("Attempt failed.", zap.String("reason", reason), zap.Error(err))
		} else {
			logger.Warn("Attempt failed.", zap.String("reason", reason))
		}
		return out
	}
	notFound := func(noun string, res schemas.ResolutionResult, reason schemas.NotFoundReason) Outcome {
		out.Result, out.NotFound = schemas.ResultFailed, true
		out.Reason = noun + " not found"
		if reason == schemas.ReasonDropdownMissing {
			out.Reason = noun + " dropdown not found"
		}
		logger.Warn("Label could not be resolved.", zap.String("reason", out.Reason), zap.Int("available", res.Available))
		return out
	}
	duplicate := func(reason string) Outcome {
		out.Result, out.Reason = schemas.ResultDuplicate, reason
		logger.Warn("Feedback already submitted; skipping remaining steps.", zap.String("reason", reason))
		return out
	}

	if err := f.nav.GoTo(ctx, spec.Page); err != nil {
		return fail("navigation failed", err)
	}
	if err := f.waitVisible(ctx, spec.PrimarySelector); err != nil {
		return fail("form did not load", err)
	}

	primary, reason, err := f.resolvePrimary(ctx, spec, item.PrimaryLabel)
	if err != nil {
		return fail("failed to read "+strings.ToLower(spec.PrimaryNoun)+" options", err)
	}
	if !primary.Found {
		return notFound(spec.PrimaryNoun, primary, reason)
	}
	out.Primary = primary.DisplayText
	out.Key = DedupKey(spec.Label, primary.DisplayText, item.SecondaryLabel)
	logger.Info("Resolved primary option.", zap.String("text", primary.DisplayText), zap.String("value", primary.Value))

	if ledger != nil && ledger.IsSubmitted(out.Key) {
		return duplicate("already submitted in this run")
	}

	dup, err := f.selectAndWatch(ctx, spec.PrimarySelector, primary.Value, spec.PrimarySettle)
	if err != nil {
		return fail("failed to select "+strings.ToLower(spec.PrimaryNoun), err)
	}
	if dup {
		return duplicate("portal reported feedback already submitted")
	}

	if err := Pause(ctx, f.timing.SecondaryLookupDelay); err != nil {
		return fail("interrupted", err)
	}
	f.scrollTo(ctx, spec.SecondarySelector)
	options, err := ReadOptions(ctx, f.page, spec.SecondarySelector)
	if errors.Is(err, ErrDropdownMissing) {
		return notFound(spec.SecondaryNoun, schemas.ResolutionResult{}, schemas.ReasonDropdownMissing)
	}
	if err != nil {
		return fail("failed to read "+strings.ToLower(spec.SecondaryNoun)+" options", err)
	}
	secondary := ResolveByName(options, item.SecondaryLabel)
	if !secondary.Found {
		return notFound(spec.SecondaryNoun, secondary, schemas.ReasonNotFound)
	}
	out.Secondary = secondary.DisplayText
	logger.Info("Resolved secondary option.", zap.String("text", secondary.DisplayText), zap.String("value", secondary.Value))

	dup, err = f.selectAndWatch(ctx, spec.SecondarySelector, secondary.Value, f.timing.SelectSettle)
	if err != nil {
		return fail("failed to select "+strings.ToLower(spec.SecondaryNoun), err)
	}
	if dup {
		return duplicate("portal reported feedback already submitted")
	}

	if err := evaluate(ctx, f.page, scrollByScript, nil, formScrollOffset); err != nil {
		logger.Debug("Failed to scroll to questions.", zap.Error(err))
	}
	if err := Pause(ctx, f.timing.FormScrollSettle); err != nil {
		return fail("interrupted", err)
	}

	fill, err := f.filler.FillAll(ctx, f.preferred)
	out.Fill = fill
	if errors.Is(err, ErrNoQuestionGroups) {
		return fail("no questions found", nil)
	}
	if err != nil {
		return fail("failed to fill questions", err)
	}

	watch := f.classifier.Arm()
	if !f.submitter.InvokeSubmit(ctx) {
		watch.Release()
		return fail("submit control not found or not clickable", nil)
	}
	out.Signal = watch.Await(ctx, f.timing.Confirmation)
	out.Result = f.policy.Resolve(out.Signal)

	switch {
	case out.Result == schemas.ResultDuplicate:
		return duplicate("portal reported feedback already submitted")
	case out.Signal == schemas.SignalError:
		return fail("portal reported an error", nil)
	case Unconfirmed(out.Signal) && out.Result == schemas.ResultFailed:
		return fail(fmt.Sprintf("submission unconfirmed (%s)", out.Signal), nil)
	case Unconfirmed(out.Signal):
		out.Reason = fmt.Sprintf("unconfirmed (%s), counted as submitted", out.Signal)
		logger.Warn("No clear confirmation; submission may have succeeded.", zap.String("signal", string(out.Signal)))
	default:
		logger.Info("Feedback submitted.")
	}
	return out
}

func (f *Flow) waitVisible(ctx context.Context, selector string) error {
	if f.timing.PageReady <= 0 {
		return f.page.WaitVisible(ctx, selector)
	}
	waitCtx, cancel := context.WithTimeout(ctx, f.timing.PageReady)
	defer cancel()
	return f.page.WaitVisible(waitCtx, selector)
}

func (f *Flow) scrollTo(ctx context.Context, selector string) {
	if err := evaluate(ctx, f.page, scrollCenterScript, nil, selector); err != nil {
		f.logger.Debug("Failed to scroll to element.", zap.String("selector", selector), zap.Error(err))
	}
}

// resolvePrimary reads and matches the primary dropdown. A missing dropdown
// is reported as a not-found result, not an error.
func (f *Flow) resolvePrimary(ctx context.Context, spec CategorySpec, label string) (schemas.ResolutionResult, schemas.NotFoundReason, error) {
	f.scrollTo(ctx, spec.PrimarySelector)
	options, err := ReadOptions(ctx, f.page, spec.PrimarySelector)
	if errors.Is(err, ErrDropdownMissing) {
		return schemas.ResolutionResult{Reason: schemas.ReasonDropdownMissing}, schemas.ReasonDropdownMissing, nil
	}
	if err != nil {
		return schemas.ResolutionResult{}, "", err
	}
	if spec.PrimaryMatch == MatchContains {
		res := ResolveContains(options, label)
		return res, res.Reason, nil
	}
	res := Resolve(options, label)
	return res, res.Reason, nil
}

// selectAndWatch arms the sentinel, selects value, lets the portal settle and
// reports whether a duplicate notice arrived.
func (f *Flow) selectAndWatch(ctx context.Context, selector, value string, settle time.Duration) (bool, error) {
	watch := f.sentinel.Arm()
	if err := f.page.SelectOption(ctx, selector, value); err != nil {
		watch.Release()
		return false, err
	}
	if err := Pause(ctx, settle); err != nil {
		watch.Release()
		return false, err
	}
	return watch.Await(ctx, f.timing.SentinelWindow), nil
}
