// internal/submission/filler.go
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/config"
)

// ErrNoQuestionGroups means the form rendered no answerable questions, which
// usually means it has not finished loading.
var ErrNoQuestionGroups = errors.New("no question groups found on form")

// RatingControl is one radio input as scanned from the page.
type RatingControl struct {
	Group   string `json:"group"`
	Value   string `json:"value"`
	Visible bool   `json:"visible"`
}

// GroupRules decide which radio groups are feedback questions.
type GroupRules struct {
	// Markers must appear in a group name for it to count. Empty accepts any name.
	Markers []string
	// Excluded group names are never answered.
	Excluded []string
}

// GroupRulesFromConfig reads the rules from the form settings.
func GroupRulesFromConfig(form config.FormConfig) GroupRules {
	return GroupRules{Markers: form.QuestionGroupMarkers, Excluded: form.ExcludedGroups}
}

func (r GroupRules) accepts(group string) bool {
	if group == "" {
		return false
	}
	for _, ex := range r.Excluded {
		if strings.EqualFold(group, ex) {
			return false
		}
	}
	if len(r.Markers) == 0 {
		return true
	}
	for _, m := range r.Markers {
		if strings.Contains(group, m) {
			return true
		}
	}
	return false
}

// AnswerPlan is the value chosen for one question group.
type AnswerPlan struct {
	Group string
	Value string
	// Fallback is set when the preferred value was not offered.
	Fallback bool
}

// PlanAnswers groups visible controls by question in page order and picks the
// preferred value, or the group's last listed value when it is absent.
func PlanAnswers(controls []RatingControl, preferred string, rules GroupRules) []AnswerPlan {
	var order []string
	values := make(map[string][]string)
	for _, c := range controls {
		if !c.Visible || !rules.accepts(c.Group) {
			continue
		}
		if _, seen := values[c.Group]; !seen {
			order = append(order, c.Group)
		}
		values[c.Group] = append(values[c.Group], c.Value)
	}

	plans := make([]AnswerPlan, 0, len(order))
	for _, group := range order {
		opts := values[group]
		plan := AnswerPlan{Group: group, Value: opts[len(opts)-1], Fallback: true}
		for _, v := range opts {
			if v == preferred {
				plan.Value, plan.Fallback = v, false
				break
			}
		}
		plans = append(plans, plan)
	}
	return plans
}

// Filler answers every question group on the current form.
type Filler struct {
	page   schemas.Page
	rules  GroupRules
	logger *zap.Logger
}

// NewFiller creates a filler for page.
func NewFiller(page schemas.Page, rules GroupRules, logger *zap.Logger) *Filler {
	return &Filler{page: page, rules: rules, logger: logger.Named("filler")}
}

// FillAll selects preferred in every question group. Failures on individual
// groups are collected in the outcome. ErrNoQuestionGroups is returned when
// the form has nothing to answer.
func (f *Filler) FillAll(ctx context.Context, preferred string) (schemas.FillOutcome, error) {
	outcome := schemas.FillOutcome{PerGroupSelections: make(map[string]string)}

	var controls []RatingControl
	if err := evaluate(ctx, f.page, ratingControlsScript, &controls); err != nil {
		return outcome, fmt.Errorf("failed to scan rating controls: %w", err)
	}

	plans := PlanAnswers(controls, preferred, f.rules)
	outcome.TotalQuestionGroups = len(plans)
	f.logger.Info("Found question groups.", zap.Int("count", len(plans)))
	if len(plans) == 0 {
		return outcome, ErrNoQuestionGroups
	}

	for _, plan := range plans {
		if plan.Fallback {
			f.logger.Debug("Preferred rating not offered; using last option.",
				zap.String("group", plan.Group), zap.String("value", plan.Value))
		}
		var problem string
		if err := evaluate(ctx, f.page, checkRatingScript, &problem, plan.Group, plan.Value); err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("failed to select %s: %v", plan.Group, err))
			continue
		}
		if problem != "" {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("failed to select %s: %s", plan.Group, problem))
			continue
		}
		outcome.PerGroupSelections[plan.Group] = plan.Value
		outcome.AnsweredCount++
	}

	f.logger.Info("Filled questions.",
		zap.Int("answered", outcome.AnsweredCount),
		zap.Int("total", outcome.TotalQuestionGroups),
		zap.String("preferred", preferred),
	)
	if len(outcome.Errors) > 0 {
		f.logger.Warn("Some questions could not be answered.", zap.Strings("errors", outcome.Errors))
	}
	return outcome, nil
}
