package schemas

import (
	"fmt"
	"strings"
)

// Category identifies one independent feedback form workflow.
type Category string

const (
	CategoryTheory   Category = "THEORY"
	CategoryLab      Category = "LAB"
	CategoryMentor   Category = "MENTOR"
	CategoryTeaching Category = "TEACHING"
)

// Categories lists every category in the order a run processes them.
var Categories = []Category{CategoryTheory, CategoryLab, CategoryMentor, CategoryTeaching}

// ParseCategory accepts a category name in any casing.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown feedback category: %q", s)
}

// Title is the short human name used in log lines and report entries.
func (c Category) Title() string {
	switch c {
	case CategoryTheory:
		return "Theory"
	case CategoryLab:
		return "Lab"
	case CategoryMentor:
		return "Mentor"
	case CategoryTeaching:
		return "Teaching"
	default:
		return string(c)
	}
}

// SubmissionItem is one unit of configured work. Items are built once per run
// and never modified afterwards.
type SubmissionItem struct {
	Category Category `json:"category" yaml:"category"`
	// PrimaryLabel is the subject code, or the department for mentor feedback.
	PrimaryLabel string `json:"primary_label" yaml:"primary_label"`
	// SecondaryLabel is the teacher or mentor name.
	SecondaryLabel string `json:"secondary_label" yaml:"secondary_label"`
	// Required is set when every label the category needs was configured.
	Required bool `json:"required" yaml:"required"`
}

// String renders the item the way duplicate entries are listed in reports.
func (i SubmissionItem) String() string {
	if i.Category == CategoryMentor {
		return fmt.Sprintf("%s: %s (%s)", i.Category.Title(), i.SecondaryLabel, i.PrimaryLabel)
	}
	return fmt.Sprintf("%s: %s - %s", i.Category.Title(), i.PrimaryLabel, i.SecondaryLabel)
}

// OptionCandidate is one entry of a rendered dropdown, read at resolution time.
type OptionCandidate struct {
	Value       string `json:"value" yaml:"value"`
	DisplayText string `json:"text" yaml:"text"`
}

// NotFoundReason explains an unsuccessful resolution.
type NotFoundReason string

const (
	ReasonNotFound        NotFoundReason = "NOT_FOUND"
	ReasonDropdownMissing NotFoundReason = "DROPDOWN_MISSING"
)

// ResolutionResult is the outcome of matching a configured label against a dropdown.
type ResolutionResult struct {
	Found       bool           `json:"found"`
	Value       string         `json:"value,omitempty"`
	DisplayText string         `json:"text,omitempty"`
	Reason      NotFoundReason `json:"reason,omitempty"`
	// Available is the number of selectable (non-placeholder) options seen.
	Available int `json:"available"`
}

// FillOutcome summarizes one pass of the answer filler over a form.
type FillOutcome struct {
	AnsweredCount       int               `json:"answered_count" yaml:"answered_count"`
	TotalQuestionGroups int               `json:"total_question_groups" yaml:"total_question_groups"`
	PerGroupSelections  map[string]string `json:"per_group_selections,omitempty" yaml:"per_group_selections,omitempty"`
	Errors              []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ConfirmationSignal is the terminal observation made after pressing submit.
type ConfirmationSignal string

const (
	SignalSuccess   ConfirmationSignal = "SUCCESS"
	SignalDuplicate ConfirmationSignal = "DUPLICATE"
	SignalError     ConfirmationSignal = "ERROR"
	SignalUnknown   ConfirmationSignal = "UNKNOWN"
	SignalTimeout   ConfirmationSignal = "TIMEOUT"
)

// AttemptResult is the only outcome the run coordinator observes for an item.
type AttemptResult string

const (
	ResultSubmitted AttemptResult = "SUBMITTED"
	ResultSkipped   AttemptResult = "SKIPPED"
	ResultDuplicate AttemptResult = "DUPLICATE"
	ResultFailed    AttemptResult = "FAILED"
)
