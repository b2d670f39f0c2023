package schemas

import "time"

// SkipRecord explains why an item was not attempted or could not be resolved.
type SkipRecord struct {
	Category Category `json:"category" yaml:"category"`
	Subject  string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Reason   string   `json:"reason" yaml:"reason"`
}

// AttemptRecord is the per-item line of a run report.
type AttemptRecord struct {
	Item      SubmissionItem     `json:"item" yaml:"item"`
	Result    AttemptResult      `json:"result" yaml:"result"`
	Reason    string             `json:"reason,omitempty" yaml:"reason,omitempty"`
	Signal    ConfirmationSignal `json:"signal,omitempty" yaml:"signal,omitempty"`
	Primary   string             `json:"resolved_primary,omitempty" yaml:"resolved_primary,omitempty"`
	Secondary string             `json:"resolved_secondary,omitempty" yaml:"resolved_secondary,omitempty"`
	Answered  int                `json:"answered,omitempty" yaml:"answered,omitempty"`
	Questions int                `json:"questions,omitempty" yaml:"questions,omitempty"`
	Duration  time.Duration      `json:"duration_ns" yaml:"duration"`
}

// RunReport is the structured end-of-run summary.
type RunReport struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Mode      string        `json:"mode" yaml:"mode"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time     `json:"ended_at" yaml:"ended_at"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration"`

	Submitted  int `json:"submitted" yaml:"submitted"`
	Failed     int `json:"failed" yaml:"failed"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`

	SkippedItems   []SkipRecord    `json:"skipped_items,omitempty" yaml:"skipped_items,omitempty"`
	DuplicateItems []string        `json:"duplicate_items,omitempty" yaml:"duplicate_items,omitempty"`
	Attempts       []AttemptRecord `json:"attempts,omitempty" yaml:"attempts,omitempty"`

	// Configured counts the items each category was configured with.
	Configured map[Category]int `json:"configured" yaml:"configured"`
	// UnlistedSubjects are subjects offered by the portal but absent from configuration.
	UnlistedSubjects []OptionCandidate `json:"unlisted_subjects,omitempty" yaml:"unlisted_subjects,omitempty"`
}

// Processed is the number of items that reached a terminal non-duplicate result.
func (r *RunReport) Processed() int {
	return r.Submitted + r.Failed + r.Skipped
}
