// internal/submission/stats.go
package submission

import (
	"sync"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// RunStatistics accumulates outcomes for one run. Each Record call applies
// exactly one counter update.
type RunStatistics struct {
	mu sync.Mutex

	submitted  int
	failed     int
	skipped    int
	duplicates int

	skippedItems   []schemas.SkipRecord
	duplicateItems []string
	attempts       []schemas.AttemptRecord
	submittedKeys  map[string]struct{}
}

// NewRunStatistics returns empty statistics.
func NewRunStatistics() *RunStatistics {
	return &RunStatistics{submittedKeys: make(map[string]struct{})}
}

// StatsSnapshot is a copy of the statistics at one point in time.
type StatsSnapshot struct {
	Submitted      int
	Failed         int
	Skipped        int
	Duplicates     int
	SkippedItems   []schemas.SkipRecord
	DuplicateItems []string
	Attempts       []schemas.AttemptRecord
}

// Record applies o and returns the result it was counted as. A submitted
// outcome whose key is already marked counts as a duplicate, so one key never
// adds to the submitted count twice.
func (s *RunStatistics) Record(o Outcome) schemas.AttemptResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.Result == schemas.ResultSubmitted && o.Key != "" {
		if _, seen := s.submittedKeys[o.Key]; seen {
			o.Result, o.Reason = schemas.ResultDuplicate, "already submitted in this run"
		}
	}
	s.attempts = append(s.attempts, o.Record())

	switch o.Result {
	case schemas.ResultSubmitted:
		s.submitted++
		if o.Key != "" {
			s.submittedKeys[o.Key] = struct{}{}
		}
	case schemas.ResultSkipped:
		s.addSkip(o)
	case schemas.ResultDuplicate:
		s.duplicates++
		s.duplicateItems = append(s.duplicateItems, o.Item.String())
	case schemas.ResultFailed:
		if o.NotFound {
			s.addSkip(o)
			break
		}
		s.failed++
	}
	return o.Result
}

func (s *RunStatistics) addSkip(o Outcome) {
	s.skipped++
	s.skippedItems = append(s.skippedItems, schemas.SkipRecord{
		Category: o.Item.Category,
		Subject:  o.Item.PrimaryLabel,
		Reason:   o.Reason,
	})
}

// IsSubmitted reports whether key was submitted earlier in the run.
func (s *RunStatistics) IsSubmitted(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.submittedKeys[key]
	return ok
}

// Snapshot copies the current statistics.
func (s *RunStatistics) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Submitted:      s.submitted,
		Failed:         s.failed,
		Skipped:        s.skipped,
		Duplicates:     s.duplicates,
		SkippedItems:   append([]schemas.SkipRecord(nil), s.skippedItems...),
		DuplicateItems: append([]string(nil), s.duplicateItems...),
		Attempts:       append([]schemas.AttemptRecord(nil), s.attempts...),
	}
}
