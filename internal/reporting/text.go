// internal/reporting/text.go
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// timestampLayout matches how the portal displays dates.
const timestampLayout = "02/01/2006, 03:04:05 PM"

const ruleWidth = 70

// TextReporter writes a human readable run summary.
type TextReporter struct {
	w   io.WriteCloser
	loc *time.Location
}

func (r *TextReporter) Write(report *schemas.RunReport) error {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)
	line := strings.Repeat("-", ruleWidth)

	fmt.Fprintf(&b, "%s\nFEEDBACK SUBMISSION COMPLETE\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Run ID:                  %s\n", report.RunID)
	fmt.Fprintf(&b, "Mode:                    %s\n\n", report.Mode)

	fmt.Fprintf(&b, "TIMING INFORMATION\n%s\n", line)
	fmt.Fprintf(&b, "Start Time:              %s\n", r.timestamp(report.StartedAt))
	fmt.Fprintf(&b, "End Time:                %s\n", r.timestamp(report.EndedAt))
	fmt.Fprintf(&b, "Total Duration:          %s\n\n", FormatDuration(report.Duration))

	fmt.Fprintf(&b, "EXECUTION SUMMARY\n%s\n", line)
	fmt.Fprintf(&b, "Successful Submissions:  %d\n", report.Submitted)
	fmt.Fprintf(&b, "Failed Submissions:      %d\n", report.Failed)
	fmt.Fprintf(&b, "Skipped Items:           %d\n", report.Skipped)
	fmt.Fprintf(&b, "Already Submitted:       %d\n", report.Duplicates)
	fmt.Fprintf(&b, "Total Forms Processed:   %d\n\n", report.Processed())

	b.WriteString("BREAKDOWN BY CATEGORY:\n")
	for _, c := range schemas.Categories {
		fmt.Fprintf(&b, "  %-24s%d configured\n", categoryHeading(c)+":", report.Configured[c])
	}
	b.WriteString(line + "\n")

	if len(report.SkippedItems) > 0 {
		fmt.Fprintf(&b, "\nSKIPPED ITEMS (%d items)\n%s\n", len(report.SkippedItems), line)
		for _, s := range report.SkippedItems {
			subject := s.Subject
			if subject == "" {
				subject = "N/A"
			}
			fmt.Fprintf(&b, "  - %s: %s - %s\n", s.Category.Title(), subject, s.Reason)
		}
	}

	if len(report.DuplicateItems) > 0 {
		fmt.Fprintf(&b, "\nDUPLICATE FEEDBACK DETECTED (%d items)\n%s\n", len(report.DuplicateItems), line)
		b.WriteString("  Already submitted, skipped to avoid duplicates:\n")
		for _, d := range report.DuplicateItems {
			fmt.Fprintf(&b, "  - %s\n", d)
		}
	}

	if len(report.UnlistedSubjects) > 0 {
		fmt.Fprintf(&b, "\nAVAILABLE SUBJECTS NOT CONFIGURED (%d theory subjects)\n%s\n", len(report.UnlistedSubjects), line)
		b.WriteString("  Add these to your configuration to submit feedback for them:\n")
		for _, o := range report.UnlistedSubjects {
			fmt.Fprintf(&b, "  - %s - %s\n", o.Value, o.DisplayText)
		}
	}
	b.WriteString("\n" + rule + "\n")

	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *TextReporter) Close() error {
	return r.w.Close()
}

func (r *TextReporter) timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(r.loc).Format(timestampLayout)
}

func categoryHeading(c schemas.Category) string {
	switch c {
	case schemas.CategoryTheory:
		return "Theory Subjects"
	case schemas.CategoryLab:
		return "Lab Subjects"
	case schemas.CategoryMentor:
		return "Mentor Feedback"
	case schemas.CategoryTeaching:
		return "Teaching & Learning"
	default:
		return c.Title()
	}
}

// FormatDuration renders d as "1h 2m 3s", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes%60, seconds%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
