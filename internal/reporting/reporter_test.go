// internal/reporting/reporter_test.go
package reporting_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/reporting"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func sampleReport() *schemas.RunReport {
	start := time.Date(2026, 10, 19, 4, 30, 0, 0, time.UTC)
	return &schemas.RunReport{
		RunID:      "4f8c2b1e-0000-4000-8000-000000000001",
		Mode:       "production",
		StartedAt:  start,
		EndedAt:    start.Add(65 * time.Second),
		Duration:   65 * time.Second,
		Submitted:  2,
		Failed:     1,
		Skipped:    1,
		Duplicates: 1,
		SkippedItems: []schemas.SkipRecord{
			{Category: schemas.CategoryLab, Subject: "CS3010", Reason: "Missing teacher name"},
		},
		DuplicateItems: []string{"Theory: CS301 - Dr. Verma"},
		Attempts: []schemas.AttemptRecord{
			{Item: schemas.SubmissionItem{Category: schemas.CategoryTheory, PrimaryLabel: "CS302", SecondaryLabel: "Sharma"}, Result: schemas.ResultSubmitted, Signal: schemas.SignalSuccess, Duration: 12 * time.Second},
		},
		Configured: map[schemas.Category]int{
			schemas.CategoryTheory: 3, schemas.CategoryLab: 1, schemas.CategoryMentor: 1, schemas.CategoryTeaching: 0,
		},
		UnlistedSubjects: []schemas.OptionCandidate{{Value: "MA201", DisplayText: "MA201 - Probability"}},
	}
}

func TestNew_Stdout(t *testing.T) {
	for _, format := range reporting.Formats {
		r, err := reporting.New(format, "stdout", "UTC")
		require.NoError(t, err, format)
		assert.NoError(t, r.Close(), "closing stdout is a no-op")
	}
	r, err := reporting.New("text", "", "")
	require.NoError(t, err)
	assert.NoError(t, r.Close())
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r, err := reporting.New("json", path, "Asia/Kolkata")
	require.NoError(t, err)
	require.NoError(t, r.Write(sampleReport()))
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := reporting.ReadJSON(f)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleReport(), decoded); diff != "" {
		t.Errorf("report changed through json (-want +got):\n%s", diff)
	}
}

func TestNew_Failures(t *testing.T) {
	_, err := reporting.New("sarif", "stdout", "UTC")
	assert.ErrorContains(t, err, "unsupported output format: sarif")

	path := filepath.Join(t.TempDir(), "report.txt")
	_, err = reporting.New("html", path, "UTC")
	assert.Error(t, err)
	info, statErr := os.Stat(path)
	require.NoError(t, statErr)
	assert.Zero(t, info.Size())

	_, err = reporting.New("text", "stdout", "Mars/Olympus_Mons")
	assert.ErrorContains(t, err, "unknown report timezone")

	_, err = reporting.New("text", filepath.Join(t.TempDir(), "missing", "r.txt"), "UTC")
	assert.ErrorContains(t, err, "failed to create output file")
}

func TestTextReporter(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	buf := &bufferCloser{}
	r, err := reporting.NewWriter("text", buf, loc)
	require.NoError(t, err)

	require.NoError(t, r.Write(sampleReport()))
	require.NoError(t, r.Close())
	assert.True(t, buf.closed)

	out := buf.String()
	for _, want := range []string{
		"Start Time:              19/10/2026, 10:00:00 AM",
		"End Time:                19/10/2026, 10:01:05 AM",
		"Total Duration:          1m 5s",
		"Successful Submissions:  2",
		"Total Forms Processed:   4",
		"  Theory Subjects:        3 configured",
		"  Teaching & Learning:    0 configured",
		"  - Lab: CS3010 - Missing teacher name",
		"  - Theory: CS301 - Dr. Verma",
		"  - MA201 - MA201 - Probability",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTextReporter_OmitsEmptySections(t *testing.T) {
	buf := &bufferCloser{}
	r, err := reporting.NewWriter("text", buf, time.UTC)
	require.NoError(t, err)
	require.NoError(t, r.Write(&schemas.RunReport{RunID: "x"}))

	out := buf.String()
	assert.NotContains(t, out, "SKIPPED ITEMS")
	assert.NotContains(t, out, "DUPLICATE FEEDBACK")
	assert.NotContains(t, out, "AVAILABLE SUBJECTS")
	assert.Contains(t, out, "Start Time:              -")
}

func TestYAMLReporter(t *testing.T) {
	buf := &bufferCloser{}
	r, err := reporting.NewWriter("yaml", buf, nil)
	require.NoError(t, err)
	require.NoError(t, r.Write(sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "production", decoded["mode"])
	assert.Equal(t, 2, decoded["submitted"])
	assert.Equal(t, "1m5s", decoded["duration"])
	assert.NotContains(t, buf.String(), "password")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{59*time.Second + 900*time.Millisecond, "59s"},
		{61 * time.Second, "1m 1s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h 2m 3s"},
		{3 * time.Hour, "3h 0m 0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reporting.FormatDuration(tt.in), tt.in.String())
	}
}
