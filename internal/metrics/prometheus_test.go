package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

func TestPrometheusRecorder_ObserveAttempt(t *testing.T) {
	p := NewPrometheusRecorder()

	p.ObserveAttempt(schemas.CategoryTheory, schemas.ResultSubmitted, schemas.SignalSuccess, 3*time.Second)
	p.ObserveAttempt(schemas.CategoryTheory, schemas.ResultSubmitted, schemas.SignalTimeout, 9*time.Second)
	p.ObserveAttempt(schemas.CategoryLab, schemas.ResultSkipped, "", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.attemptsTotal.WithLabelValues("THEORY", "SUBMITTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.attemptsTotal.WithLabelValues("LAB", "SKIPPED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.confirmationsTotal.WithLabelValues("SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.confirmationsTotal.WithLabelValues("TIMEOUT")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.confirmationsTotal), "skips carry no confirmation signal")
	assert.Equal(t, 2, testutil.CollectAndCount(p.attemptDuration))
}

func TestPrometheusRecorder_ObserveRun(t *testing.T) {
	p := NewPrometheusRecorder()
	p.ObserveRun(90 * time.Second)

	expected := `
# HELP feedback_run_duration_seconds Duration of the last run in seconds.
# TYPE feedback_run_duration_seconds gauge
feedback_run_duration_seconds 90
`
	require.NoError(t, testutil.CollectAndCompare(p.runDuration, strings.NewReader(expected)))
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	p := NewPrometheusRecorder()
	p.ObserveAttempt(schemas.CategoryMentor, schemas.ResultDuplicate, schemas.SignalDuplicate, time.Second)
	p.ObserveRun(time.Minute)

	path := filepath.Join(t.TempDir(), "feedback.prom")
	require.NoError(t, p.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `feedback_attempts_total{category="MENTOR",result="DUPLICATE"} 1`)
	assert.Contains(t, text, `feedback_confirmations_total{signal="DUPLICATE"} 1`)
	assert.Contains(t, text, "feedback_run_duration_seconds 60")
}

func TestPrometheusRecorder_WriteTextfileBadPath(t *testing.T) {
	p := NewPrometheusRecorder()
	err := p.WriteTextfile(filepath.Join(t.TempDir(), "missing", "feedback.prom"))
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	r := Nop()
	assert.NotPanics(t, func() {
		r.ObserveAttempt(schemas.CategoryLab, schemas.ResultFailed, schemas.SignalError, time.Second)
		r.ObserveRun(time.Second)
	})
}

var (
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = NoopRecorder{}
)
