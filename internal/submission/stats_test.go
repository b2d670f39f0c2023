// internal/submission/stats_test.go
package submission

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

func outcome(result schemas.AttemptResult, key string) Outcome {
	return Outcome{
		Item:   schemas.SubmissionItem{Category: schemas.CategoryLab, PrimaryLabel: "CS3010", SecondaryLabel: "Verma"},
		Result: result,
		Key:    key,
	}
}

func TestRunStatistics_Record(t *testing.T) {
	stats := NewRunStatistics()

	stats.Record(outcome(schemas.ResultSubmitted, "k1"))
	stats.Record(outcome(schemas.ResultSkipped, ""))
	stats.Record(outcome(schemas.ResultDuplicate, "k2"))
	stats.Record(outcome(schemas.ResultFailed, "k3"))

	notFound := outcome(schemas.ResultFailed, "")
	notFound.NotFound, notFound.Reason = true, "Subject not found"
	stats.Record(notFound)

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Submitted)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 2, snap.Skipped)
	assert.Equal(t, 1, snap.Duplicates)
	assert.Equal(t, []string{"Lab: CS3010 - Verma"}, snap.DuplicateItems)
	require.Len(t, snap.SkippedItems, 2)
	assert.Equal(t, "Subject not found", snap.SkippedItems[1].Reason)
	assert.Len(t, snap.Attempts, 5)

	assert.True(t, stats.IsSubmitted("k1"))
	assert.False(t, stats.IsSubmitted("k3"))
}

func TestRunStatistics_SameKeyCountsOnce(t *testing.T) {
	stats := NewRunStatistics()
	assert.Equal(t, schemas.ResultSubmitted, stats.Record(outcome(schemas.ResultSubmitted, "k1")))
	assert.Equal(t, schemas.ResultDuplicate, stats.Record(outcome(schemas.ResultSubmitted, "k1")))

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Submitted)
	assert.Equal(t, 1, snap.Duplicates)
	assert.Equal(t, schemas.ResultDuplicate, snap.Attempts[1].Result)
}

func TestRunStatistics_SnapshotIsACopy(t *testing.T) {
	stats := NewRunStatistics()
	stats.Record(outcome(schemas.ResultDuplicate, ""))

	snap := stats.Snapshot()
	snap.DuplicateItems[0] = "changed"
	assert.Equal(t, "Lab: CS3010 - Verma", stats.Snapshot().DuplicateItems[0])
}

func TestRunStatistics_ConcurrentRecord(t *testing.T) {
	stats := NewRunStatistics()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stats.Record(outcome(schemas.ResultSubmitted, fmt.Sprintf("k%d", i%10)))
		}(i)
	}
	wg.Wait()

	snap := stats.Snapshot()
	assert.Equal(t, 10, snap.Submitted)
	assert.Equal(t, 90, snap.Duplicates)
	assert.Len(t, snap.Attempts, 100)
}
