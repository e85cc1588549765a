package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevanw/episodic/internal/plan"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func plannedItem(src, dest string) plan.Item {
	return plan.Item{SourcePath: src, DestPath: dest, Status: plan.StatusPlanned}
}

func TestExecuteSuccess(t *testing.T) {
	dir := t.TempDir()
	src1 := filepath.Join(dir, "show.s01e01.mkv")
	src2 := filepath.Join(dir, "show.s01e02.mkv")
	writeFile(t, src1)
	writeFile(t, src2)

	p := &plan.Plan{Items: []plan.Item{
		plannedItem(src1, filepath.Join(dir, "Show - S01E01.mkv")),
		plannedItem(src2, filepath.Join(dir, "Show - S01E02.mkv")),
	}}

	report, err := Execute(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	assert.False(t, report.RolledBack)
	for _, res := range report.Results {
		assert.Equal(t, OutcomeSuccess, res.Outcome)
	}

	assert.False(t, exists(src1))
	assert.True(t, exists(filepath.Join(dir, "Show - S01E01.mkv")))
	assert.True(t, exists(filepath.Join(dir, "Show - S01E02.mkv")))
}

func TestExecuteRollbackOnFailure(t *testing.T) {
	dir := t.TempDir()
	src1 := filepath.Join(dir, "a.s01e01.mkv")
	src2 := filepath.Join(dir, "b.s01e02.mkv")
	src3 := filepath.Join(dir, "c.s01e03.mkv")
	writeFile(t, src1)
	writeFile(t, src2)
	writeFile(t, src3)

	p := &plan.Plan{Items: []plan.Item{
		plannedItem(src1, filepath.Join(dir, "Show - S01E01.mkv")),
		// Missing subdirectory makes the rename itself fail, after
		// preflight has already passed.
		plannedItem(src2, filepath.Join(dir, "nope", "Show - S01E02.mkv")),
		plannedItem(src3, filepath.Join(dir, "Show - S01E03.mkv")),
	}}

	report, err := Execute(context.Background(), p)
	require.Error(t, err)

	assert.Equal(t, OutcomeRolledBack, report.Results[0].Outcome)
	assert.Equal(t, OutcomeFailed, report.Results[1].Outcome)
	assert.Equal(t, OutcomeNotAttempted, report.Results[2].Outcome)
	assert.True(t, report.RolledBack)
	assert.Empty(t, report.RollbackErrs)

	// Every source is back where it started.
	assert.True(t, exists(src1))
	assert.True(t, exists(src2))
	assert.True(t, exists(src3))
	assert.False(t, exists(filepath.Join(dir, "Show - S01E01.mkv")))
}

func TestPreflightMissingSource(t *testing.T) {
	dir := t.TempDir()
	p := &plan.Plan{Items: []plan.Item{
		plannedItem(filepath.Join(dir, "gone.mkv"), filepath.Join(dir, "Show - S01E01.mkv")),
	}}

	_, err := Execute(context.Background(), p)
	var pfErr *PreflightError
	require.ErrorAs(t, err, &pfErr)
	assert.Len(t, pfErr.Violations, 1)
	assert.Contains(t, pfErr.Violations[0], "source missing")
}

func TestPreflightDestinationExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "show.s01e01.mkv")
	dest := filepath.Join(dir, "Show - S01E01.mkv")
	writeFile(t, src)
	writeFile(t, dest)

	p := &plan.Plan{Items: []plan.Item{plannedItem(src, dest)}}

	_, err := Execute(context.Background(), p)
	var pfErr *PreflightError
	require.ErrorAs(t, err, &pfErr)
	assert.Contains(t, pfErr.Violations[0], "already exists")

	// Nothing moved.
	assert.True(t, exists(src))
}

func TestPreflightDuplicateDestination(t *testing.T) {
	dir := t.TempDir()
	src1 := filepath.Join(dir, "a.mkv")
	src2 := filepath.Join(dir, "b.mkv")
	writeFile(t, src1)
	writeFile(t, src2)

	dest := filepath.Join(dir, "Show - S01E01.mkv")
	p := &plan.Plan{Items: []plan.Item{
		plannedItem(src1, dest),
		plannedItem(src2, filepath.Join(dir, "SHOW - s01e01.MKV")),
	}}

	_, err := Execute(context.Background(), p)
	var pfErr *PreflightError
	require.ErrorAs(t, err, &pfErr)
	assert.Contains(t, pfErr.Violations[0], "destination shared")
}

func TestPreflightSkipsNonPlannedItems(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "show.s01e01.mkv")
	writeFile(t, src)

	p := &plan.Plan{Items: []plan.Item{
		{SourcePath: filepath.Join(dir, "gone.mkv"), DestPath: filepath.Join(dir, "x.mkv"), Status: plan.StatusSkipped},
		plannedItem(src, filepath.Join(dir, "Show - S01E01.mkv")),
	}}

	report, err := Execute(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, report.Results[0].Outcome)
	assert.Equal(t, OutcomeSuccess, report.Results[1].Outcome)
}

func TestDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "show.s01e01.mkv")
	writeFile(t, src)

	p := &plan.Plan{Items: []plan.Item{
		plannedItem(src, filepath.Join(dir, "Show - S01E01.mkv")),
	}}

	report, err := DryRun(p)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, OutcomeSuccess, report.Results[0].Outcome)

	assert.True(t, exists(src))
	assert.False(t, exists(filepath.Join(dir, "Show - S01E01.mkv")))
}

func TestExecuteCancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "show.s01e01.mkv")
	writeFile(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &plan.Plan{Items: []plan.Item{
		plannedItem(src, filepath.Join(dir, "Show - S01E01.mkv")),
	}}

	report, err := Execute(ctx, p)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeFailed, report.Results[0].Outcome)
	assert.True(t, exists(src))
}
