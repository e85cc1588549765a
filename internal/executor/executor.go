// Package executor applies a rename plan to the filesystem.
//
// Execution is transactional at batch granularity: every completed rename is
// kept in an in-memory undo log, and the first failure rolls the batch back
// in reverse order so the directory is left exactly as it was found.
package executor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sevanw/episodic/internal/plan"
)

// Outcome records what happened to one plan item during a run.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeFailed       Outcome = "failed"
	OutcomeRolledBack   Outcome = "rolled_back"
	OutcomeNotAttempted Outcome = "not_attempted"
	// OutcomeSkipped covers items the plan itself excluded.
	OutcomeSkipped Outcome = "skipped"
)

// ItemResult pairs a plan item with its execution outcome.
type ItemResult struct {
	Item    plan.Item
	Outcome Outcome
	Err     error
}

// Report summarizes one execution run. Results is index-aligned with the
// plan's items.
type Report struct {
	Results    []ItemResult
	Attempted  int
	Succeeded  int
	RolledBack bool
	DryRun     bool
	Duration   time.Duration
	// Err is the failure that aborted the run, nil on full success.
	Err error
	// RollbackErrs holds renames that could not be undone. Non-empty means
	// the directory was left partially renamed and needs manual attention.
	RollbackErrs []error
}

// PreflightError reports why a plan was refused before any rename ran.
type PreflightError struct {
	Violations []string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("plan failed preflight: %s", strings.Join(e.Violations, "; "))
}

// preflight checks every executable item against the filesystem and against
// its siblings. It must find nothing wrong before the first rename runs; a
// plan that fails here has mutated nothing.
func preflight(p *plan.Plan) *PreflightError {
	var violations []string
	seen := make(map[string]string, len(p.Items))

	for _, it := range p.Items {
		if it.Status != plan.StatusPlanned {
			continue
		}

		if _, err := os.Lstat(it.SourcePath); err != nil {
			violations = append(violations, fmt.Sprintf("source missing: %s", it.SourcePath))
			continue
		}

		key := strings.ToLower(it.DestPath)
		if prev, dup := seen[key]; dup {
			violations = append(violations, fmt.Sprintf("destination shared by %s and %s", prev, it.SourcePath))
		}
		seen[key] = it.SourcePath

		// A case-only rename targets a path that already "exists" on
		// case-insensitive filesystems; only that self-collision is allowed.
		if strings.EqualFold(it.DestPath, it.SourcePath) {
			continue
		}
		if _, err := os.Lstat(it.DestPath); err == nil {
			violations = append(violations, fmt.Sprintf("destination already exists: %s", it.DestPath))
		}
	}

	if len(violations) > 0 {
		return &PreflightError{Violations: violations}
	}
	return nil
}

// DryRun runs preflight and reports what Execute would do, without touching
// the filesystem.
func DryRun(p *plan.Plan) (*Report, error) {
	start := time.Now()
	if err := preflight(p); err != nil {
		return nil, err
	}

	report := &Report{DryRun: true, Results: make([]ItemResult, len(p.Items))}
	for i, it := range p.Items {
		report.Results[i] = ItemResult{Item: it, Outcome: OutcomeSkipped}
		if it.Status == plan.StatusPlanned {
			report.Results[i].Outcome = OutcomeSuccess
			report.Attempted++
			report.Succeeded++
		}
	}
	report.Duration = time.Since(start)
	return report, nil
}

// Execute applies the plan's pending renames in order. On the first failure
// it undoes every completed rename in reverse and reports per-item outcomes;
// the returned error is the failure that aborted the run.
func Execute(ctx context.Context, p *plan.Plan) (*Report, error) {
	start := time.Now()
	if err := preflight(p); err != nil {
		return nil, err
	}

	report := &Report{Results: make([]ItemResult, len(p.Items))}
	for i, it := range p.Items {
		report.Results[i] = ItemResult{Item: it, Outcome: OutcomeSkipped}
		if it.Status == plan.StatusPlanned {
			report.Results[i].Outcome = OutcomeNotAttempted
		}
	}

	// Undo log of completed renames, oldest first.
	var done []int

	fail := func(i int, err error) {
		report.Results[i].Outcome = OutcomeFailed
		report.Results[i].Err = err
		report.Err = err
		rollback(report, done)
		report.Duration = time.Since(start)
	}

	for i, it := range p.Items {
		if it.Status != plan.StatusPlanned {
			continue
		}

		if err := ctx.Err(); err != nil {
			fail(i, err)
			return report, err
		}

		report.Attempted++
		if err := os.Rename(it.SourcePath, it.DestPath); err != nil {
			err = fmt.Errorf("rename %s: %w", it.SourcePath, err)
			fail(i, err)
			return report, err
		}
		report.Results[i].Outcome = OutcomeSuccess
		report.Succeeded++
		done = append(done, i)
	}

	report.Duration = time.Since(start)
	return report, nil
}

// rollback undoes completed renames newest first.
func rollback(report *Report, done []int) {
	report.RolledBack = len(done) > 0
	for j := len(done) - 1; j >= 0; j-- {
		i := done[j]
		it := report.Results[i].Item
		if err := os.Rename(it.DestPath, it.SourcePath); err != nil {
			report.RollbackErrs = append(report.RollbackErrs,
				fmt.Errorf("restore %s: %w", it.SourcePath, err))
			continue
		}
		report.Results[i].Outcome = OutcomeRolledBack
		report.Succeeded--
	}
}
