package ui

import (
	"fmt"
	"path/filepath"

	"github.com/sevanw/episodic/internal/executor"
	"github.com/sevanw/episodic/internal/matcher"
	"github.com/sevanw/episodic/internal/plan"
)

func statusCell(status plan.Status) string {
	switch status {
	case plan.StatusPlanned:
		return Planned(string(status))
	case plan.StatusConflict:
		return Conflict(string(status))
	default:
		return Skipped(string(status))
	}
}

func matchCell(res matcher.Result) string {
	switch res.Outcome {
	case matcher.Matched:
		return Success(res.Outcome.String())
	case matcher.Ambiguous:
		return Warning(res.Outcome.String())
	default:
		return Dim(res.Outcome.String())
	}
}

// PrintPlan renders the plan as a table plus a summary line.
func PrintPlan(p *plan.Plan) {
	table := NewTable("STATUS", "MATCH", "SOURCE", "DESTINATION")
	conflicts, skipped := 0, 0
	for _, it := range p.Items {
		switch it.Status {
		case plan.StatusConflict:
			conflicts++
		case plan.StatusSkipped:
			skipped++
		}
		dest := filepath.Base(it.DestPath)
		if it.Status == plan.StatusSkipped && it.DestPath == it.SourcePath {
			dest = Dim("(unchanged)")
		}
		table.AddRow(
			statusCell(it.Status),
			matchCell(it.Basis),
			filepath.Base(it.SourcePath),
			dest,
		)
	}
	table.Render()

	fmt.Printf("%d to rename, %d skipped, %d conflicts\n", p.Pending(), skipped, conflicts)
	if conflicts > 0 {
		WarningMsg("conflicts must be resolved before the plan can be applied")
	}
}

// PrintAmbiguities lists candidate episodes for each ambiguous file.
func PrintAmbiguities(results []matcher.Result) {
	for _, res := range results {
		if res.Outcome != matcher.Ambiguous {
			continue
		}
		fmt.Println(Warning("? ") + filepath.Base(res.Source.Path))
		for _, cand := range res.Candidates {
			fmt.Printf("    %s S%02dE%02d %s (score %.2f)\n",
				Dim("-"), cand.Entry.Season, cand.Entry.Episode, cand.Entry.Title, cand.Score)
		}
	}
}

// PrintReport renders the execution outcome.
func PrintReport(r *executor.Report) {
	for _, res := range r.Results {
		base := filepath.Base(res.Item.SourcePath)
		switch res.Outcome {
		case executor.OutcomeSuccess:
			if r.DryRun {
				InfoMsg("would rename %s -> %s", base, Path(filepath.Base(res.Item.DestPath)))
			} else {
				SuccessMsg("%s -> %s", base, Path(filepath.Base(res.Item.DestPath)))
			}
		case executor.OutcomeFailed:
			ErrorMsg("%s: %v", base, res.Err)
		case executor.OutcomeRolledBack:
			WarningMsg("%s: rolled back", base)
		case executor.OutcomeNotAttempted:
			fmt.Println(Dim("- " + base + ": not attempted"))
		}
	}

	if r.Err != nil {
		ErrorMsg("run aborted: %v", r.Err)
		for _, err := range r.RollbackErrs {
			ErrorMsg("rollback failed: %v", err)
		}
		return
	}
	verb := "renamed"
	if r.DryRun {
		verb = "would rename"
	}
	fmt.Printf("%s %d of %d files in %s\n", verb, r.Succeeded, r.Attempted, FormatDuration(r.Duration))
}
