package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevanw/episodic/internal/executor"
	"github.com/sevanw/episodic/internal/journal"
	"github.com/sevanw/episodic/internal/logging"
	"github.com/sevanw/episodic/internal/plan"
	"github.com/sevanw/episodic/internal/review"
	"github.com/sevanw/episodic/internal/ui"
)

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute the saved rename plan",
		Long: `Execute the plan created by 'episodic plan'.

By default an interactive review screen opens first; items can be toggled
off before anything is renamed. Every completed batch is recorded in the
journal so 'episodic undo' can revert it.

Examples:
  episodic apply            # review, then rename
  episodic apply --yes      # skip the review screen
  episodic apply --dry-run  # show what would happen`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load()
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("no saved plan; run 'episodic plan' first")
			}

			// The plan file may have been hand-edited since it was saved.
			p.Revalidate()

			if !assumeYes && cfg.Options.RequireApproval {
				if !ui.IsTerminal() {
					return fmt.Errorf("not a terminal; use --yes to apply without review")
				}
				log.SetQuiet(true)
				approved, err := review.Run(p)
				log.SetQuiet(false)
				if err != nil {
					return err
				}
				if !approved {
					fmt.Println("aborted, plan left unchanged")
					return nil
				}
				// Persist reviewer edits even if execution fails below.
				if err := plan.Save(p); err != nil {
					return fmt.Errorf("saving reviewed plan: %w", err)
				}
			}

			if p.Pending() == 0 {
				fmt.Println("nothing to rename")
				return nil
			}

			if dryRun || cfg.Options.DryRun {
				report, err := executor.DryRun(p)
				if err != nil {
					return describePreflight(err)
				}
				ui.PrintReport(report)
				return nil
			}

			report, err := executor.Execute(cmd.Context(), p)
			if err != nil {
				var pfErr *executor.PreflightError
				if errors.As(err, &pfErr) {
					return describePreflight(err)
				}
				ui.PrintReport(report)
				log.Error("apply", "execution aborted", err)
				return err
			}

			ui.PrintReport(report)
			recordBatch(p, report)

			if err := plan.Delete(); err != nil {
				log.Warn("apply", "could not remove plan file", logging.F("error", err))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "apply without the review screen")

	return cmd
}

func describePreflight(err error) error {
	var pfErr *executor.PreflightError
	if errors.As(err, &pfErr) {
		for _, v := range pfErr.Violations {
			ui.ErrorMsg("%s", v)
		}
		return fmt.Errorf("plan failed preflight; re-run 'episodic plan'")
	}
	return err
}

// recordBatch writes the completed renames to the journal for undo.
func recordBatch(p *plan.Plan, report *executor.Report) {
	var moves []journal.Move
	for _, res := range report.Results {
		if res.Outcome == executor.OutcomeSuccess {
			moves = append(moves, journal.Move{
				SourcePath: res.Item.SourcePath,
				DestPath:   res.Item.DestPath,
			})
		}
	}
	if len(moves) == 0 {
		return
	}

	j, err := journal.Open()
	if err != nil {
		log.Error("apply", "journal unavailable, undo will not cover this batch", err)
		return
	}
	defer j.Close()

	id, err := j.RecordBatch(p.Show, moves)
	if err != nil {
		log.Error("apply", "failed to record batch", err)
		return
	}
	log.Info("apply", "batch recorded",
		logging.F("batch", id),
		logging.F("moves", len(moves)))
}
