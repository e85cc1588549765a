package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sevanw/episodic/internal/journal"
	"github.com/sevanw/episodic/internal/logging"
	"github.com/sevanw/episodic/internal/ui"
)

func newUndoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Revert the last applied rename batch",
		Long: `Rename the files of the most recent batch back to their original names,
newest rename first. A batch can be undone once.

Examples:
  episodic undo
  episodic undo --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.Open()
			if err != nil {
				return err
			}
			defer j.Close()

			batch, err := j.LastBatch()
			if err != nil {
				return err
			}
			if batch == nil {
				fmt.Println("nothing to undo")
				return nil
			}

			fmt.Printf("undoing batch %d (%d renames", batch.ID, len(batch.Moves))
			if batch.Show != "" {
				fmt.Printf(", %s", batch.Show)
			}
			fmt.Println(")")

			if dryRun {
				for i := len(batch.Moves) - 1; i >= 0; i-- {
					m := batch.Moves[i]
					ui.InfoMsg("would rename %s -> %s",
						filepath.Base(m.DestPath), filepath.Base(m.SourcePath))
				}
				return nil
			}

			// Newest first, mirroring rollback order.
			reverted := 0
			var failures []error
			for i := len(batch.Moves) - 1; i >= 0; i-- {
				m := batch.Moves[i]
				if err := os.Rename(m.DestPath, m.SourcePath); err != nil {
					failures = append(failures, err)
					ui.ErrorMsg("%s: %v", filepath.Base(m.DestPath), err)
					continue
				}
				reverted++
				ui.SuccessMsg("%s -> %s", filepath.Base(m.DestPath), filepath.Base(m.SourcePath))
			}

			if len(failures) > 0 {
				// The batch stays current so a fixed-up retry can finish it.
				log.Warn("undo", "batch partially reverted",
					logging.F("batch", batch.ID),
					logging.F("reverted", reverted),
					logging.F("failed", len(failures)))
				return fmt.Errorf("reverted %d of %d renames; batch left active for retry",
					reverted, len(batch.Moves))
			}

			if err := j.MarkUndone(batch.ID); err != nil {
				return err
			}
			log.Info("undo", "batch reverted", logging.F("batch", batch.ID))
			fmt.Printf("reverted %d renames\n", reverted)
			return nil
		},
	}

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently applied batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.Open()
			if err != nil {
				return err
			}
			defer j.Close()

			batches, err := j.Recent(limit)
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				fmt.Println("no batches recorded")
				return nil
			}

			table := ui.NewTable("ID", "SHOW", "APPLIED", "RENAMES", "STATE")
			for _, b := range batches {
				state := "active"
				if b.UndoneAt != nil {
					state = "undone"
				}
				table.AddRow(
					fmt.Sprintf("%d", b.ID),
					b.Show,
					b.CreatedAt.Format("2006-01-02 15:04"),
					fmt.Sprintf("%d", len(b.Moves)),
					state,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of batches to show")

	return cmd
}
