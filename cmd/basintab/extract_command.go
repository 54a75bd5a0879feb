package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var noJournal bool

	cmd := &cobra.Command{
		Use:   "extract <product>",
		Short: "Extract pending scenes for a product into its catalog tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, store, err := ctx.newRunner(!noJournal)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			summary, err := r.Run(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Available scenes", fmt.Sprintf("%d", summary.Available)},
				{"Pending", fmt.Sprintf("%d", summary.Pending)},
				{"Attempted", fmt.Sprintf("%d", summary.Attempted)},
				{"Succeeded", fmt.Sprintf("%d", summary.Succeeded)},
				{"Failed", fmt.Sprintf("%d", summary.Failed)},
			}
			if summary.Incomplete > 0 {
				rows = append(rows, []string{"Awaiting tiles", fmt.Sprintf("%d", summary.Incomplete)})
			}
			if summary.Malformed > 0 {
				rows = append(rows, []string{"Malformed names", fmt.Sprintf("%d", summary.Malformed)})
			}
			fmt.Fprintln(out, renderTable([]string{"Run", summary.Product}, rows, []columnAlignment{alignLeft, alignRight}))
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d scenes failed; rerun to retry them", summary.Failed, summary.Attempted)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Process at most this many pending scenes (0 = all)")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "Skip recording the run in the journal database")
	return cmd
}
