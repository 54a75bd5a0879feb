package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPendingCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "pending <product>",
		Short: "List the scenes an extraction run would process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := ctx.newRunner(false)
			if err != nil {
				return err
			}

			report, err := r.Pending(args[0], limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Scenes) == 0 {
				fmt.Fprintf(out, "Nothing pending for %s (%d scenes already extracted)\n", report.Product, report.Done)
			} else {
				rows := make([][]string, 0, len(report.Scenes))
				for _, s := range report.Scenes {
					rows = append(rows, []string{s.ID, s.Date.Format("2006-01-02"), fmt.Sprintf("%d", len(s.Files))})
				}
				fmt.Fprintln(out, renderTable([]string{"Scene", "Date", "Files"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
				fmt.Fprintf(out, "%d pending, %d already extracted\n", len(report.Scenes), report.Done)
			}

			if len(report.Incomplete) > 0 {
				fmt.Fprintf(out, "Awaiting tiles: %s\n", strings.Join(report.Incomplete, ", "))
			}
			if len(report.Overpopulated) > 0 {
				fmt.Fprintf(out, "Extra tiles: %s\n", strings.Join(report.Overpopulated, ", "))
			}
			if len(report.Malformed) > 0 {
				fmt.Fprintf(out, "Unparseable names: %s\n", strings.Join(report.Malformed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Show at most this many pending scenes (0 = all)")
	return cmd
}
