package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"basintab/internal/journal"
	"basintab/internal/variable"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show table record counts and recent run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			universe, err := variable.ReadUniverse(cfg.Paths.CatchmentsFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printer := message.NewPrinter(language.English)

			for _, line := range renderSectionHeader("Catalog tables", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Catchments", statusInfo, printer.Sprintf("%d", len(universe)), colorize))
			for _, product := range cfg.Products {
				rows := make([][]string, 0, len(product.Variables))
				for _, vc := range product.Variables {
					v := variable.New(vc, cfg)
					if err := v.Load(universe); err != nil {
						return err
					}
					rows = append(rows, []string{v.Name, printer.Sprintf("%d", v.Records()), v.ValuePath})
				}
				fmt.Fprintf(out, "\nProduct %s\n", product.Name)
				fmt.Fprintln(out, renderTable([]string{"Variable", "Records", "Value table"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft}))
			}

			store, err := journal.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, line := range renderSectionHeader("Recent runs", colorize) {
				fmt.Fprintln(out, line)
			}
			runs, err := store.RecentRuns(cmd.Context(), "", 5)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, renderStatusLine("History", statusInfo, "no runs recorded", colorize))
				return nil
			}
			for _, run := range runs {
				kind := statusOK
				if run.Failed > 0 {
					kind = statusWarn
				}
				if run.FinishedAt.IsZero() {
					kind = statusError
				}
				detail := printer.Sprintf("%s attempted %d, succeeded %d, failed %d",
					run.StartedAt.Local().Format("2006-01-02 15:04"), run.Attempted, run.Succeeded, run.Failed)
				fmt.Fprintln(out, renderStatusLine(run.Product, kind, detail, colorize))
			}
			return nil
		},
	}
}
