package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/gfc-explorer/internal/hpi"
	"github.com/sells-group/gfc-explorer/internal/model"
)

var tractsCmd = &cobra.Command{
	Use:   "tracts <cbsa-name>",
	Short: "Show per-tract HPI extremes and losses for a metro area",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		sel, err := selectionFromFlags(cmd, args[0])
		if err != nil {
			return err
		}

		rows, err := env.Engine.AggregateByTract(ctx, sel)
		if err != nil {
			return eris.Wrap(err, "tracts")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		if len(rows) == 0 {
			fmt.Fprintf(os.Stderr, "No tracts found for %q over %d-%d.\n", sel.CBSAName, sel.YearMin, sel.YearMax)
			return nil
		}

		formatTractList(os.Stdout, rows)

		summary := hpi.SummarizeTracts(sel.CBSAName, rows)
		fmt.Fprintf(os.Stdout, "\nPopulation: %s  Trough year: %d  Peak year: %d  Avg loss: %.2f%%\n",
			summary.PopulationText, summary.MinHPIYear, summary.MaxHPIYear, summary.AvgHPILoss*100)
		return nil
	},
}

// selectionFromFlags builds a Selection from the shared --from/--to flags.
func selectionFromFlags(cmd *cobra.Command, cbsaName string) (model.Selection, error) {
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	sel := model.Selection{CBSAName: cbsaName, YearMin: from, YearMax: to}.Normalize()
	if sel.YearMin > sel.YearMax {
		return model.Selection{}, eris.Errorf("invalid window %d-%d", sel.YearMin, sel.YearMax)
	}
	return sel, nil
}

func windowFlags(cmd *cobra.Command) {
	cmd.Flags().Int("from", model.DefaultYearMin, "first year of the window")
	cmd.Flags().Int("to", model.DefaultYearMax, "last year of the window")
	cmd.Flags().Bool("json", false, "emit JSON instead of a table")
}

func init() {
	windowFlags(tractsCmd)
	rootCmd.AddCommand(tractsCmd)
}

// formatTractList writes a tabular per-tract loss table to w.
func formatTractList(out io.Writer, rows []model.TractAggregate) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIPS\tPOPULATION\tMIN_HPI\tMAX_HPI\tMIN_YR\tMAX_YR\tLOSS")
	_, _ = fmt.Fprintln(w, "----\t----------\t-------\t-------\t------\t------\t----")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%d\t%d\t%.2f%%\n",
			r.FIPS, r.Population, r.MinHPI, r.MaxHPI, r.MinYear, r.MaxYear, r.HPILoss*100)
	}
	_ = w.Flush()
}
