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

var seriesCmd = &cobra.Command{
	Use:   "series <cbsa-name>",
	Short: "Show the average annual HPI series for a metro area",
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

		points, err := env.Engine.AggregateByYear(ctx, sel)
		if err != nil {
			return eris.Wrap(err, "series")
		}

		summary := hpi.Summarize(points)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Points  []model.YearPoint   `json:"points"`
				Summary model.SeriesSummary `json:"summary"`
			}{points, summary})
		}

		if len(points) == 0 {
			fmt.Fprintf(os.Stderr, "No HPI data for %q over %d-%d.\n", sel.CBSAName, sel.YearMin, sel.YearMax)
			return nil
		}

		formatSeries(os.Stdout, points)
		fmt.Fprintf(os.Stdout, "\nPeak: %.2f (%d)  Trough: %.2f (%d)  Drop: %.2f%%\n",
			summary.PeakHPI, summary.PeakYear, summary.TroughHPI, summary.TroughYear, summary.PercentDrop)
		return nil
	},
}

func init() {
	windowFlags(seriesCmd)
	rootCmd.AddCommand(seriesCmd)
}

// formatSeries writes the year series to w.
func formatSeries(out io.Writer, points []model.YearPoint) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "YEAR\tAVG_HPI")
	_, _ = fmt.Fprintln(w, "----\t-------")
	for _, p := range points {
		_, _ = fmt.Fprintf(w, "%d\t%.2f\n", p.Year, p.AvgHPI)
	}
	_ = w.Flush()
}
