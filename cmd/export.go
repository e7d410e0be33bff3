package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/gfc-explorer/internal/hpi"
	"github.com/sells-group/gfc-explorer/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export <cbsa-name>",
	Short: "Export a metro area's tract losses and HPI series to an XLSX workbook",
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
			return eris.Wrap(err, "export: tracts")
		}
		points, err := env.Engine.AggregateByYear(ctx, sel)
		if err != nil {
			return eris.Wrap(err, "export: series")
		}

		out, _ := cmd.Flags().GetString("out")
		if err := writeWorkbook(out, sel, rows, points); err != nil {
			return err
		}

		zap.L().Info("workbook written",
			zap.String("path", out),
			zap.Int("tracts", len(rows)),
			zap.Int("years", len(points)),
		)
		fmt.Fprintf(os.Stdout, "Wrote %s (%d tracts, %d years)\n", out, len(rows), len(points))
		return nil
	},
}

func init() {
	windowFlags(exportCmd)
	exportCmd.Flags().String("out", "hpi-export.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}

// writeWorkbook builds a two-sheet workbook: per-tract losses and the annual
// series with its summary row.
func writeWorkbook(path string, sel model.Selection, rows []model.TractAggregate, points []model.YearPoint) error {
	f := xlsx.NewFile()

	tractSheet, err := f.AddSheet("Tracts")
	if err != nil {
		return eris.Wrap(err, "export: add tracts sheet")
	}
	title := tractSheet.AddRow()
	title.AddCell().SetString(fmt.Sprintf("%s %d-%d", sel.CBSAName, sel.YearMin, sel.YearMax))

	header := tractSheet.AddRow()
	for _, h := range []string{"FIPS", "Population", "Min HPI", "Max HPI", "Min Year", "Max Year", "Loss"} {
		header.AddCell().SetString(h)
	}
	for _, r := range rows {
		row := tractSheet.AddRow()
		row.AddCell().SetString(r.FIPS)
		row.AddCell().SetInt64(r.Population)
		row.AddCell().SetFloat(r.MinHPI)
		row.AddCell().SetFloat(r.MaxHPI)
		row.AddCell().SetInt(r.MinYear)
		row.AddCell().SetInt(r.MaxYear)
		row.AddCell().SetFloat(r.HPILoss)
	}

	seriesSheet, err := f.AddSheet("Series")
	if err != nil {
		return eris.Wrap(err, "export: add series sheet")
	}
	header = seriesSheet.AddRow()
	header.AddCell().SetString("Year")
	header.AddCell().SetString("Avg HPI")
	for _, p := range points {
		row := seriesSheet.AddRow()
		row.AddCell().SetInt(p.Year)
		row.AddCell().SetFloat(p.AvgHPI)
	}

	if summary := hpi.Summarize(points); !summary.Empty {
		row := seriesSheet.AddRow()
		row.AddCell().SetString(fmt.Sprintf("Peak %d: %.2f  Trough %d: %.2f  Drop %.2f%%",
			summary.PeakYear, summary.PeakHPI, summary.TroughYear, summary.TroughHPI, summary.PercentDrop))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}
