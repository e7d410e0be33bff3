package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/gfc-explorer/internal/model"
)

var cbsasCmd = &cobra.Command{
	Use:   "cbsas",
	Short: "List metro areas ordered by population",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		opts, err := env.Engine.CBSAOptions(ctx)
		if err != nil {
			return eris.Wrap(err, "cbsas")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && limit < len(opts) {
			opts = opts[:limit]
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(opts)
		}

		if len(opts) == 0 {
			fmt.Fprintln(os.Stderr, "No metro areas found.")
			return nil
		}

		formatCBSAList(os.Stdout, opts)
		return nil
	},
}

func init() {
	cbsasCmd.Flags().Int("limit", 0, "max number of metro areas to display (0 for all)")
	cbsasCmd.Flags().Bool("json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(cbsasCmd)
}

// formatCBSAList writes a tabular list of metro areas to w.
func formatCBSAList(out io.Writer, opts []model.CBSAOption) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CBSA\tPOPULATION")
	_, _ = fmt.Fprintln(w, "----\t----------")
	for _, o := range opts {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", o.Name, o.Population)
	}
	_ = w.Flush()
}
