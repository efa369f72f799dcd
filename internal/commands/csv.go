// internal/commands/csv.go
package foliolab

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/mgearhart/foliolab/internal/offload"
	"github.com/spf13/cobra"
)

var (
	csvHeader  = color.New(color.FgCyan, color.Bold).SprintFunc()
	csvNumeric = color.New(color.FgGreen).SprintFunc()
	csvText    = color.New(color.FgYellow).SprintFunc()
	csvAnomaly = color.New(color.FgRed).SprintFunc()
)

// csvCmd parses and profiles a CSV file through the background host and
// prints per-column statistics, flagging anomalous numeric cells.
var csvCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Parse and profile a CSV file",
	Long:  `The 'csv' command parses a CSV file, classifies each column as numeric or text, and reports per-column statistics with outlying numeric cells flagged.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		timeout := offload.DefaultTimeout
		if cfg := GetConfig(); cfg != nil {
			timeout = cfg.OffloadTimeout()
		}
		host := offload.NewHost(timeout)
		defer host.Close()

		table, profile, err := host.ProfileCSV(cmd.Context(), string(data))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %d rows, %d columns\n", csvHeader(filepath.Base(args[0])), profile.Rows, profile.Columns)
		for _, col := range profile.Summary {
			if col.Numeric != nil {
				st := col.Numeric
				fmt.Fprintf(out, "  %s  %s  mean=%.4g std=%.4g count=%d distinct=%d\n",
					csvHeader(col.Header), csvNumeric("numeric"), st.Mean, st.Std, col.Count, col.Distinct)
				for _, a := range st.Anomalies {
					fmt.Fprintf(out, "    %s row %d value=%.4g z=%.2f\n", csvAnomaly("anomaly"), a.Row, a.Value, a.ZScore)
				}
			} else {
				fmt.Fprintf(out, "  %s  %s  count=%d distinct=%d\n",
					csvHeader(col.Header), csvText("text"), col.Count, col.Distinct)
			}
		}

		if DebugEnabled() {
			pp.Println(table.Headers)
			pp.Println(profile)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(csvCmd)
}
