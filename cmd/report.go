package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/oracle/internal/batch"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var input string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the readings saved by a batch run",
		Long: `Loads a Parquet file written by "oracle batch" and prints it as a
text report or YAML document.`,
		Example: `  # Print a text report
  oracle report --input readings.parquet

  # Print the same records as YAML
  oracle report --input readings.parquet --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := batch.LoadParquet(input)
			if err != nil {
				return err
			}

			switch format {
			case "text":
				return batch.PrintReport(cmd.OutOrStdout(), records)
			case "yaml":
				return batch.WriteYAML(cmd.OutOrStdout(), batch.RunConfig{}, records)
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "readings.parquet", "Parquet file written by batch")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or yaml")

	return cmd
}
