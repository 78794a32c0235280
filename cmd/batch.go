package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/oracle/internal/batch"
	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var pf providerFlags
	var readingType string
	var dir string
	var output string
	var yamlOutput string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Read every photo in a directory",
		Long: `Runs one reading per image in a directory and saves the results.

Results are written to a Parquet file, one row per image. Images that fail
are kept with their error message. An optional YAML report adds a summary
with success counts and the mean section score.`,
		Example: `  # Read all palms in ./palms
  oracle batch --type palm --dir ./palms

  # Four parallel readings with a YAML report
  oracle batch --type face --dir ./faces --concurrency 4 --yaml faces.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := models.ParseReadingType(readingType)
			if err != nil {
				return err
			}
			cfg, err := pf.load()
			if err != nil {
				return err
			}
			gateway, err := cfg.NewGateway()
			if err != nil {
				return err
			}

			records, err := batch.Run(cmd.Context(), gateway, batch.Options{
				Dir:         dir,
				Type:        t,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}

			if err := batch.SaveParquet(output, records); err != nil {
				return err
			}
			slog.Info("Readings saved", "file", output, "records", len(records))

			if yamlOutput != "" {
				runConfig := batch.RunConfig{
					Provider:  cfg.Provider,
					Model:     cfg.ResolveModel(),
					Type:      string(t),
					Dir:       dir,
					Timestamp: time.Now().Format(time.RFC3339),
				}
				if err := batch.SaveYAML(yamlOutput, runConfig, records); err != nil {
					return err
				}
				slog.Info("Report saved", "file", yamlOutput)
			}

			summary := batch.Summarize(records)
			fmt.Fprintf(cmd.OutOrStdout(), "%d readings: %d succeeded, %d failed, mean score %.1f\n",
				summary.Total, summary.Succeeded, summary.Failed, summary.MeanScore)
			return nil
		},
	}

	pf.register(cmd)
	cmd.Flags().StringVarP(&readingType, "type", "t", "", "Reading type: palm or face")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of photos")
	cmd.Flags().StringVarP(&output, "output", "o", "readings.parquet", "Parquet output file")
	cmd.Flags().StringVar(&yamlOutput, "yaml", "", "Optional YAML report file")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Number of readings to run in parallel")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
