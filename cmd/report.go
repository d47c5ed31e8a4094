package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rideslots/app"
	"github.com/kilianp07/rideslots/core/analytics"
	"github.com/kilianp07/rideslots/pkg/report"
)

var (
	reportOut  string
	reportBins int
	reportTop  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the dataset aggregates as an HTML chart page",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "-", "output file, - for stdout")
	reportCmd.Flags().IntVar(&reportBins, "bins", analytics.DefaultHistogramBins, "dwell histogram bins")
	reportCmd.Flags().IntVar(&reportTop, "top", 0, "limit the utilization chart to the busiest slots")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	if reportBins < 1 || reportBins > 1000 {
		return fmt.Errorf("bins must be an integer between 1 and 1000")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := app.LoadDataset(cfg.Source)
	if err != nil {
		return err
	}
	var w io.Writer = cmd.OutOrStdout()
	if reportOut != "-" {
		f, err := os.Create(reportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return report.Render(w, ds.Analytics, report.Options{Bins: reportBins, TopSlots: reportTop})
}
