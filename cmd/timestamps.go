package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rideslots/app"
)

var timestampsCmd = &cobra.Command{
	Use:   "timestamps",
	Short: "Print every timestamp of the dataset",
	Args:  cobra.NoArgs,
	RunE:  runTimestamps,
}

func init() {
	rootCmd.AddCommand(timestampsCmd)
}

func runTimestamps(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := app.LoadDataset(cfg.Source)
	if err != nil {
		return err
	}
	for _, ts := range ds.Analytics.Timestamps() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), ts); err != nil {
			return err
		}
	}
	return nil
}
