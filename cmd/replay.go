package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rideslots/app"
	"github.com/kilianp07/rideslots/core/replay"
	"github.com/kilianp07/rideslots/infra/logger"
	"github.com/kilianp07/rideslots/infra/mqtt"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Publish every snapshot over MQTT in timestamp order",
	Args:  cobra.NoArgs,
	RunE:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := app.LoadDataset(cfg.Source)
	if err != nil {
		return err
	}
	pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("mqtt publisher: %w", err)
	}
	defer pub.Disconnect()

	log := logger.New("replay")
	n, err := replay.Run(ctx, ds.Analytics, pub, replay.Options{
		Topic:    cfg.MQTT.FrameTopic(),
		Interval: cfg.Replay.Interval(),
		Loop:     cfg.Replay.Loop,
	}, log)
	if err != nil {
		return err
	}
	log.Infof("published %d frames to %s", n, cfg.MQTT.FrameTopic())
	return nil
}
