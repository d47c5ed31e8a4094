// Package replay streams the reconstructed lot, one frame per timestamp, to
// a publisher.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kilianp07/rideslots/core/logger"
	"github.com/kilianp07/rideslots/core/model"
	"github.com/kilianp07/rideslots/core/mqtt"
	"github.com/kilianp07/rideslots/core/occupancy"
)

// Frame is the published payload.
type Frame struct {
	Timestamp string                   `json:"timestamp"`
	Stats     occupancy.Stats          `json:"stats"`
	Slots     []occupancy.SlotSnapshot `json:"slots"`
}

// Source provides the frames to replay.
type Source interface {
	Instants() []time.Time
	SnapshotAt(t time.Time) ([]occupancy.SlotSnapshot, error)
	StatsAt(t time.Time) (occupancy.Stats, error)
}

// Options tune a replay run.
type Options struct {
	Topic    string
	Interval time.Duration
	// Loop restarts at the first timestamp after the last one.
	Loop bool
}

// BuildFrame assembles the frame for t.
func BuildFrame(src Source, t time.Time) (Frame, error) {
	slots, err := src.SnapshotAt(t)
	if err != nil {
		return Frame{}, err
	}
	stats, err := src.StatsAt(t)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Timestamp: model.FormatTimestamp(t), Stats: stats, Slots: slots}, nil
}

// Run publishes every frame in timestamp order, waiting opts.Interval between
// frames. It returns the number of frames published; cancellation of ctx is
// not reported as an error.
func Run(ctx context.Context, src Source, pub mqtt.Publisher, opts Options, log logger.Logger) (int, error) {
	instants := src.Instants()
	if len(instants) == 0 {
		return 0, nil
	}
	sent := 0
	for {
		for _, t := range instants {
			if ctx.Err() != nil {
				return sent, nil
			}
			frame, err := BuildFrame(src, t)
			if err != nil {
				return sent, err
			}
			payload, err := json.Marshal(frame)
			if err != nil {
				return sent, err
			}
			if err := pub.Publish(opts.Topic, payload); err != nil {
				return sent, fmt.Errorf("publish frame %s: %w", frame.Timestamp, err)
			}
			sent++
			log.Debugw("frame published", map[string]any{
				"timestamp": frame.Timestamp,
				"occupied":  frame.Stats.Occupied,
				"slots":     len(frame.Slots),
			})
			if !wait(ctx, opts.Interval) {
				return sent, nil
			}
		}
		if !opts.Loop {
			log.Infof("replay finished: %d frames", sent)
			return sent, nil
		}
	}
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
