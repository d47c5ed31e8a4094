package replay_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rideslots/core/analytics"
	"github.com/kilianp07/rideslots/core/eventlog/eventlogtest"
	"github.com/kilianp07/rideslots/core/model"
	"github.com/kilianp07/rideslots/core/replay"
	"github.com/kilianp07/rideslots/infra/logger"
)

type fakePublisher struct {
	topics   []string
	payloads [][]byte
	failAt   int
	onPub    func(n int)
}

func (f *fakePublisher) Publish(topic string, payload []byte) error {
	if f.failAt > 0 && len(f.payloads)+1 == f.failAt {
		return errors.New("broker down")
	}
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	if f.onPub != nil {
		f.onPub(len(f.payloads))
	}
	return nil
}

func (f *fakePublisher) frames(t *testing.T) []replay.Frame {
	t.Helper()
	out := make([]replay.Frame, len(f.payloads))
	for i, p := range f.payloads {
		require.NoError(t, json.Unmarshal(p, &out[i]))
	}
	return out
}

func TestRun_PublishesEveryTimestampInOrder(t *testing.T) {
	src := analytics.New(eventlogtest.Fleet().Store())
	pub := &fakePublisher{}

	n, err := replay.Run(context.Background(), src, pub, replay.Options{Topic: "lot/frame"}, logger.NopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"lot/frame", "lot/frame", "lot/frame"}, pub.topics)

	frames := pub.frames(t)
	assert.Equal(t, eventlogtest.T0, frames[0].Timestamp)
	assert.Equal(t, eventlogtest.T2, frames[2].Timestamp)
	assert.Equal(t, 3, frames[0].Stats.TotalSlots)
	assert.Equal(t, 2, frames[0].Stats.Occupied)
	// T2 has no row for slot 3; the frame still lists it as vacant.
	require.Len(t, frames[2].Slots, 3)
	last := frames[2].Slots[2]
	assert.Equal(t, model.IntSlot(3), last.SlotID)
	assert.False(t, last.Occupied)
	assert.Nil(t, last.Plate)
	assert.Equal(t, 2, frames[2].Stats.Occupied)
}

func TestRun_LoopStopsOnCancel(t *testing.T) {
	src := analytics.New(eventlogtest.Fleet().Store())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pub := &fakePublisher{onPub: func(n int) {
		if n == 5 {
			cancel()
		}
	}}

	n, err := replay.Run(ctx, src, pub, replay.Options{Topic: "t", Loop: true, Interval: time.Millisecond}, logger.NopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	frames := pub.frames(t)
	assert.Equal(t, eventlogtest.T0, frames[3].Timestamp)
}

func TestRun_PublishError(t *testing.T) {
	src := analytics.New(eventlogtest.Fleet().Store())
	pub := &fakePublisher{failAt: 2}

	n, err := replay.Run(context.Background(), src, pub, replay.Options{Topic: "t"}, logger.NopLogger{})
	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, 1, n)
}

func TestRun_EmptyDataset(t *testing.T) {
	src := analytics.New(eventlogtest.New().Store())
	n, err := replay.Run(context.Background(), src, &fakePublisher{}, replay.Options{Topic: "t", Loop: true}, logger.NopLogger{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuildFrame_UnknownTimestamp(t *testing.T) {
	src := analytics.New(eventlogtest.Fleet().Store())
	_, err := replay.BuildFrame(src, eventlogtest.MustTime("2030-01-01T00:00:00"))
	assert.Error(t, err)
}
