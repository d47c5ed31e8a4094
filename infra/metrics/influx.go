package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/rideslots/core/metrics"
	"github.com/kilianp07/rideslots/infra/logger"
)

// InfluxSink writes query, dataset and occupancy points to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint. A trailing
// /api/v2/write is accepted and stripped.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopSink when the
// health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordQuery writes one slot_query point.
func (s *InfluxSink) RecordQuery(ev coremetrics.QueryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("slot_query").
		AddTag("route", ev.Route).
		AddTag("status", strconv.Itoa(ev.Status)).
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDataset writes one dataset_loaded point.
func (s *InfluxSink) RecordDataset(ev coremetrics.DatasetEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dataset_loaded").
		AddTag("source", ev.Source).
		AddField("rows", ev.Rows).
		AddField("slots", ev.Slots).
		AddField("timestamps", ev.Timestamps).
		AddField("vehicles", ev.Vehicles).
		AddField("reservations", ev.Reservations).
		AddField("load_ms", round3(ev.LoadDuration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordOccupancy writes the occupancy series in a single request, one
// slot_occupancy point per timestamp.
func (s *InfluxSink) RecordOccupancy(points []coremetrics.OccupancyPoint) error {
	if len(points) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out := make([]*write.Point, 0, len(points))
	for _, pt := range points {
		out = append(out, write.NewPointWithMeasurement("slot_occupancy").
			AddField("rows", pt.Rows).
			AddField("occupied", pt.Occupied).
			AddField("rate", occupancyRate(pt)).
			SetTime(pt.Timestamp))
	}
	return s.writeAPI.WritePoint(ctx, out...)
}

func occupancyRate(pt coremetrics.OccupancyPoint) float64 {
	if pt.Rows == 0 {
		return 0
	}
	return round3(float64(pt.Occupied) / float64(pt.Rows))
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
