package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/rideslots/core/metrics"
)

// PromSink exposes query and dataset metrics to Prometheus.
type PromSink struct {
	queries    *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	rows       prometheus.Gauge
	slots      prometheus.Gauge
	timestamps prometheus.Gauge
	vehicles   prometheus.Gauge
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The scrape endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on reg. A nil registerer defaults
// to the global one. Collectors already registered by an earlier sink are
// reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.queries, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slot_queries_total",
		Help: "Total number of analytics queries served",
	}, []string{"route", "status"})); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slot_query_latency_seconds",
		Help:    "Time spent answering an analytics query",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})); err != nil {
		return nil, err
	}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&s.rows, "dataset_rows", "Observation rows in the loaded dataset"},
		{&s.slots, "dataset_slots", "Distinct parking slots in the loaded dataset"},
		{&s.timestamps, "dataset_timestamps", "Distinct timestamps in the loaded dataset"},
		{&s.vehicles, "dataset_vehicles", "Distinct plate numbers in the loaded dataset"},
	}
	for _, g := range gauges {
		gauge, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}))
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordQuery counts the request and observes its latency.
func (s *PromSink) RecordQuery(ev coremetrics.QueryEvent) error {
	s.queries.WithLabelValues(ev.Route, strconv.Itoa(ev.Status)).Inc()
	s.latency.WithLabelValues(ev.Route).Observe(ev.Latency.Seconds())
	return nil
}

// RecordDataset publishes the size of the loaded dataset.
func (s *PromSink) RecordDataset(ev coremetrics.DatasetEvent) error {
	s.rows.Set(float64(ev.Rows))
	s.slots.Set(float64(ev.Slots))
	s.timestamps.Set(float64(ev.Timestamps))
	s.vehicles.Set(float64(ev.Vehicles))
	return nil
}
