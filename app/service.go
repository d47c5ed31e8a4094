package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/rideslots/api/slots"
	"github.com/kilianp07/rideslots/config"
	"github.com/kilianp07/rideslots/core/analytics"
	"github.com/kilianp07/rideslots/core/eventlog"
	coremetrics "github.com/kilianp07/rideslots/core/metrics"
	"github.com/kilianp07/rideslots/core/model"
	coremon "github.com/kilianp07/rideslots/core/monitoring"
	"github.com/kilianp07/rideslots/infra/logger"
	"github.com/kilianp07/rideslots/infra/metrics"
	"github.com/kilianp07/rideslots/infra/monitoring"
	"github.com/kilianp07/rideslots/infra/source"
)

// Service serves the analytics API over one loaded dataset.
type Service struct {
	cfg       *config.Config
	Analytics *analytics.Context
	sink      coremetrics.MetricsSink
	gatherer  prometheus.Gatherer
	handler   http.Handler
	mon       coremon.Monitor
	log       logger.Logger
}

// Dataset is a loaded observation log.
type Dataset struct {
	Analytics *analytics.Context
	Event     coremetrics.DatasetEvent
}

// LoadDataset reads the configured source and builds the query context.
func LoadDataset(cfg source.Config) (*Dataset, error) {
	start := time.Now()
	store, err := source.Load(cfg)
	if err != nil {
		return nil, err
	}
	return newDataset(cfg.Path, store, time.Since(start)), nil
}

func newDataset(src string, store *eventlog.Store, took time.Duration) *Dataset {
	ac := analytics.New(store)
	d := ac.Dataset()
	return &Dataset{
		Analytics: ac,
		Event: coremetrics.DatasetEvent{
			Source:       src,
			Rows:         d.Rows,
			Slots:        d.Slots,
			Timestamps:   d.Timestamps,
			Vehicles:     d.Vehicles,
			Reservations: d.Reservations,
			LoadDuration: took,
			Time:         time.Now(),
		},
	}
}

// New loads the dataset and wires monitoring, metrics and the HTTP router.
func New(cfg *config.Config) (*Service, error) {
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	ds, err := LoadDataset(cfg.Source)
	if err != nil {
		mon.CaptureException(err, map[string]string{"component": "source"})
		mon.Flush(flushTimeout)
		return nil, err
	}
	return newService(cfg, ds, mon, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

const flushTimeout = 2 * time.Second

func newService(cfg *config.Config, ds *Dataset, mon coremon.Monitor, reg prometheus.Registerer, g prometheus.Gatherer) (*Service, error) {
	log := logger.New("service")
	if mon == nil {
		mon = coremon.NopMonitor{}
	}
	sink, err := metrics.NewSink(cfg.Metrics, reg)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	s := &Service{
		cfg:       cfg,
		Analytics: ds.Analytics,
		sink:      sink,
		gatherer:  g,
		mon:       mon,
		log:       log,
	}
	s.handler = slots.NewRouter(ds.Analytics, slots.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Sink:           sink,
		Logger:         logger.New("api"),
		Monitor:        mon,
	})
	s.recordDataset(ds.Event)
	return s, nil
}

func (s *Service) recordDataset(ev coremetrics.DatasetEvent) {
	s.log.Infow("dataset loaded", map[string]any{
		"source":       ev.Source,
		"rows":         ev.Rows,
		"slots":        ev.Slots,
		"timestamps":   ev.Timestamps,
		"vehicles":     ev.Vehicles,
		"reservations": ev.Reservations,
		"load_ms":      ev.LoadDuration.Milliseconds(),
	})
	if rec, ok := s.sink.(coremetrics.DatasetRecorder); ok {
		if err := rec.RecordDataset(ev); err != nil {
			s.log.Warnf("record dataset: %v", err)
		}
	}
	if rec, ok := s.sink.(coremetrics.OccupancyRecorder); ok {
		if err := rec.RecordOccupancy(OccupancyPoints(s.Analytics)); err != nil {
			s.log.Warnf("record occupancy: %v", err)
		}
	}
}

// OccupancyPoints derives the per-timestamp occupancy series.
func OccupancyPoints(ac *analytics.Context) []coremetrics.OccupancyPoint {
	timeline := ac.OccupancyTimeline()
	out := make([]coremetrics.OccupancyPoint, 0, len(timeline))
	for _, c := range timeline {
		t, err := model.ParseTimestamp(c.Timestamp)
		if err != nil {
			continue
		}
		stats, err := ac.StatsAt(t)
		if err != nil {
			continue
		}
		out = append(out, coremetrics.OccupancyPoint{Timestamp: t, Rows: c.OccupancyCount, Occupied: stats.Occupied})
	}
	return out
}

// Handler returns the API handler.
func (s *Service) Handler() http.Handler { return s.handler }

// Run listens on the configured address and serves until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.HTTP.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves the API on ln, plus the Prometheus endpoint when enabled, and
// shuts down gracefully once ctx is canceled.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.gatherer); err != nil {
				s.log.Errorf("prom server: %v", err)
				s.mon.CaptureException(err, map[string]string{"component": "metrics"})
			}
		}()
	}
	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("serving analytics API on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.mon.CaptureException(err, map[string]string{"component": "http"})
		return err
	case <-ctx.Done():
	}
	timeout := time.Duration(s.cfg.HTTP.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Infof("analytics API stopped")
	return nil
}

// Close releases the metrics sinks and flushes pending error reports.
func (s *Service) Close() error {
	closeSink(s.sink)
	s.mon.Flush(flushTimeout)
	return nil
}

type closer interface{ Close() }

func closeSink(sink coremetrics.MetricsSink) {
	if m, ok := sink.(*metrics.MultiSink); ok {
		for _, inner := range m.Sinks {
			closeSink(inner)
		}
		return
	}
	if c, ok := sink.(closer); ok {
		c.Close()
	}
}
