package metrics

import coremetrics "github.com/kilianp07/rideslots/core/metrics"

// MultiSink fans events out to several sinks. Optional recorder interfaces
// are forwarded only to the sinks implementing them.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordQuery forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordQuery(ev coremetrics.QueryEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordQuery(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDataset forwards dataset events.
func (m *MultiSink) RecordDataset(ev coremetrics.DatasetEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.DatasetRecorder); ok {
			if err := rec.RecordDataset(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordOccupancy forwards the occupancy series.
func (m *MultiSink) RecordOccupancy(points []coremetrics.OccupancyPoint) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.OccupancyRecorder); ok {
			if err := rec.RecordOccupancy(points); err != nil {
				return err
			}
		}
	}
	return nil
}
