package metrics

import "time"

// QueryEvent describes one served HTTP request.
type QueryEvent struct {
	// Route is the route template, e.g. "/frame/{ts}".
	Route   string
	Status  int
	Latency time.Duration
	Time    time.Time
}

// MetricsSink records query events.
type MetricsSink interface {
	RecordQuery(ev QueryEvent) error
}

// DatasetEvent summarises a loaded observation log.
type DatasetEvent struct {
	Source       string
	Rows         int
	Slots        int
	Timestamps   int
	Vehicles     int
	Reservations int
	LoadDuration time.Duration
	Time         time.Time
}

// DatasetRecorder records dataset loads.
type DatasetRecorder interface {
	RecordDataset(ev DatasetEvent) error
}

// OccupancyPoint is the occupancy of the lot at one timestamp.
type OccupancyPoint struct {
	Timestamp time.Time
	// Rows is the number of slot rows recorded at Timestamp.
	Rows     int
	Occupied int
}

// OccupancyRecorder records the occupancy series.
type OccupancyRecorder interface {
	RecordOccupancy(points []OccupancyPoint) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordQuery(QueryEvent) error           { return nil }
func (NopSink) RecordDataset(DatasetEvent) error       { return nil }
func (NopSink) RecordOccupancy([]OccupancyPoint) error { return nil }
