package entity

import "sync/atomic"

// Config is handed to stream entities (currently the transformer and the
// ingest client) at construction time.
type Config struct {
	Spec       *Spec
	ID         string
	NotifyChan NotifyChan
	Log        bool
}

// Metrics holds counters for the operations performed since startup.
// All fields are updated atomically since transform invocations may run
// concurrently under the caller's concurrency model.
type Metrics struct {

	// Total number of records received for transformation, regardless
	// of the per-record outcome.
	RecordsProcessed int64

	// Number of records classified as ProcessingFailed.
	RecordsFailed int64

	// Number of records classified as Dropped by exclude filters.
	RecordsDropped int64

	// Total amount of event data processed, counted as received in
	// transport encoding.
	BytesProcessed int64

	// Total time spent transforming batches.
	ProcessingTimeMicros int64

	// Total number of transform invocations (batches).
	Invocations int64
}

func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.RecordsProcessed, 0)
	atomic.StoreInt64(&m.RecordsFailed, 0)
	atomic.StoreInt64(&m.RecordsDropped, 0)
	atomic.StoreInt64(&m.BytesProcessed, 0)
	atomic.StoreInt64(&m.ProcessingTimeMicros, 0)
	atomic.StoreInt64(&m.Invocations, 0)
}

// Snapshot returns a copy of the current counter values.
func (m *Metrics) Snapshot() Metrics {
	return Metrics{
		RecordsProcessed:     atomic.LoadInt64(&m.RecordsProcessed),
		RecordsFailed:        atomic.LoadInt64(&m.RecordsFailed),
		RecordsDropped:       atomic.LoadInt64(&m.RecordsDropped),
		BytesProcessed:       atomic.LoadInt64(&m.BytesProcessed),
		ProcessingTimeMicros: atomic.LoadInt64(&m.ProcessingTimeMicros),
		Invocations:          atomic.LoadInt64(&m.Invocations),
	}
}
