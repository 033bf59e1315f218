// Package loghose holds the executable logic of a log-ingestion
// pipeline built on a managed delivery stream: the record transformer
// invoked by the stream's processing step, and the ingress writer that
// feeds the stream. Durability, buffering, retries and sink delivery are
// owned by the delivery stream itself and are not implemented here; this
// component only classifies each record as Ok, ProcessingFailed or
// Dropped so the stream can route it.
package loghose

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/loghose/loghose/entity"
	"github.com/loghose/loghose/entity/transform"
)

// Error values returned by the Loghose API. Many of these will also
// contain additional details about the error. Error matching can still
// be done with 'if errors.Is(err, ErrInvalidStreamSpec)' etc. due to
// error wrapping.
var (
	ErrConfigNotInitialized = errors.New("loghose.Config needs to be created with NewConfig()")
	ErrInvalidStreamSpec    = errors.New("stream spec is not valid")
	ErrStreamDisabled       = errors.New("stream spec is disabled")
)

// Loghose is the top-level handle for one stream, created with New().
// It is safe for concurrent use; concurrent Transform invocations share
// no mutable state beyond the atomically updated metrics.
type Loghose struct {
	spec        *entity.Spec
	transformer *transform.Transformer
	notifyChan  entity.NotifyChan
	metrics     entity.Metrics
	id          string
}

// New validates the stream spec in the provided config and creates the
// transformer for the stream. The config needs to be initially created
// with NewConfig().
func New(config *Config) (*Loghose, error) {
	if config == nil {
		return nil, ErrConfigNotInitialized
	}

	spec, err := entity.NewSpec(config.Spec)
	if err != nil {
		return nil, errWithDetails(ErrInvalidStreamSpec, err)
	}
	if spec.IsDisabled() {
		return nil, ErrStreamDisabled
	}

	l := &Loghose{
		spec:       spec,
		notifyChan: make(entity.NotifyChan, config.Ops.NotifyChanSize),
		id:         uuid.New().String(),
	}
	l.transformer = transform.NewTransformer(entity.Config{
		Spec:       spec,
		ID:         l.id,
		NotifyChan: l.notifyChan,
		Log:        config.Ops.Log,
	})
	return l, nil
}

// Transform processes one batch of records from the delivery stream and
// returns the classified batch. The response always contains one record
// per input record with the input IDs echoed; see the transform package
// for the per-record contract.
func (l *Loghose) Transform(ctx context.Context, event entity.TransformEvent) entity.TransformResponse {

	start := time.Now()
	response := l.transformer.Transform(ctx, event)

	atomic.AddInt64(&l.metrics.Invocations, 1)
	atomic.AddInt64(&l.metrics.RecordsProcessed, int64(len(event.Records)))
	atomic.AddInt64(&l.metrics.ProcessingTimeMicros, time.Since(start).Microseconds())
	for _, record := range event.Records {
		atomic.AddInt64(&l.metrics.BytesProcessed, int64(len(record.Data)))
	}
	for _, record := range response.Records {
		switch record.Result {
		case entity.ResultProcessingFailed:
			atomic.AddInt64(&l.metrics.RecordsFailed, 1)
		case entity.ResultDropped:
			atomic.AddInt64(&l.metrics.RecordsDropped, 1)
		}
	}

	return response
}

// Spec returns the validated stream spec in use.
func (l *Loghose) Spec() *entity.Spec {
	return l.spec
}

// Metrics returns a snapshot of the metrics since startup.
func (l *Loghose) Metrics() entity.Metrics {
	return l.metrics.Snapshot()
}

// NotifyChannel returns the channel receiving operational events from
// the stream entities, for use when Ops.Log is disabled or when events
// should be forwarded elsewhere.
func (l *Loghose) NotifyChannel() entity.NotifyChan {
	return l.notifyChan
}

// EnrichEvent is a convenience function that can be used for event
// enrichment purposes outside the spec-driven transform, e.g. in an
// ingress pre-processing step. It's a wrapper on the sjson package.
func EnrichEvent(event []byte, path string, value any) ([]byte, error) {
	return sjson.SetBytes(event, path, value)
}

func errWithDetails(err error, errDetails error) error {
	return fmt.Errorf("%w, details: %v", err, errDetails)
}
