package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
	"github.com/Mr-Alvaro/Crediticio-System/metrics"
)

// Recorder receives every finished assessment. Record must not block the
// caller on I/O.
type Recorder interface {
	Record(rec domain.AssessmentRecord)
}

// Sink is one destination of a finished assessment.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec domain.AssessmentRecord) error
}

type HistoryWriter interface {
	Save(ctx context.Context, rec domain.AssessmentRecord) error
}

type DocumentWriter interface {
	Put(ctx context.Context, collection, id string, doc []byte) error
}

type EventPublisher interface {
	PublishAssessment(ctx context.Context, rec domain.AssessmentRecord) error
}

// HistorySink stores the tabular row used by the history and statistics.
type HistorySink struct{ Repo HistoryWriter }

func (HistorySink) Name() string { return "historial" }

func (s HistorySink) Write(ctx context.Context, rec domain.AssessmentRecord) error {
	return s.Repo.Save(ctx, rec)
}

// DocumentSink stores the full request and outcome as JSON.
type DocumentSink struct{ Store DocumentWriter }

func (DocumentSink) Name() string { return "documentos" }

func (s DocumentSink) Write(ctx context.Context, rec domain.AssessmentRecord) error {
	doc, err := json.Marshal(domain.NewAssessmentDocument(rec))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return s.Store.Put(ctx, domain.AssessmentsCollection, rec.ID, doc)
}

// EventSink publishes the assessment.completed event.
type EventSink struct{ Publisher EventPublisher }

func (EventSink) Name() string { return "eventos" }

func (s EventSink) Write(ctx context.Context, rec domain.AssessmentRecord) error {
	return s.Publisher.PublishAssessment(ctx, rec)
}

// AsyncRecorder writes each record to all sinks in the background. Failures
// are logged and counted, never returned.
type AsyncRecorder struct {
	sinks   []Sink
	timeout time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewAsyncRecorder(logger zerolog.Logger, m *metrics.Metrics, timeout time.Duration, sinks ...Sink) *AsyncRecorder {
	if timeout <= 0 {
		timeout = DefaultRecordTimeout
	}
	return &AsyncRecorder{
		sinks:   sinks,
		timeout: timeout,
		metrics: m,
		logger:  logger.With().Str("component", "recorder").Logger(),
	}
}

func (r *AsyncRecorder) Record(rec domain.AssessmentRecord) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warn().Str("id", rec.ID).Msg("Recorder cerrado, evaluación no guardada")
		return
	}

	for _, sink := range r.sinks {
		r.wg.Add(1)
		go func(sink Sink) {
			defer r.wg.Done()
			r.write(sink, rec)
		}(sink)
	}
}

func (r *AsyncRecorder) write(sink Sink, rec domain.AssessmentRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := sink.Write(ctx, rec); err != nil {
		r.metrics.SinkError(sink.Name())
		r.logger.Error().Err(err).Str("sink", sink.Name()).Str("id", rec.ID).Msg("Error al guardar evaluación")
		return
	}
	r.logger.Debug().Str("sink", sink.Name()).Str("id", rec.ID).Msg("Evaluación guardada")
}

// Close stops accepting records and waits for in-flight writes or ctx.
func (r *AsyncRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("esperando escrituras pendientes: %w", ctx.Err())
	}
}

// DiscardRecorder drops every record.
type DiscardRecorder struct{}

func (DiscardRecorder) Record(domain.AssessmentRecord) {}
