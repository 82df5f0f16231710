package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishAssessment(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: DefaultTopic}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	rec := domain.AssessmentRecord{
		ID:          "eval-1",
		CreatedAt:   at,
		Application: domain.LoanApplication{LoanAmount: 1000},
		Result: domain.RiskAssessmentResult{
			Decision: domain.DecisionRejected, Reason: "Historial Crediticio Deficiente", RedFlag: "credit_poor",
			FinalScore: 25, Probability: 95,
		},
	}

	require.NoError(t, p.PublishAssessment(context.Background(), rec))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "eval-1", string(msg.Key))
	assert.Equal(t, []kafkago.Header{{Key: "event_type", Value: []byte(EventAssessmentCompleted)}}, msg.Headers)

	var ev AssessmentCompleted
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, EventAssessmentCompleted, ev.Type)
	assert.Equal(t, domain.DecisionRejected, ev.Decision)
	assert.Equal(t, "credit_poor", ev.RedFlag)
	assert.True(t, at.Equal(ev.OccurredAt))
	assert.Equal(t, 1000.0, ev.LoanAmount)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishAssessment_WriterError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("no brokers")}, topic: DefaultTopic}

	err := p.PublishAssessment(context.Background(), domain.AssessmentRecord{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka publish to credit.assessments")
}

func TestNewKafkaPublisher_DefaultTopic(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Equal(t, DefaultTopic, p.topic)
	require.NoError(t, p.Close())
}
