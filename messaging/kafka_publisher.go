package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

const (
	DefaultTopic = "credit.assessments"

	EventAssessmentCompleted = "assessment.completed"
)

// AssessmentCompleted is published once per finished assessment.
type AssessmentCompleted struct {
	Type        string          `json:"type"`
	ID          string          `json:"id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Decision    domain.Decision `json:"decision"`
	Reason      string          `json:"motivo"`
	RedFlag     string          `json:"bandera_roja,omitempty"`
	ClientScore float64         `json:"score_cliente"`
	FuzzyRisk   float64         `json:"riesgo_difuso"`
	Probability float64         `json:"probabilidad"`
	FinalScore  float64         `json:"score_final"`
	LoanAmount  float64         `json:"monto"`
}

func NewAssessmentCompleted(rec domain.AssessmentRecord) AssessmentCompleted {
	return AssessmentCompleted{
		Type:        EventAssessmentCompleted,
		ID:          rec.ID,
		OccurredAt:  rec.CreatedAt,
		Decision:    rec.Result.Decision,
		Reason:      rec.Result.Reason,
		RedFlag:     rec.Result.RedFlag,
		ClientScore: rec.Result.ClientScore,
		FuzzyRisk:   rec.Result.FuzzyRisk,
		Probability: rec.Result.Probability,
		FinalScore:  rec.Result.FinalScore,
		LoanAmount:  rec.Application.LoanAmount,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher publishes assessment events keyed by assessment id.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
		},
		topic: topic,
	}
}

func (p *KafkaPublisher) PublishAssessment(ctx context.Context, rec domain.AssessmentRecord) error {
	value, err := json.Marshal(NewAssessmentCompleted(rec))
	if err != nil {
		return fmt.Errorf("encode %s: %w", EventAssessmentCompleted, err)
	}

	msg := kafkago.Message{
		Key:   []byte(rec.ID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventAssessmentCompleted)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
