package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/scaffold-split/pkg/errors"
)

const (
	TopicSplitCompleted     = "scaffold.split.completed"
	EventTypeSplitCompleted = "split.completed"
	sourceService           = "scafsplit"
)

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// SplitCompletedPayload describes a finished split run.
type SplitCompletedPayload struct {
	RunID          string    `json:"run_id"`
	Input          string    `json:"input"`
	Policy         string    `json:"policy"`
	Seed           int64     `json:"seed"`
	TrainSize      float64   `json:"train_size"`
	TestSize       float64   `json:"test_size"`
	Molecules      int       `json:"molecules"`
	Scaffolds      int       `json:"scaffolds"`
	TrainMolecules int       `json:"train_molecules"`
	TestMolecules  int       `json:"test_molecules"`
	TrainScaffolds int       `json:"train_scaffolds"`
	TestScaffolds  int       `json:"test_scaffolds"`
	Artifacts      []string  `json:"artifacts,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
}

func NewEventEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        sourceService,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	return json.Unmarshal(e.Payload, target)
}

func (e *EventEnvelope) ToMessage(topic string, key []byte) (*Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &Message{
		Topic: topic,
		Key:   key,
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

// SplitEventPublisher emits split.completed events keyed by run id.
type SplitEventPublisher struct {
	producer *Producer
	topic    string
}

// NewSplitEventPublisher publishes to topic, or TopicSplitCompleted when
// topic is empty.
func NewSplitEventPublisher(p *Producer, topic string) *SplitEventPublisher {
	if topic == "" {
		topic = TopicSplitCompleted
	}
	return &SplitEventPublisher{producer: p, topic: topic}
}

func (s *SplitEventPublisher) PublishSplitCompleted(ctx context.Context, payload *SplitCompletedPayload) error {
	env, err := NewEventEnvelope(EventTypeSplitCompleted, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(s.topic, []byte(payload.RunID))
	if err != nil {
		return err
	}
	return s.producer.Publish(ctx, msg)
}

func (s *SplitEventPublisher) Close() error {
	return s.producer.Close()
}

//Personal.AI order the ending
