package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/crosspost/internal/publish"
)

// EventTypeCompleted tags every event emitted by KafkaSink.
const EventTypeCompleted = "publish.completed"

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, key []byte, value []byte, headers map[string]string) error
}

// CompletedEvent is the message value written to the report topic.
type CompletedEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Report    publish.Report `json:"report"`
	CreatedAt time.Time      `json:"created_at"`
}

// KafkaSink emits one CompletedEvent per publish, keyed by request id.
type KafkaSink struct {
	producer Publisher
	now      func() time.Time
}

func NewKafkaSink(producer Publisher) *KafkaSink {
	return &KafkaSink{producer: producer, now: time.Now}
}

func (s *KafkaSink) Report(ctx context.Context, r publish.Report) error {
	if s.producer == nil {
		return fmt.Errorf("%w (kafka producer)", ErrNotConfigured)
	}

	event := CompletedEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeCompleted,
		Report:    r,
		CreatedAt: s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal completed event: %w", err)
	}

	headers := map[string]string{
		"event_id":   event.ID,
		"event_type": EventTypeCompleted,
		"request_id": r.RequestID,
		"status":     string(r.Status),
	}
	if err := s.producer.Publish(ctx, []byte(r.RequestID), payload, headers); err != nil {
		return fmt.Errorf("publish completed event: %w", err)
	}
	return nil
}
