package eventbus

import (
	"context"
	"encoding/json"
	"errors"
)

// Topic names a base topic and its DLQ.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ returns the dead-letter topic name (e.g. my_topic.dlq).
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// Event is the envelope carried in every Kafka message.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	LastError string          `json:"last_error,omitempty"`
}

// EventHandler processes one event. An event whose handler errors moves to the DLQ without retry.
type EventHandler func(ctx context.Context, event Event) error

type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	Close()
}

// ErrDLQPublishFailed is returned when a failed event could not be moved to the DLQ.
var ErrDLQPublishFailed = errors.New("dlq publish failed")
