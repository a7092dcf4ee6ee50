package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"nutri-lens/config"
)

// dlqRetryDelay is how long the consumer waits before re-reading an event it could not dead-letter.
const dlqRetryDelay = time.Second

// KafkaEventBus implements EventBus on confluent-kafka-go.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	// delivery reports and client errors
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					config.Logger.Errorf("message delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				config.Logger.Errorf("kafka error: %v", ev)
			}
		}
	}()

	return &KafkaEventBus{Producer: p, Brokers: brokers}, nil
}

// Close flushes queued messages and shuts the producer down.
func (k *KafkaEventBus) Close() {
	if k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		config.Logger.Warnf("%d messages still queued after flush", remaining)
	}
	k.Producer.Close()
	config.Logger.Info("kafka producer closed")
}

// Publish sends event to topic and waits for the delivery report.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce message: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		m := ev.(*kafka.Message)
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver message: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// offsetTracker is the part of *kafka.Consumer that settles offsets.
type offsetTracker interface {
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	Seek(partition kafka.TopicPartition, ignoredTimeoutMs int) error
}

type publishFunc func(ctx context.Context, topic string, event Event) error

// dispatch runs handler for msg and settles its offset. A failed event is moved
// to the DLQ and committed. When the DLQ publish fails too, the consumer is
// rewound to msg so it is read again, and ErrDLQPublishFailed is returned.
// Any other returned error means the position could not be kept and consumption must stop.
func dispatch(ctx context.Context, c offsetTracker, publish publishFunc, topic Topic, handler EventHandler, msg *kafka.Message) error {
	var evt Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		config.Logger.Errorf("malformed event on %s: %v; skipping", topic.Base(), err)
		commit(c, msg)
		return nil
	}

	config.Logger.Debugf("handling event %s from %s", evt.ID, topic.Base())
	if err := handler(ctx, evt); err != nil {
		evt.LastError = err.Error()
		config.Logger.Errorf("event %s failed, moving to %s: %v", evt.ID, topic.DLQ(), err)
		if pubErr := publish(ctx, topic.DLQ(), evt); pubErr != nil {
			if seekErr := c.Seek(msg.TopicPartition, 0); seekErr != nil {
				return fmt.Errorf("rewind to %v after dlq failure: %w", msg.TopicPartition, seekErr)
			}
			return fmt.Errorf("%w: %s: %v", ErrDLQPublishFailed, topic.DLQ(), pubErr)
		}
	}

	commit(c, msg)
	return nil
}

func commit(c offsetTracker, msg *kafka.Message) {
	if _, err := c.CommitMessage(msg); err != nil {
		config.Logger.Errorf("offset commit error: %v", err)
	}
}

// Subscribe consumes the base topic and runs handler for each event.
// Offsets are committed manually, after the event is handled or dead-lettered.
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	})
	if err != nil {
		return fmt.Errorf("create kafka consumer: %w", err)
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{topic.Base()}, nil); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic.Base(), err)
	}
	config.Logger.Infof("consumer (%s) started on topic %s", groupID, topic.Base())

	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("consumer shutting down")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok {
				if kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kerr.IsFatal() {
					return fmt.Errorf("consumer fatal error: %w", err)
				}
			}
			config.Logger.Errorf("consumer ReadMessage error: %v", err)
			continue
		}

		err = dispatch(ctx, c, k.Publish, topic, handler, msg)
		switch {
		case err == nil:
		case errors.Is(err, ErrDLQPublishFailed):
			config.Logger.Errorf("%v; offset %v not committed, retrying", err, msg.TopicPartition.Offset)
			select {
			case <-ctx.Done():
			case <-time.After(dlqRetryDelay):
			}
		default:
			return err
		}
	}
}
