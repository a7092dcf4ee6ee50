package handlers

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/config"
	"nutri-lens/errs"
	"nutri-lens/eventbus"
	"nutri-lens/events"
)

// Ingester runs the product pipeline for one URL.
type Ingester interface {
	Ingest(ctx context.Context, rawURL string) (primitive.ObjectID, error)
}

// EventHandlers consume the ingest topic.
type EventHandlers struct {
	ingester Ingester
	bus      eventbus.EventBus
	topic    eventbus.Topic
}

func NewEventHandlers(ingester Ingester, bus eventbus.EventBus) *EventHandlers {
	return &EventHandlers{ingester: ingester, bus: bus, topic: eventbus.TopicProductIngest}
}

// Handle dispatches on the event type. Result events share the topic and are ignored here.
func (h *EventHandlers) Handle(ctx context.Context, ev eventbus.Event) error {
	t, err := events.PeekType(ev.Payload)
	if err != nil {
		return err
	}
	switch t {
	case events.ProductIngestRequested:
		v, err := eventbus.DecodeJSON[events.ProductIngestRequestedEvent](ev)
		if err != nil {
			return err
		}
		return h.HandleIngestRequested(ctx, &v)
	default:
		// outcome events are ours; commit and move on
		return nil
	}
}

// HandleIngestRequested runs the pipeline and reports the outcome.
// A failure with a known reason is published as ProductIngestFailed and the
// request is committed; anything else is returned so the bus moves it to the DLQ.
func (h *EventHandlers) HandleIngestRequested(ctx context.Context, e *events.ProductIngestRequestedEvent) error {
	config.Logger.Infof("handling ingest request %s for %s", e.ID, e.URL)

	id, err := h.ingester.Ingest(ctx, e.URL)
	if err != nil {
		if ctx.Err() != nil || errs.Reason(err) == "internal_error" {
			return err
		}
		failed := events.ProductIngestFailedEvent{
			BaseEvent: events.NewBaseEvent(events.ProductIngestFailed, "processor"),
			RequestID: e.ID,
			URL:       e.URL,
			Reason:    errs.Reason(err),
			Error:     err.Error(),
		}
		if perr := h.publish(ctx, failed.ID, failed); perr != nil {
			return errors.Join(err, perr)
		}
		return nil
	}

	done := events.ProductIngestedEvent{
		BaseEvent: events.NewBaseEvent(events.ProductIngested, "processor"),
		RequestID: e.ID,
		URL:       e.URL,
		ProductID: id.Hex(),
	}
	return h.publish(ctx, done.ID, done)
}

func (h *EventHandlers) publish(ctx context.Context, id string, payload any) error {
	evt, err := eventbus.NewJSONEvent(id, payload)
	if err != nil {
		return fmt.Errorf("failed to build event: %w", err)
	}
	if err := h.bus.Publish(ctx, h.topic.Base(), evt); err != nil {
		return fmt.Errorf("failed to publish result event: %w", err)
	}
	return nil
}
