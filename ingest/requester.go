package ingest

import (
	"context"
	"fmt"

	"nutri-lens/config"
	"nutri-lens/eventbus"
	"nutri-lens/events"
)

// Requester queues a submission for the processor after it passes the gate,
// so unsupported and duplicate URLs are still rejected synchronously.
type Requester struct {
	gate  *Gate
	bus   eventbus.EventBus
	topic eventbus.Topic
}

func NewRequester(gate *Gate, bus eventbus.EventBus) *Requester {
	return &Requester{gate: gate, bus: bus, topic: eventbus.TopicProductIngest}
}

// Request returns the id of the published request event.
func (r *Requester) Request(ctx context.Context, rawURL, requestedBy string) (string, error) {
	vendor, err := r.gate.Check(ctx, rawURL)
	if err != nil {
		return "", err
	}

	req := events.ProductIngestRequestedEvent{
		BaseEvent:   events.NewBaseEvent(events.ProductIngestRequested, "api"),
		URL:         rawURL,
		VendorName:  vendor.Name,
		RequestedBy: requestedBy,
	}
	evt, err := eventbus.NewJSONEvent(req.ID, req)
	if err != nil {
		return "", err
	}
	if err := r.bus.Publish(ctx, r.topic.Base(), evt); err != nil {
		return "", fmt.Errorf("publish ingest request: %w", err)
	}

	config.InfoWithFields("product ingest requested", config.Fields{
		"request_id": req.ID,
		"url":        rawURL,
		"vendor":     vendor.Name,
	})
	return req.ID, nil
}
