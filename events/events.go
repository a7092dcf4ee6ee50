// Package events defines the payloads exchanged on the product ingest topic.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names an event.
type EventType string

const (
	ProductIngestRequested EventType = "product.ingest_requested"
	ProductIngested        EventType = "product.ingested"
	ProductIngestFailed    EventType = "product.ingest_failed"
)

const eventVersion = "1"

// BaseEvent is embedded in every event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // "api", "processor"
	Version   string    `json:"version"`
}

func NewBaseEvent(t EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   eventVersion,
	}
}

// ProductIngestRequestedEvent asks the processor to run the pipeline for a URL
// that already passed the gate.
type ProductIngestRequestedEvent struct {
	BaseEvent
	URL         string `json:"url"`
	VendorName  string `json:"vendor_name"`
	RequestedBy string `json:"requested_by,omitempty"`
}

type ProductIngestedEvent struct {
	BaseEvent
	RequestID string `json:"request_id"`
	URL       string `json:"url"`
	ProductID string `json:"product_id"`
}

type ProductIngestFailedEvent struct {
	BaseEvent
	RequestID string `json:"request_id"`
	URL       string `json:"url"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
}

// PeekType reads only the type field of a payload.
func PeekType(payload []byte) (EventType, error) {
	var peek struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(payload, &peek); err != nil {
		return "", fmt.Errorf("failed to read event type: %w", err)
	}
	return peek.Type, nil
}
