package ingest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutri-lens/errs"
	"nutri-lens/eventbus"
	"nutri-lens/events"
)

type recordingBus struct {
	mu        sync.Mutex
	published map[string][]eventbus.Event
}

func (b *recordingBus) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.published == nil {
		b.published = map[string][]eventbus.Event{}
	}
	b.published[topic] = append(b.published[topic], event)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, groupID string, topic eventbus.Topic, handler eventbus.EventHandler) error {
	return nil
}

func (b *recordingBus) Close() {}

func TestRequesterPublishesAfterGate(t *testing.T) {
	bus := &recordingBus{}
	r := NewRequester(NewGate(bigbasket, &knownURLs{}), bus)

	id, err := r.Request(context.Background(), "https://www.bigbasket.com/pd/1/", "u1")
	require.NoError(t, err)

	sent := bus.published[eventbus.TopicProductIngest.Base()]
	require.Len(t, sent, 1)
	assert.Equal(t, id, sent[0].ID)

	req, err := eventbus.DecodeJSON[events.ProductIngestRequestedEvent](sent[0])
	require.NoError(t, err)
	assert.Equal(t, events.ProductIngestRequested, req.Type)
	assert.Equal(t, "bigbasket", req.VendorName)
	assert.Equal(t, "u1", req.RequestedBy)
}

func TestRequesterRejectsBeforePublishing(t *testing.T) {
	bus := &recordingBus{}
	r := NewRequester(NewGate(bigbasket, &knownURLs{urls: []string{"https://www.bigbasket.com/pd/1/"}}), bus)

	_, err := r.Request(context.Background(), "https://www.bigbasket.com/pd/1/", "")
	assert.ErrorIs(t, err, errs.ErrDuplicateProduct)
	assert.Empty(t, bus.published)
}
