package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvedesk/resolvedesk/internal/models"
	"github.com/resolvedesk/resolvedesk/internal/store"
)

type capturedEvent struct {
	key   string
	value interface{}
}

type fakePublisher struct {
	events []capturedEvent
	err    error
}

func (f *fakePublisher) PublishJSON(ctx context.Context, key []byte, v interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, capturedEvent{key: string(key), value: v})
	return nil
}

func TestNotifyPersistsAndPublishes(t *testing.T) {
	mem := store.NewMemoryStore()
	pub := &fakePublisher{}
	sink := NewStoreSink(mem, pub)

	recipient := uuid.New()
	ticketID := uuid.New()
	err := sink.Notify(context.Background(), recipient, models.NotifyTicketAssigned, "Auto-assigned: \"Broken login\"", ticketID)
	require.NoError(t, err)

	notifications := mem.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, recipient, notifications[0].RecipientID)
	assert.Equal(t, models.NotifyTicketAssigned, notifications[0].Type)
	assert.Equal(t, ticketID, notifications[0].TicketID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, recipient.String(), pub.events[0].key)
}

func TestNotifyPublishFailureIsSwallowed(t *testing.T) {
	mem := store.NewMemoryStore()
	sink := NewStoreSink(mem, &fakePublisher{err: errors.New("broker down")})

	err := sink.Notify(context.Background(), uuid.New(), models.NotifyTicketCreated, "created", uuid.New())
	require.NoError(t, err, "event stream is best effort; the row is the contract")
	assert.Len(t, mem.Notifications(), 1)
}

func TestNotifyWithoutPublisher(t *testing.T) {
	mem := store.NewMemoryStore()
	sink := NewStoreSink(mem, nil)

	err := sink.Notify(context.Background(), uuid.New(), models.NotifyTicketUnassigned, "escalation", uuid.New())
	require.NoError(t, err)
	assert.Len(t, mem.Notifications(), 1)
}
