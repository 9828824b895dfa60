// package notify records that a notification must reach a recipient.
// Delivery mechanics (push, email, in-app) live downstream of the Kafka
// topic; the core only produces the record.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/resolvedesk/resolvedesk/internal/models"
	"github.com/resolvedesk/resolvedesk/internal/store"
)

// Sink accepts notification records. Fire-and-forget from the caller's
// perspective: implementations log failures rather than propagate them.
type Sink interface {
	Notify(ctx context.Context, recipientID uuid.UUID, typ models.NotificationType, message string, ticketID uuid.UUID) error
}

// EventPublisher is the Kafka surface used by StoreSink. Satisfied by
// *KafkaProducer; nil-able for store-only operation.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key []byte, v interface{}) error
}

// StoreSink persists a notification row and best-effort publishes a JSON
// event for downstream delivery workers.
type StoreSink struct {
	store     store.Store
	publisher EventPublisher
}

func NewStoreSink(st store.Store, publisher EventPublisher) *StoreSink {
	return &StoreSink{store: st, publisher: publisher}
}

type notificationEvent struct {
	ID          uuid.UUID               `json:"id"`
	RecipientID uuid.UUID               `json:"recipientId"`
	Type        models.NotificationType `json:"type"`
	Message     string                  `json:"message"`
	TicketID    uuid.UUID               `json:"ticketId"`
	CreatedAt   time.Time               `json:"createdAt"`
}

func (s *StoreSink) Notify(ctx context.Context, recipientID uuid.UUID, typ models.NotificationType, message string, ticketID uuid.UUID) error {
	record, err := s.store.CreateNotification(ctx, store.NotificationInput{
		RecipientID: recipientID,
		Type:        typ,
		Message:     message,
		TicketID:    ticketID,
	})
	if err != nil {
		return err
	}

	if s.publisher != nil {
		event := notificationEvent{
			ID:          record.ID,
			RecipientID: record.RecipientID,
			Type:        record.Type,
			Message:     record.Message,
			TicketID:    record.TicketID,
			CreatedAt:   record.CreatedAt,
		}
		if err := s.publisher.PublishJSON(ctx, []byte(recipientID.String()), event); err != nil {
			// The row is the contract; the event stream is best effort.
			log.Printf("[notify] event publish failed for %s: %v", record.ID, err)
		}
	}
	return nil
}
