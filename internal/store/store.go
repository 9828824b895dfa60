package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/resolvedesk/resolvedesk/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence surface the intake pipeline needs. Agents and
// admins are managed by an external workflow; this interface only reads
// them.
type Store interface {
	CreateTicket(ctx context.Context, in TicketInput) (models.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (models.Ticket, error)

	// SetTicketAnalysis writes the AI classification fields. Called once
	// per ticket at intake time.
	SetTicketAnalysis(ctx context.Context, id uuid.UUID, result models.ClassificationResult, analyzedAt time.Time) error

	// AssignTicket sets assigned_to and promotes Open to In Progress in
	// the same write. Any other status is left unchanged.
	AssignTicket(ctx context.Context, ticketID, agentID uuid.UUID) (models.Ticket, error)

	// ListActiveAgentWorkloads returns active agents with their live
	// workload (count of assigned tickets in Open or In Progress),
	// sorted ascending by workload with creation-time tiebreak (oldest
	// agent first).
	ListActiveAgentWorkloads(ctx context.Context) ([]models.Agent, error)

	// ListActiveAdmins returns the admins that receive escalation
	// notifications when no agent is eligible.
	ListActiveAdmins(ctx context.Context) ([]models.Agent, error)

	CreateNotification(ctx context.Context, in NotificationInput) (models.Notification, error)

	Ping(ctx context.Context) error
}

type TicketInput struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Category    models.Category
	Priority    models.Priority

	OriginalLanguage    string
	OriginalTitle       string
	OriginalDescription string
}

type NotificationInput struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	Type        models.NotificationType
	Message     string
	TicketID    uuid.UUID
}
