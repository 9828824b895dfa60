package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/resolvedesk/resolvedesk/internal/models"
)

// MemoryStore provides an in-memory implementation useful for tests.
type MemoryStore struct {
	mu            sync.RWMutex
	tickets       map[uuid.UUID]models.Ticket
	agents        map[uuid.UUID]models.Agent
	admins        map[uuid.UUID]models.Agent
	notifications []models.Notification

	// FailListAgents and FailAssign force errors to exercise the
	// router's swallow-and-leave-unassigned paths.
	FailListAgents error
	FailAssign     error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets: map[uuid.UUID]models.Ticket{},
		agents:  map[uuid.UUID]models.Agent{},
		admins:  map[uuid.UUID]models.Agent{},
	}
}

// AddAgent seeds an agent; agents are otherwise managed externally.
func (m *MemoryStore) AddAgent(agent models.Agent) models.Agent {
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[agent.ID] = agent
	return agent
}

// AddAdmin seeds an admin recipient for escalation notifications.
func (m *MemoryStore) AddAdmin(admin models.Agent) models.Agent {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[admin.ID] = admin
	return admin
}

// Notifications returns a snapshot of everything recorded so far.
func (m *MemoryStore) Notifications() []models.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Notification, len(m.notifications))
	copy(out, m.notifications)
	return out
}

func (m *MemoryStore) CreateTicket(ctx context.Context, in TicketInput) (models.Ticket, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	now := time.Now().UTC()
	ticket := models.Ticket{
		ID:                  in.ID,
		UserID:              in.UserID,
		Title:               in.Title,
		Description:         in.Description,
		Category:            in.Category,
		Priority:            in.Priority,
		Status:              models.StatusOpen,
		OriginalLanguage:    in.OriginalLanguage,
		OriginalTitle:       in.OriginalTitle,
		OriginalDescription: in.OriginalDescription,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (m *MemoryStore) GetTicket(ctx context.Context, id uuid.UUID) (models.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return models.Ticket{}, ErrNotFound
	}
	return ticket, nil
}

func (m *MemoryStore) SetTicketAnalysis(ctx context.Context, id uuid.UUID, result models.ClassificationResult, analyzedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return ErrNotFound
	}
	ticket.AICategory = result.Category
	ticket.AIPriority = result.Priority
	ticket.AISentiment = result.Sentiment
	ticket.AISummary = result.Summary
	ticket.AISuggestedReply = result.SuggestedReply
	ticket.AIAnalyzedAt = &analyzedAt
	ticket.UpdatedAt = time.Now().UTC()
	m.tickets[id] = ticket
	return nil
}

func (m *MemoryStore) AssignTicket(ctx context.Context, ticketID, agentID uuid.UUID) (models.Ticket, error) {
	if m.FailAssign != nil {
		return models.Ticket{}, m.FailAssign
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[ticketID]
	if !ok {
		return models.Ticket{}, ErrNotFound
	}
	ticket.AssignedTo = &agentID
	if ticket.Status == models.StatusOpen {
		ticket.Status = models.StatusInProgress
	}
	ticket.UpdatedAt = time.Now().UTC()
	m.tickets[ticketID] = ticket
	return ticket, nil
}

func (m *MemoryStore) ListActiveAgentWorkloads(ctx context.Context) ([]models.Agent, error) {
	if m.FailListAgents != nil {
		return nil, m.FailListAgents
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var agents []models.Agent
	for _, agent := range m.agents {
		if !agent.IsActive {
			continue
		}
		agent.Workload = 0
		for _, t := range m.tickets {
			if t.AssignedTo != nil && *t.AssignedTo == agent.ID &&
				(t.Status == models.StatusOpen || t.Status == models.StatusInProgress) {
				agent.Workload++
			}
		}
		agents = append(agents, agent)
	}
	sort.SliceStable(agents, func(i, j int) bool {
		if agents[i].Workload != agents[j].Workload {
			return agents[i].Workload < agents[j].Workload
		}
		return agents[i].CreatedAt.Before(agents[j].CreatedAt)
	})
	return agents, nil
}

func (m *MemoryStore) ListActiveAdmins(ctx context.Context) ([]models.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var admins []models.Agent
	for _, admin := range m.admins {
		if admin.IsActive {
			admins = append(admins, admin)
		}
	}
	sort.Slice(admins, func(i, j int) bool {
		return admins[i].CreatedAt.Before(admins[j].CreatedAt)
	})
	return admins, nil
}

func (m *MemoryStore) CreateNotification(ctx context.Context, in NotificationInput) (models.Notification, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	notification := models.Notification{
		ID:          in.ID,
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Message:     in.Message,
		TicketID:    in.TicketID,
		CreatedAt:   time.Now().UTC(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, notification)
	return notification, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
