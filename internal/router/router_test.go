package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvedesk/resolvedesk/internal/models"
	"github.com/resolvedesk/resolvedesk/internal/notify"
	"github.com/resolvedesk/resolvedesk/internal/store"
)

func seedAgent(mem *store.MemoryStore, name string, age time.Duration, tags ...models.ExpertiseTag) models.Agent {
	return mem.AddAgent(models.Agent{
		Name:      name,
		Email:     name + "@example.com",
		IsActive:  true,
		Expertise: tags,
		CreatedAt: time.Now().UTC().Add(-age),
	})
}

func seedTickets(t *testing.T, mem *store.MemoryStore, agent models.Agent, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		ticket, err := mem.CreateTicket(context.Background(), store.TicketInput{
			UserID: uuid.New(), Title: "load", Description: "load",
			Category: models.CategoryGeneralQuery, Priority: models.PriorityMedium,
		})
		require.NoError(t, err)
		_, err = mem.AssignTicket(context.Background(), ticket.ID, agent.ID)
		require.NoError(t, err)
	}
}

func openTicket(t *testing.T, mem *store.MemoryStore, category models.Category) models.Ticket {
	t.Helper()
	ticket, err := mem.CreateTicket(context.Background(), store.TicketInput{
		UserID:      uuid.New(),
		Title:       "test ticket",
		Description: "test description",
		Category:    models.CategoryGeneralQuery,
		Priority:    models.PriorityMedium,
	})
	require.NoError(t, err)
	if category != "" {
		err = mem.SetTicketAnalysis(context.Background(), ticket.ID, models.ClassificationResult{
			Category: category, Priority: models.PriorityMedium, Sentiment: models.SentimentNeutral,
			Summary: "s", SuggestedReply: "r",
		}, time.Now().UTC())
		require.NoError(t, err)
		ticket, err = mem.GetTicket(context.Background(), ticket.ID)
		require.NoError(t, err)
	}
	return ticket
}

func TestExpertiseMapping(t *testing.T) {
	assert.Equal(t, models.ExpertiseTechnical, expertiseFor(models.CategoryBug))
	assert.Equal(t, models.ExpertisePayment, expertiseFor(models.CategoryPaymentIssue))
	assert.Equal(t, models.ExpertiseAccount, expertiseFor(models.CategoryAccountIssue))
	assert.Equal(t, models.ExpertiseTechnical, expertiseFor(models.CategoryFeatureRequest))
	assert.Equal(t, models.ExpertiseGeneral, expertiseFor(models.CategoryGeneralQuery))
	assert.Equal(t, models.ExpertiseGeneral, expertiseFor("Something Unrecognized"))
	assert.Equal(t, models.ExpertiseGeneral, expertiseFor(""))
}

func TestAssignPrefersLeastLoadedExpert(t *testing.T) {
	mem := store.NewMemoryStore()
	r := New(mem, notify.NewStoreSink(mem, nil))

	a := seedAgent(mem, "agent-a", 3*time.Hour, models.ExpertiseTechnical)
	b := seedAgent(mem, "agent-b", 2*time.Hour, models.ExpertiseTechnical)
	seedAgent(mem, "agent-c", time.Hour, models.ExpertisePayment)
	seedTickets(t, mem, a, 2)

	ticket := openTicket(t, mem, models.CategoryBug)
	picked := r.Assign(context.Background(), ticket)

	require.NotNil(t, picked)
	assert.Equal(t, b.ID, picked.ID, "expert with the lowest workload wins")

	updated, err := mem.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, b.ID, *updated.AssignedTo)
	assert.Equal(t, models.StatusInProgress, updated.Status)
}

func TestAssignFallsBackToLeastLoadedOverall(t *testing.T) {
	mem := store.NewMemoryStore()
	r := New(mem, notify.NewStoreSink(mem, nil))

	a := seedAgent(mem, "agent-a", 2*time.Hour, models.ExpertiseTechnical)
	c := seedAgent(mem, "agent-c", time.Hour, models.ExpertiseAccount)
	seedTickets(t, mem, a, 1)

	// No payment expert exists; the globally least-loaded agent gets it.
	ticket := openTicket(t, mem, models.CategoryPaymentIssue)
	picked := r.Assign(context.Background(), ticket)

	require.NotNil(t, picked)
	assert.Equal(t, c.ID, picked.ID)
}

func TestAssignTiebreakByAgentSeniority(t *testing.T) {
	mem := store.NewMemoryStore()
	r := New(mem, notify.NewStoreSink(mem, nil))

	older := seedAgent(mem, "older", 48*time.Hour, models.ExpertiseGeneral)
	seedAgent(mem, "newer", time.Hour, models.ExpertiseGeneral)

	ticket := openTicket(t, mem, models.CategoryGeneralQuery)
	picked := r.Assign(context.Background(), ticket)

	require.NotNil(t, picked)
	assert.Equal(t, older.ID, picked.ID, "equal workloads break ties by agent creation order")
}

func TestAssignNoAgentsEscalatesToEveryAdmin(t *testing.T) {
	mem := store.NewMemoryStore()
	r := New(mem, notify.NewStoreSink(mem, nil))

	admin1 := mem.AddAdmin(models.Agent{Name: "admin-1", IsActive: true})
	admin2 := mem.AddAdmin(models.Agent{Name: "admin-2", IsActive: true})
	mem.AddAdmin(models.Agent{Name: "inactive-admin", IsActive: false})

	ticket := openTicket(t, mem, models.CategoryBug)
	picked := r.Assign(context.Background(), ticket)

	assert.Nil(t, picked)

	updated, err := mem.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.AssignedTo)
	assert.Equal(t, models.StatusOpen, updated.Status, "status stays unchanged on escalation")

	notifications := mem.Notifications()
	require.Len(t, notifications, 2, "exactly one escalation per active admin")
	recipients := map[uuid.UUID]bool{}
	for _, n := range notifications {
		assert.Equal(t, models.NotifyTicketUnassigned, n.Type)
		assert.Equal(t, ticket.ID, n.TicketID)
		recipients[n.RecipientID] = true
	}
	assert.True(t, recipients[admin1.ID])
	assert.True(t, recipients[admin2.ID])
}

func TestAssignUsesUserCategoryWhenAIUnset(t *testing.T) {
	mem := store.NewMemoryStore()
	r := New(mem, notify.NewStoreSink(mem, nil))

	payments := seedAgent(mem, "payments", time.Hour, models.ExpertisePayment)
	seedAgent(mem, "generalist", 2*time.Hour, models.ExpertiseGeneral)

	ticket, err := mem.CreateTicket(context.Background(), store.TicketInput{
		UserID: uuid.New(), Title: "charged twice", Description: "see invoice",
		Category: models.CategoryPaymentIssue, Priority: models.PriorityHigh,
	})
	require.NoError(t, err)

	picked := r.Assign(context.Background(), ticket)
	require.NotNil(t, picked)
	assert.Equal(t, payments.ID, picked.ID)
}

func TestAssignLookupErrorLeavesUnassigned(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.FailListAgents = errors.New("connection refused")
	r := New(mem, notify.NewStoreSink(mem, nil))

	ticket := openTicket(t, mem, models.CategoryBug)
	picked := r.Assign(context.Background(), ticket)

	assert.Nil(t, picked)
	updated, err := mem.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.AssignedTo)
	assert.Equal(t, models.StatusOpen, updated.Status)
}

func TestAssignWriteErrorLeavesUnassigned(t *testing.T) {
	mem := store.NewMemoryStore()
	seedAgent(mem, "agent", time.Hour, models.ExpertiseGeneral)
	mem.FailAssign = errors.New("write conflict")
	r := New(mem, notify.NewStoreSink(mem, nil))

	ticket := openTicket(t, mem, models.CategoryGeneralQuery)
	assert.Nil(t, r.Assign(context.Background(), ticket))
}

func TestAssignNotifiesChosenAgent(t *testing.T) {
	mem := store.NewMemoryStore()
	r := New(mem, notify.NewStoreSink(mem, nil))
	agent := seedAgent(mem, "agent", time.Hour, models.ExpertiseTechnical)

	ticket := openTicket(t, mem, models.CategoryBug)
	require.NotNil(t, r.Assign(context.Background(), ticket))

	notifications := mem.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, agent.ID, notifications[0].RecipientID)
	assert.Equal(t, models.NotifyTicketAssigned, notifications[0].Type)
}

func TestAssignNeverRegressesStatus(t *testing.T) {
	mem := store.NewMemoryStore()
	r := New(mem, notify.NewStoreSink(mem, nil))
	first := seedAgent(mem, "first", 2*time.Hour, models.ExpertiseTechnical)

	ticket := openTicket(t, mem, models.CategoryBug)
	_, err := mem.AssignTicket(context.Background(), ticket.ID, first.ID)
	require.NoError(t, err)

	// A second assignment write finds the ticket already In Progress.
	ticket, err = mem.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, ticket.Status)

	r.Assign(context.Background(), ticket)
	updated, err := mem.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.NotNil(t, updated.AssignedTo)
}

func TestReassignNotifiesAgentAndOwner(t *testing.T) {
	mem := store.NewMemoryStore()
	r := New(mem, notify.NewStoreSink(mem, nil))
	agent := seedAgent(mem, "agent", time.Hour, models.ExpertiseTechnical)

	ticket := openTicket(t, mem, models.CategoryBug)
	updated, err := r.Reassign(context.Background(), ticket, agent.ID, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	notifications := mem.Notifications()
	require.Len(t, notifications, 2)
	recipients := map[uuid.UUID]models.NotificationType{}
	for _, n := range notifications {
		recipients[n.RecipientID] = n.Type
	}
	assert.Equal(t, models.NotifyTicketReassigned, recipients[agent.ID])
	assert.Equal(t, models.NotifyTicketReassigned, recipients[ticket.UserID])
}
