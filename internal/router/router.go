// package router assigns classified tickets to support agents: expertise
// match first, least-workload fallback second, admin escalation when no
// agent is available.
package router

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/resolvedesk/resolvedesk/internal/models"
	"github.com/resolvedesk/resolvedesk/internal/notify"
	"github.com/resolvedesk/resolvedesk/internal/store"
)

type Router struct {
	store store.Store
	sink  notify.Sink
}

func New(st store.Store, sink notify.Sink) *Router {
	return &Router{store: st, sink: sink}
}

// expertiseFor maps a ticket category onto the agent skill vocabulary.
// Unrecognized input lands on general.
func expertiseFor(category models.Category) models.ExpertiseTag {
	switch models.Category(strings.TrimSpace(string(category))) {
	case models.CategoryBug, models.CategoryFeatureRequest:
		return models.ExpertiseTechnical
	case models.CategoryPaymentIssue:
		return models.ExpertisePayment
	case models.CategoryAccountIssue:
		return models.ExpertiseAccount
	default:
		return models.ExpertiseGeneral
	}
}

// Assign routes one ticket immediately after classification. It mutates
// assignedTo/status on success and returns the chosen agent, or nil when
// the ticket stays unassigned. It never returns an error: lookup and
// persistence failures are logged and surface as "no agent assigned" so
// ticket creation is never blocked by routing trouble.
//
// The workload read (ListActiveAgentWorkloads) and the assignment write
// (AssignTicket) are not fenced against concurrent intakes: two tickets
// routed at the same time can both observe the same least-loaded agent
// and both pick it. Accepted as eventually balanced; see DESIGN.md.
func (r *Router) Assign(ctx context.Context, ticket models.Ticket) *models.Agent {
	category := ticket.AICategory
	if category == "" {
		category = ticket.Category
	}
	target := expertiseFor(category)
	log.Printf("[router] routing ticket %s (category %q, expertise %q)", ticket.ID, category, target)

	agents, err := r.store.ListActiveAgentWorkloads(ctx)
	if err != nil {
		log.Printf("[router] agent lookup failed, leaving ticket %s unassigned: %v", ticket.ID, err)
		return nil
	}

	if len(agents) == 0 {
		log.Printf("[router] no active agents, escalating ticket %s to admins", ticket.ID)
		r.escalate(ctx, ticket)
		return nil
	}

	// Agents arrive sorted by workload then seniority; the first holder
	// of the target tag is the expert pick.
	var best *models.Agent
	for i := range agents {
		if agents[i].HasExpertise(target) {
			best = &agents[i]
			break
		}
	}
	strategy := "expertise match"
	if best == nil {
		best = &agents[0]
		strategy = "least-loaded fallback"
	}

	updated, err := r.store.AssignTicket(ctx, ticket.ID, best.ID)
	if err != nil {
		log.Printf("[router] assignment write failed, leaving ticket %s unassigned: %v", ticket.ID, err)
		return nil
	}

	log.Printf("[router] ticket %s assigned to %s (%s, workload %d, %s)",
		ticket.ID, best.Name, best.ID, best.Workload, strategy)

	if err := r.sink.Notify(ctx, best.ID, models.NotifyTicketAssigned,
		fmt.Sprintf("Auto-assigned: %q (%s)", updated.Title, strategy), ticket.ID); err != nil {
		log.Printf("[router] agent notification failed for ticket %s: %v", ticket.ID, err)
	}
	return best
}

// Reassign is the manual, admin-triggered variant of the assignment
// write. It shares the Open-to-In-Progress promotion invariant and
// additionally notifies the ticket's owner.
func (r *Router) Reassign(ctx context.Context, ticket models.Ticket, agentID uuid.UUID, actor string) (*models.Ticket, error) {
	updated, err := r.store.AssignTicket(ctx, ticket.ID, agentID)
	if err != nil {
		return nil, fmt.Errorf("reassign ticket: %w", err)
	}

	if err := r.sink.Notify(ctx, agentID, models.NotifyTicketReassigned,
		fmt.Sprintf("Reassigned to you by %s: %q", actor, updated.Title), ticket.ID); err != nil {
		log.Printf("[router] agent notification failed for ticket %s: %v", ticket.ID, err)
	}
	if err := r.sink.Notify(ctx, updated.UserID, models.NotifyTicketReassigned,
		fmt.Sprintf("Your ticket %q has been reassigned to a new agent.", updated.Title), ticket.ID); err != nil {
		log.Printf("[router] owner notification failed for ticket %s: %v", ticket.ID, err)
	}
	return &updated, nil
}

func (r *Router) escalate(ctx context.Context, ticket models.Ticket) {
	admins, err := r.store.ListActiveAdmins(ctx)
	if err != nil {
		log.Printf("[router] admin lookup failed for ticket %s: %v", ticket.ID, err)
		return
	}
	message := fmt.Sprintf("CRITICAL: No active agents available to handle new ticket: %q", ticket.Title)
	for _, admin := range admins {
		if err := r.sink.Notify(ctx, admin.ID, models.NotifyTicketUnassigned, message, ticket.ID); err != nil {
			log.Printf("[router] escalation notification to %s failed: %v", admin.ID, err)
		}
	}
}
