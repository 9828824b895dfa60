// package service orchestrates the ticket-intake pipeline: translate,
// persist, classify, route, notify. Every ticket that passes validation
// is created; provider and routing failures degrade the result, never
// the creation.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/resolvedesk/resolvedesk/internal/models"
	"github.com/resolvedesk/resolvedesk/internal/notify"
	"github.com/resolvedesk/resolvedesk/internal/store"
)

// Analyzer is the classifier surface the intake pipeline needs.
type Analyzer interface {
	Classify(ctx context.Context, title, description string) models.ClassificationResult
}

// Detector normalizes incoming text to English before classification.
type Detector interface {
	DetectAndTranslate(ctx context.Context, title, description string) models.TranslationResult
}

// Assigner routes a classified ticket to an agent, or leaves it
// unassigned and escalates.
type Assigner interface {
	Assign(ctx context.Context, ticket models.Ticket) *models.Agent
}

type IntakeService struct {
	store      store.Store
	translator Detector
	analyzer   Analyzer
	router     Assigner
	sink       notify.Sink
}

func NewIntakeService(st store.Store, translator Detector, analyzer Analyzer, router Assigner, sink notify.Sink) *IntakeService {
	return &IntakeService{
		store:      st,
		translator: translator,
		analyzer:   analyzer,
		router:     router,
		sink:       sink,
	}
}

type CreateTicketInput struct {
	UserID      uuid.UUID
	Title       string
	Description string
	Category    models.Category
	Priority    models.Priority
}

// CreateTicket runs the full intake pipeline. It fails only on invalid
// input or if the initial persist fails; everything after that point is
// best effort and the ticket survives.
func (s *IntakeService) CreateTicket(ctx context.Context, in CreateTicketInput) (models.Ticket, error) {
	if in.Title == "" || in.Description == "" {
		return models.Ticket{}, fmt.Errorf("title and description required")
	}
	if in.UserID == uuid.Nil {
		return models.Ticket{}, fmt.Errorf("user id required")
	}
	category := in.Category
	if !models.ValidCategory(category) {
		category = models.CategoryGeneralQuery
	}
	priority := in.Priority
	if !models.ValidPriority(priority) {
		priority = models.PriorityMedium
	}

	// The working title/description are always English; originals are
	// kept for display. A failed detection assumes English.
	translation := s.translator.DetectAndTranslate(ctx, in.Title, in.Description)

	ticket, err := s.store.CreateTicket(ctx, store.TicketInput{
		UserID:              in.UserID,
		Title:               translation.TranslatedTitle,
		Description:         translation.TranslatedDescription,
		Category:            category,
		Priority:            priority,
		OriginalLanguage:    translation.Language,
		OriginalTitle:       in.Title,
		OriginalDescription: in.Description,
	})
	if err != nil {
		return models.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}

	// Classification never errors; it degrades to the keyword heuristic.
	result := s.analyzer.Classify(ctx, ticket.Title, ticket.Description)
	analyzedAt := time.Now().UTC()
	if err := s.store.SetTicketAnalysis(ctx, ticket.ID, result, analyzedAt); err != nil {
		log.Printf("[intake] persisting analysis for ticket %s failed: %v", ticket.ID, err)
	} else {
		ticket.AICategory = result.Category
		ticket.AIPriority = result.Priority
		ticket.AISentiment = result.Sentiment
		ticket.AISummary = result.Summary
		ticket.AISuggestedReply = result.SuggestedReply
		ticket.AIAnalyzedAt = &analyzedAt
	}

	if agent := s.router.Assign(ctx, ticket); agent != nil {
		refreshed, err := s.store.GetTicket(ctx, ticket.ID)
		if err == nil {
			ticket = refreshed
		}
	}

	if err := s.sink.Notify(ctx, in.UserID, models.NotifyTicketCreated,
		fmt.Sprintf("Your ticket %q has been created successfully.", in.Title), ticket.ID); err != nil {
		log.Printf("[intake] creation notification failed for ticket %s: %v", ticket.ID, err)
	}

	return ticket, nil
}

// GetTicket reads a ticket back for the API layer.
func (s *IntakeService) GetTicket(ctx context.Context, id uuid.UUID) (models.Ticket, error) {
	return s.store.GetTicket(ctx, id)
}
