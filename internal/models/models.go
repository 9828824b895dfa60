package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the ticket topic vocabulary shared by user-supplied and
// AI-derived classification.
type Category string

const (
	CategoryBug            Category = "Bug"
	CategoryPaymentIssue   Category = "Payment Issue"
	CategoryAccountIssue   Category = "Account Issue"
	CategoryFeatureRequest Category = "Feature Request"
	CategoryGeneralQuery   Category = "General Query"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

type Sentiment string

const (
	SentimentAngry      Sentiment = "Angry"
	SentimentFrustrated Sentiment = "Frustrated"
	SentimentNeutral    Sentiment = "Neutral"
	SentimentCalm       Sentiment = "Calm"
	SentimentHappy      Sentiment = "Happy"
)

type TicketStatus string

const (
	StatusOpen       TicketStatus = "Open"
	StatusInProgress TicketStatus = "In Progress"
	StatusResolved   TicketStatus = "Resolved"
	StatusClosed     TicketStatus = "Closed"
)

// ExpertiseTag names one skill area an agent can hold. Ticket categories
// map onto these tags during routing.
type ExpertiseTag string

const (
	ExpertisePayment   ExpertiseTag = "payment"
	ExpertiseTechnical ExpertiseTag = "technical"
	ExpertiseAccount   ExpertiseTag = "account"
	ExpertiseGeneral   ExpertiseTag = "general"
)

// ValidCategory reports whether c is one of the declared category values.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryBug, CategoryPaymentIssue, CategoryAccountIssue, CategoryFeatureRequest, CategoryGeneralQuery:
		return true
	}
	return false
}

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ValidSentiment(s Sentiment) bool {
	switch s {
	case SentimentAngry, SentimentFrustrated, SentimentNeutral, SentimentCalm, SentimentHappy:
		return true
	}
	return false
}

// ClassificationResult is the structured outcome of analyzing a ticket.
// Every field is always one of its enumerated values or a safe default;
// callers never see a raw provider string here.
type ClassificationResult struct {
	Category       Category  `json:"category"`
	Priority       Priority  `json:"priority"`
	Sentiment      Sentiment `json:"sentiment"`
	Summary        string    `json:"summary"`
	SuggestedReply string    `json:"suggestedReply"`
}

// TitlePrediction is the lightweight interactive variant returned while
// a user is still typing the ticket.
type TitlePrediction struct {
	Priority Priority `json:"priority"`
	Category Category `json:"category"`
}

type Ticket struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	Priority    Priority     `json:"priority"`
	Status      TicketStatus `json:"status"`

	// Multilingual intake: the working Title/Description above are always
	// English; the originals are retained for display.
	OriginalLanguage    string `json:"originalLanguage,omitempty"`
	OriginalTitle       string `json:"originalTitle,omitempty"`
	OriginalDescription string `json:"originalDescription,omitempty"`

	// AI fields, written once at intake. Unset when classification was
	// skipped entirely.
	AICategory       Category   `json:"aiCategory,omitempty"`
	AIPriority       Priority   `json:"aiPriority,omitempty"`
	AISentiment      Sentiment  `json:"aiSentiment,omitempty"`
	AISummary        string     `json:"aiSummary,omitempty"`
	AISuggestedReply string     `json:"aiSuggestedReply,omitempty"`
	AIAnalyzedAt     *time.Time `json:"aiAnalyzedAt,omitempty"`

	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Agent is the routing-relevant view of a support agent. Workload is
// derived at query time, never stored.
type Agent struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	IsActive  bool           `json:"isActive"`
	Expertise []ExpertiseTag `json:"expertise"`
	Workload  int            `json:"workload"`
	CreatedAt time.Time      `json:"createdAt"`
}

// HasExpertise reports whether the agent carries the given tag.
func (a Agent) HasExpertise(tag ExpertiseTag) bool {
	for _, t := range a.Expertise {
		if t == tag {
			return true
		}
	}
	return false
}

type NotificationType string

const (
	NotifyTicketCreated    NotificationType = "TICKET_CREATED"
	NotifyTicketAssigned   NotificationType = "TICKET_ASSIGNED"
	NotifyTicketUnassigned NotificationType = "TICKET_UNASSIGNED"
	NotifyTicketReassigned NotificationType = "TICKET_REASSIGNED"
)

type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipientId"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	TicketID    uuid.UUID        `json:"ticketId"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// TranslationResult is the outcome of language detection on an incoming
// ticket. When the input is already English the translated fields echo
// the input.
type TranslationResult struct {
	Language              string `json:"language"`
	TranslatedTitle       string `json:"translatedTitle"`
	TranslatedDescription string `json:"translatedDescription"`
}
