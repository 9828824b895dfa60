// package api exposes the intake pipeline and the interactive AI helpers
// over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/resolvedesk/resolvedesk/internal/models"
	"github.com/resolvedesk/resolvedesk/internal/service"
	"github.com/resolvedesk/resolvedesk/internal/store"
)

// AIHelper is the interactive subset of the classifier used while a
// user composes a ticket.
type AIHelper interface {
	PredictFromTitle(ctx context.Context, title string) models.TitlePrediction
	GenerateDescription(ctx context.Context, title string) string
	SuggestReply(ctx context.Context, ticket models.Ticket, extra string) string
}

type Server struct {
	intake *service.IntakeService
	ai     AIHelper
	store  store.Store
}

func NewServer(intake *service.IntakeService, ai AIHelper, st store.Store) *Server {
	return &Server{intake: intake, ai: ai, store: st}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/tickets", s.handleCreateTicket)
		r.Get("/tickets/{ticketID}", s.handleGetTicket)
		r.Post("/ai/predict-title", s.handlePredictTitle)
		r.Post("/ai/generate-description", s.handleGenerateDescription)
		r.Post("/ai/suggest-reply/{ticketID}", s.handleSuggestReply)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]interface{}{
		"ok":   true,
		"time": time.Now().UTC(),
	}
	if err := s.store.Ping(ctx); err != nil {
		status["ok"] = false
		status["db"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

type createTicketRequest struct {
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid userId")
		return
	}

	ticket, err := s.intake.CreateTicket(r.Context(), service.CreateTicketInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    models.Category(req.Category),
		Priority:    models.Priority(req.Priority),
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, ticket)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ticketID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}
	ticket, err := s.intake.GetTicket(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "ticket not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

type titleRequest struct {
	Title string `json:"title"`
}

func (s *Server) handlePredictTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Title == "" {
		respondError(w, http.StatusBadRequest, "title required")
		return
	}
	respondJSON(w, http.StatusOK, s.ai.PredictFromTitle(r.Context(), req.Title))
}

func (s *Server) handleGenerateDescription(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Title == "" {
		respondError(w, http.StatusBadRequest, "title required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"description": s.ai.GenerateDescription(r.Context(), req.Title),
	})
}

type suggestReplyRequest struct {
	Context string `json:"context"`
}

func (s *Server) handleSuggestReply(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ticketID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}
	var req suggestReplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ticket, err := s.intake.GetTicket(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "ticket not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"suggestedReply": s.ai.SuggestReply(r.Context(), ticket, req.Context),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
