package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/resolvedesk/resolvedesk/internal/models"
)

type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const ticketColumns = `
	id, user_id, title, description, category, priority, status,
	original_language, original_title, original_description,
	ai_category, ai_priority, ai_sentiment, ai_summary, ai_suggested_reply, ai_analyzed_at,
	assigned_to, created_at, updated_at
`

func (s *PGStore) CreateTicket(ctx context.Context, in TicketInput) (models.Ticket, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	query := `
		INSERT INTO tickets (id, user_id, title, description, category, priority, status,
		                     original_language, original_title, original_description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at
	`
	var created, updated time.Time
	err := s.db.QueryRowContext(ctx, query,
		in.ID, in.UserID, in.Title, in.Description, in.Category, in.Priority, models.StatusOpen,
		in.OriginalLanguage, in.OriginalTitle, in.OriginalDescription,
	).Scan(&created, &updated)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	return models.Ticket{
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
		CreatedAt:           created,
		UpdatedAt:           updated,
	}, nil
}

func (s *PGStore) GetTicket(ctx context.Context, id uuid.UUID) (models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, ErrNotFound
		}
		return models.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

func (s *PGStore) SetTicketAnalysis(ctx context.Context, id uuid.UUID, result models.ClassificationResult, analyzedAt time.Time) error {
	query := `
		UPDATE tickets
		SET ai_category=$2, ai_priority=$3, ai_sentiment=$4, ai_summary=$5,
		    ai_suggested_reply=$6, ai_analyzed_at=$7, updated_at=NOW()
		WHERE id=$1
	`
	res, err := s.db.ExecContext(ctx, query, id,
		result.Category, result.Priority, result.Sentiment, result.Summary, result.SuggestedReply, analyzedAt)
	if err != nil {
		return fmt.Errorf("set ticket analysis: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) AssignTicket(ctx context.Context, ticketID, agentID uuid.UUID) (models.Ticket, error) {
	// Open promotes to In Progress in the same write; any other status is
	// left untouched.
	query := `
		UPDATE tickets
		SET assigned_to=$2,
		    status=CASE WHEN status='Open' THEN 'In Progress' ELSE status END,
		    updated_at=NOW()
		WHERE id=$1
		RETURNING ` + ticketColumns
	ticket, err := scanTicket(s.db.QueryRowContext(ctx, query, ticketID, agentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, ErrNotFound
		}
		return models.Ticket{}, fmt.Errorf("assign ticket: %w", err)
	}
	return ticket, nil
}

func (s *PGStore) ListActiveAgentWorkloads(ctx context.Context) ([]models.Agent, error) {
	query := `
		SELECT u.id, u.name, u.email, u.expertise, u.created_at,
		       COUNT(t.id) AS workload
		FROM users u
		LEFT JOIN tickets t
		  ON t.assigned_to = u.id AND t.status IN ('Open', 'In Progress')
		WHERE u.role = 'agent' AND u.is_active = TRUE
		GROUP BY u.id, u.name, u.email, u.expertise, u.created_at
		ORDER BY workload ASC, u.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list agent workloads: %w", err)
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		var agent models.Agent
		var expertise pq.StringArray
		if err := rows.Scan(&agent.ID, &agent.Name, &agent.Email, &expertise, &agent.CreatedAt, &agent.Workload); err != nil {
			return nil, fmt.Errorf("scan agent workload: %w", err)
		}
		agent.IsActive = true
		for _, tag := range expertise {
			agent.Expertise = append(agent.Expertise, models.ExpertiseTag(tag))
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list agent workloads: %w", err)
	}
	return agents, nil
}

func (s *PGStore) ListActiveAdmins(ctx context.Context) ([]models.Agent, error) {
	query := `
		SELECT id, name, email, created_at
		FROM users
		WHERE role = 'admin' AND is_active = TRUE
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Agent
	for rows.Next() {
		var admin models.Agent
		if err := rows.Scan(&admin.ID, &admin.Name, &admin.Email, &admin.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admin.IsActive = true
		admins = append(admins, admin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

func (s *PGStore) CreateNotification(ctx context.Context, in NotificationInput) (models.Notification, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	query := `
		INSERT INTO notifications (id, recipient_id, type, message, ticket_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`
	var created time.Time
	if err := s.db.QueryRowContext(ctx, query, in.ID, in.RecipientID, in.Type, in.Message, in.TicketID).Scan(&created); err != nil {
		return models.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return models.Notification{
		ID:          in.ID,
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Message:     in.Message,
		TicketID:    in.TicketID,
		CreatedAt:   created,
	}, nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (models.Ticket, error) {
	var (
		ticket     models.Ticket
		origLang   sql.NullString
		origTitle  sql.NullString
		origDesc   sql.NullString
		aiCategory sql.NullString
		aiPriority sql.NullString
		aiSent     sql.NullString
		aiSummary  sql.NullString
		aiReply    sql.NullString
		analyzedAt sql.NullTime
		assignedTo sql.NullString
	)
	err := row.Scan(
		&ticket.ID, &ticket.UserID, &ticket.Title, &ticket.Description,
		&ticket.Category, &ticket.Priority, &ticket.Status,
		&origLang, &origTitle, &origDesc,
		&aiCategory, &aiPriority, &aiSent, &aiSummary, &aiReply, &analyzedAt,
		&assignedTo, &ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		return models.Ticket{}, err
	}
	ticket.OriginalLanguage = origLang.String
	ticket.OriginalTitle = origTitle.String
	ticket.OriginalDescription = origDesc.String
	ticket.AICategory = models.Category(aiCategory.String)
	ticket.AIPriority = models.Priority(aiPriority.String)
	ticket.AISentiment = models.Sentiment(aiSent.String)
	ticket.AISummary = aiSummary.String
	ticket.AISuggestedReply = aiReply.String
	if analyzedAt.Valid {
		t := analyzedAt.Time
		ticket.AIAnalyzedAt = &t
	}
	if assignedTo.Valid {
		id, err := uuid.Parse(assignedTo.String)
		if err == nil {
			ticket.AssignedTo = &id
		}
	}
	return ticket, nil
}
