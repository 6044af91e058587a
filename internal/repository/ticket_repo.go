package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/terminal-bench/reliefops/internal/models"
)

const ticketColumns = `id, external_id, status, priority, people, latitude, longitude, region, category,
	text, place, assigned_to, notes, reported_at, created_at, updated_at`

// TicketRepository persists SOS tickets and their update history.
type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(&t.ID, &t.ExternalID, &t.Status, &t.Priority, &t.People,
		&t.Latitude, &t.Longitude, &t.Region, &t.Category, &t.Text, &t.Place,
		&t.AssignedTo, &t.Notes, &t.ReportedAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts a classified ticket.
func (r *TicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sos_tickets (`+ticketColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		t.ID, t.ExternalID, t.Status, t.Priority, t.People, t.Latitude, t.Longitude,
		t.Region, t.Category, t.Text, t.Place, t.AssignedTo, t.Notes, t.ReportedAt,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the ticket does not exist.
func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM sos_tickets WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &t, nil
}

// List returns every ticket, most urgent first.
func (r *TicketRepository) List(ctx context.Context) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM sos_tickets ORDER BY priority DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]models.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// Update stores the mutable fields of t and appends history rows in the same
// transaction.
func (r *TicketRepository) Update(ctx context.Context, t *models.Ticket, history []models.TicketUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sos_tickets SET status = $1, assigned_to = $2, notes = $3, updated_at = $4
		 WHERE id = $5`,
		t.Status, t.AssignedTo, t.Notes, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update ticket %s: %w", t.ID, sql.ErrNoRows)
	}

	for _, u := range history {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ticket_updates (id, ticket_id, updated_by, field_name, old_value, new_value, notes, update_time)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			u.ID, u.TicketID, u.UpdatedBy, u.FieldName, u.OldValue, u.NewValue, u.Notes, u.UpdateTime,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ticket update: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ticket update: %w", err)
	}
	return nil
}

// History returns the update rows of a ticket, oldest first.
func (r *TicketRepository) History(ctx context.Context, ticketID uuid.UUID) ([]models.TicketUpdate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ticket_id, updated_by, field_name, old_value, new_value, notes, update_time
		 FROM ticket_updates WHERE ticket_id = $1 ORDER BY update_time, id`,
		ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket history: %w", err)
	}
	defer rows.Close()

	updates := make([]models.TicketUpdate, 0)
	for rows.Next() {
		var u models.TicketUpdate
		if err := rows.Scan(&u.ID, &u.TicketID, &u.UpdatedBy, &u.FieldName,
			&u.OldValue, &u.NewValue, &u.Notes, &u.UpdateTime); err != nil {
			return nil, fmt.Errorf("failed to scan ticket update: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
