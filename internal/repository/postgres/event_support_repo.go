package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

const supportColumns = `id, event_id, user_ids, responsible, description, note, is_accept, status,
		created_by, updated_by, created_at, updated_at`

type eventSupportRepository struct {
	DB *sql.DB
}

func NewEventSupportRepository(db *sql.DB) domain.EventSupportRepository {
	return &eventSupportRepository{
		DB: db,
	}
}

func scanSupport(row rowScanner) (*domain.EventSupport, error) {
	l := &domain.EventSupport{}
	err := row.Scan(
		&l.ID, &l.EventID, pq.Array(&l.UserIDs), &l.Responsible, &l.Description, &l.Note,
		&l.IsAccept, &l.Status, &l.CreatedBy, &l.UpdatedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *eventSupportRepository) GetByEventID(ctx context.Context, eventID string) (*domain.EventSupport, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_supports WHERE event_id = $1`, supportColumns)
	return scanSupport(r.DB.QueryRowContext(ctx, query, eventID))
}

func (r *eventSupportRepository) Create(ctx context.Context, l *domain.EventSupport) error {
	query := `
		INSERT INTO event_supports (event_id, user_ids, responsible, description, note, is_accept, status,
			created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		l.EventID, pq.Array(l.UserIDs), l.Responsible, l.Description, l.Note, l.IsAccept, l.Status,
		l.CreatedBy, l.UpdatedBy, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
}

func (r *eventSupportRepository) Update(ctx context.Context, l *domain.EventSupport) error {
	query := `
		UPDATE event_supports
		SET user_ids = $1, responsible = $2, description = $3, note = $4, is_accept = $5,
			status = $6, updated_by = $7, updated_at = NOW()
		WHERE id = $8
	`
	result, err := r.DB.ExecContext(ctx, query,
		pq.Array(l.UserIDs), l.Responsible, l.Description, l.Note, l.IsAccept,
		l.Status, l.UpdatedBy, l.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventSupportRepository) Deactivate(ctx context.Context, eventID string) error {
	query := `UPDATE event_supports SET status = $1, updated_at = NOW() WHERE event_id = $2`
	_, err := r.DB.ExecContext(ctx, query, domain.LinkStatusInactive, eventID)
	return err
}
