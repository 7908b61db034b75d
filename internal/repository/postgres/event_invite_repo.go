package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

const inviteColumns = `id, event_id, invite_ids, note, status, created_by, updated_by, created_at, updated_at`

type eventInviteRepository struct {
	DB *sql.DB
}

func NewEventInviteRepository(db *sql.DB) domain.EventInviteRepository {
	return &eventInviteRepository{
		DB: db,
	}
}

func scanInvite(row rowScanner) (*domain.EventInvite, error) {
	l := &domain.EventInvite{}
	err := row.Scan(
		&l.ID, &l.EventID, pq.Array(&l.InviteIDs), &l.Note, &l.Status,
		&l.CreatedBy, &l.UpdatedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *eventInviteRepository) GetByEventID(ctx context.Context, eventID string) (*domain.EventInvite, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_invites WHERE event_id = $1`, inviteColumns)
	return scanInvite(r.DB.QueryRowContext(ctx, query, eventID))
}

func (r *eventInviteRepository) Create(ctx context.Context, l *domain.EventInvite) error {
	query := `
		INSERT INTO event_invites (event_id, invite_ids, note, status, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		l.EventID, pq.Array(l.InviteIDs), l.Note, l.Status,
		l.CreatedBy, l.UpdatedBy, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
}

func (r *eventInviteRepository) Update(ctx context.Context, l *domain.EventInvite) error {
	query := `
		UPDATE event_invites
		SET invite_ids = $1, note = $2, status = $3, updated_by = $4, updated_at = NOW()
		WHERE id = $5
	`
	result, err := r.DB.ExecContext(ctx, query,
		pq.Array(l.InviteIDs), l.Note, l.Status, l.UpdatedBy, l.ID,
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

func (r *eventInviteRepository) Deactivate(ctx context.Context, eventID string) error {
	query := `UPDATE event_invites SET status = $1, updated_at = NOW() WHERE event_id = $2`
	_, err := r.DB.ExecContext(ctx, query, domain.LinkStatusInactive, eventID)
	return err
}
