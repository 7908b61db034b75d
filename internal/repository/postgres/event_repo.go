package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

// eventColumns is the column list shared by every query that scans a full event row.
const eventColumns = `id, title, description, start_date, end_date, location, cover_image, status,
		category_ids, is_limit_seat, total_seats, total_customer_invites, total_supports,
		total_details, total_costs, total_feedbacks, estimate_price, real_price,
		created_by, updated_by, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.Location, &e.CoverImage, &e.Status,
		pq.Array(&e.CategoryIDs), &e.IsLimitSeat, &e.TotalSeats, &e.TotalCustomerInvites, &e.TotalSupports,
		&e.TotalDetails, &e.TotalCosts, &e.TotalFeedbacks, &e.EstimatePrice, &e.RealPrice,
		&e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, start_date, end_date, location, cover_image, status,
			category_ids, is_limit_seat, total_seats, estimate_price, real_price,
			created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.StartDate, e.EndDate, e.Location, e.CoverImage, e.Status,
		pq.Array(e.CategoryIDs), e.IsLimitSeat, e.TotalSeats, e.EstimatePrice, e.RealPrice,
		e.CreatedBy, e.UpdatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) Update(ctx context.Context, id string, patch *domain.EventPatch) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.CoverImage != nil {
		add("cover_image", *patch.CoverImage)
	}
	if patch.StartDate != nil {
		add("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		add("end_date", *patch.EndDate)
	}
	if patch.CategoryIDs != nil {
		add("category_ids", pq.Array(patch.CategoryIDs))
	}
	if patch.IsLimitSeat != nil {
		add("is_limit_seat", *patch.IsLimitSeat)
	}
	if patch.TotalSeats != nil {
		add("total_seats", *patch.TotalSeats)
	}
	if patch.EstimatePrice != nil {
		add("estimate_price", *patch.EstimatePrice)
	}
	if patch.RealPrice != nil {
		add("real_price", *patch.RealPrice)
	}
	if patch.UpdatedBy != "" {
		add("updated_by", patch.UpdatedBy)
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	return scanEvent(r.DB.QueryRowContext(ctx, query, args...))
}

func (r *eventRepository) SetStatus(ctx context.Context, id string, status domain.EventStatus) (*domain.Event, error) {
	query := fmt.Sprintf(`
		UPDATE events SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s
	`, eventColumns)
	return scanEvent(r.DB.QueryRowContext(ctx, query, string(status), id))
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, sort domain.SortSpec, params domain.PaginationParams) ([]*domain.Event, int, error) {
	whereClauses := []string{}
	args := []interface{}{}
	n := 1
	if filter.Query != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("title ILIKE '%%' || $%d || '%%'", n))
		args = append(args, filter.Query)
		n++
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		// Window overlap: the event intersects [StartDate, EndDate].
		whereClauses = append(whereClauses, fmt.Sprintf("end_date >= $%d AND start_date <= $%d", n, n+1))
		args = append(args, *filter.StartDate, *filter.EndDate)
		n += 2
	}
	if filter.CategoryID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("$%d = ANY(category_ids)", n))
		args = append(args, filter.CategoryID)
		n++
	}
	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM events %s`, where)
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		eventColumns, where, sort.Field, direction(sort), n, n+1)
	args = append(args, params.PageSize, params.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE created_by = $1 ORDER BY created_at DESC`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ListByCategories(ctx context.Context, categoryIDs []string, sort domain.SortSpec, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM events WHERE category_ids && $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, pq.Array(categoryIDs)).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM events WHERE category_ids && $1 ORDER BY %s %s LIMIT $2 OFFSET $3`,
		eventColumns, sort.Field, direction(sort))
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(categoryIDs), params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) CloseEnded(ctx context.Context, now time.Time) (int64, error) {
	// CANCELLED must be excluded explicitly: cancellation is terminal and the
	// sweep must never overwrite it.
	query := `
		UPDATE events SET status = $1, updated_at = NOW()
		WHERE status NOT IN ($1, $2) AND end_date < $3
	`
	result, err := r.DB.ExecContext(ctx, query,
		string(domain.EventStatusClosed), string(domain.EventStatusCancelled), now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *eventRepository) StartDue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE events SET status = $1, updated_at = NOW()
		WHERE status = $2 AND start_date <= $3
	`
	result, err := r.DB.ExecContext(ctx, query,
		string(domain.EventStatusProcess), string(domain.EventStatusCreate), now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func direction(sort domain.SortSpec) string {
	if sort.Ascending {
		return "ASC"
	}
	return "DESC"
}
