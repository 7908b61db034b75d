package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

// The resolvers below are the thin lookup surfaces over collaborator-owned
// tables (users, event_categories, invites). Full CRUD on those tables lives
// in other subsystems; this package only reads what the event lifecycle needs.

type identityResolver struct {
	DB *sql.DB
}

func NewIdentityResolver(db *sql.DB) domain.IdentityResolver {
	return &identityResolver{DB: db}
}

func (r *identityResolver) Resolve(ctx context.Context, userID string) (*domain.Identity, error) {
	query := `SELECT id, name, role FROM users WHERE id = $1`
	ident := &domain.Identity{}
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&ident.ID, &ident.DisplayName, &ident.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ident, nil
}

// AddressLookup resolves user ids to email addresses for the notification sender.
type AddressLookup struct {
	DB *sql.DB
}

func NewAddressLookup(db *sql.DB) *AddressLookup {
	return &AddressLookup{DB: db}
}

func (r *AddressLookup) EmailByUserID(ctx context.Context, userID string) (string, error) {
	query := `SELECT email FROM users WHERE id = $1`
	var email string
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return email, nil
}

type categoryResolver struct {
	DB *sql.DB
}

func NewCategoryResolver(db *sql.DB) domain.CategoryResolver {
	return &categoryResolver{DB: db}
}

func (r *categoryResolver) Resolve(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `SELECT id, name FROM event_categories WHERE id = $1`
	cat := &domain.Category{}
	err := r.DB.QueryRowContext(ctx, query, categoryID).Scan(&cat.ID, &cat.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return cat, nil
}

func (r *categoryResolver) Exists(ctx context.Context, categoryID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM event_categories WHERE id = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, categoryID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type inviteResolver struct {
	DB *sql.DB
}

func NewInviteResolver(db *sql.DB) domain.InviteResolver {
	return &inviteResolver{DB: db}
}

func (r *inviteResolver) Exists(ctx context.Context, inviteID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM invites WHERE id = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, inviteID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
