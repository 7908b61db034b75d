package domain

import "context"

// The interfaces below are the narrow surfaces of collaborators owned by other
// subsystems (user CRUD, category CRUD, invite CRUD, mail dispatch). They are
// consumed here and never reimplemented beyond thin lookup adapters.

// Identity is a resolved user reference.
type Identity struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name"`
}

// IdentityResolver resolves a user id to an identity. Returns ErrNotFound for
// an unknown id.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (*Identity, error)
}

// Category is a resolved event category reference (id and name only).
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryResolver resolves category ids against the category collaborator.
type CategoryResolver interface {
	Resolve(ctx context.Context, categoryID string) (*Category, error)
	Exists(ctx context.Context, categoryID string) (bool, error)
}

// InviteResolver checks invited-party ids against the invite collaborator.
type InviteResolver interface {
	Exists(ctx context.Context, inviteID string) (bool, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// NotificationSender delivers a fire-and-forget notification to a user.
// Failures are logged by callers, never surfaced to API clients.
type NotificationSender interface {
	Notify(ctx context.Context, userID, message string) error
}
