package domain

// Role is the application role attached to an authenticated user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleCustomer  Role = "customer"
)

// Actor is the authenticated identity performing an operation. Every service
// entry point takes it explicitly; a nil actor means the request was not
// authenticated and must be rejected with ErrUnauthorized.
type Actor struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name"`
}

// IsAdmin reports whether the actor carries the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// CanMutate reports whether the actor may update, cancel, or delete a resource
// owned by ownerID: admins always, otherwise only the owner. A nil actor can
// mutate nothing.
func CanMutate(actor *Actor, ownerID string) bool {
	if actor == nil {
		return false
	}
	if actor.Role == RoleAdmin {
		return true
	}
	return actor.ID == ownerID
}
