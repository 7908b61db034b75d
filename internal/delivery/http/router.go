package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/xuantoan98/event-ticketing-backend/internal/delivery/http/controllers"
	"github.com/xuantoan98/event-ticketing-backend/internal/delivery/http/middleware"
	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Every event route requires an authenticated actor.
func NewRouter(
	eventController *controllers.EventController,
	verifier domain.TokenVerifier,
	identities domain.IdentityResolver,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireActor(verifier, identities, logger)

	// Event Routes. The fixed paths are registered before the {eventID}
	// wildcard so my-events and event-by-categories are not captured as ids.
	mux.HandleFunc("GET /events", auth(eventController.ListEvents))
	mux.HandleFunc("GET /events/my-events", auth(eventController.MyEvents))
	mux.HandleFunc("GET /events/event-by-categories", auth(eventController.EventsByCategories))
	mux.HandleFunc("GET /events/{eventID}", auth(eventController.GetEventByID))
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("PATCH /events/{eventID}/cancel", auth(eventController.CancelEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
