package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/xuantoan98/event-ticketing-backend/internal/delivery/http/helpers"
	"github.com/xuantoan98/event-ticketing-backend/internal/delivery/http/middleware"
	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

// CreateEventRequest is the request body for POST /events. Dates are RFC 3339.
type CreateEventRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Location      string    `json:"location"`
	CoverImage    string    `json:"cover_image"`
	CategoryIDs   []string  `json:"category_ids"`
	IsLimitSeat   int       `json:"is_limit_seat"`
	TotalSeats    int       `json:"total_seats"`
	EstimatePrice float64   `json:"estimate_price"`
	RealPrice     float64   `json:"real_price"`
	Supporters    []string  `json:"supporters"`
	Invites       []string  `json:"invites"`
	Responsible   string    `json:"responsible"`
	Note          string    `json:"note"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if n := len(strings.TrimSpace(c.Title)); n < domain.TitleMinLen || n > domain.TitleMaxLen {
		errs = append(errs, fmt.Sprintf("title must be between %d and %d characters", domain.TitleMinLen, domain.TitleMaxLen))
	}
	if len(strings.TrimSpace(c.Description)) < domain.DescriptionMinLen {
		errs = append(errs, fmt.Sprintf("description must be at least %d characters", domain.DescriptionMinLen))
	}
	if strings.TrimSpace(c.Location) == "" {
		errs = append(errs, "location is required")
	}
	if c.StartDate.IsZero() {
		errs = append(errs, "start_date is required")
	}
	if c.EndDate.IsZero() {
		errs = append(errs, "end_date is required")
	}
	if len(c.CategoryIDs) == 0 {
		errs = append(errs, "at least one category is required")
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /events/{eventID}. All fields
// optional; omitted fields are unchanged. An omitted supporters or invites list
// leaves the existing membership alone; a present list replaces it.
type UpdateEventRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Location      *string    `json:"location"`
	CoverImage    *string    `json:"cover_image"`
	CategoryIDs   []string   `json:"category_ids"`
	IsLimitSeat   *int       `json:"is_limit_seat"`
	TotalSeats    *int       `json:"total_seats"`
	EstimatePrice *float64   `json:"estimate_price"`
	RealPrice     *float64   `json:"real_price"`
	Supporters    []string   `json:"supporters"`
	Invites       []string   `json:"invites"`
}

// Validate implements Validator. Bounds apply only to fields that are present.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil {
		if n := len(strings.TrimSpace(*u.Title)); n < domain.TitleMinLen || n > domain.TitleMaxLen {
			errs = append(errs, fmt.Sprintf("title must be between %d and %d characters", domain.TitleMinLen, domain.TitleMaxLen))
		}
	}
	if u.Description != nil && len(strings.TrimSpace(*u.Description)) < domain.DescriptionMinLen {
		errs = append(errs, fmt.Sprintf("description must be at least %d characters", domain.DescriptionMinLen))
	}
	if u.Location != nil && strings.TrimSpace(*u.Location) == "" {
		errs = append(errs, "location cannot be empty")
	}
	if u.CategoryIDs != nil && len(u.CategoryIDs) == 0 {
		errs = append(errs, "category_ids cannot be empty")
	}
	return errs
}

// EventSuccessResponse is the success response envelope for single-event operations.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Events     []*domain.EventListItem `json:"events"`
	Pagination helpers.PaginationMeta  `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// EventsByCategoriesResponse is the response body for GET /events/event-by-categories.
type EventsByCategoriesResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// writeServiceError maps domain sentinel errors to HTTP status codes and writes
// the error envelope. Unknown errors are logged and returned as 500.
func (c *EventController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

func actorOrUnauthorized(w http.ResponseWriter, r *http.Request) (*domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	return actor, true
}

// parseDateParam accepts RFC 3339 or a plain date (2006-01-02).
func parseDateParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event in status CREATE. The authenticated user becomes the owner. Supporters and invites, when given, are linked to the event and supporters are notified.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown category, supporter, or invite)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	input := &domain.CreateEventInput{
		Title:         req.Title,
		Description:   req.Description,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Location:      req.Location,
		CoverImage:    req.CoverImage,
		CategoryIDs:   req.CategoryIDs,
		IsLimitSeat:   req.IsLimitSeat,
		TotalSeats:    req.TotalSeats,
		EstimatePrice: req.EstimatePrice,
		RealPrice:     req.RealPrice,
		Supporters:    req.Supporters,
		Invites:       req.Invites,
		Responsible:   req.Responsible,
		Note:          req.Note,
	}
	event, err := c.Service.Create(r.Context(), input, actor)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEventByID godoc
// @Summary Get an event by ID
// @Description Returns the event. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetByID(r.Context(), eventID, actor)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Update event fields and, when present, replace supporter/invite membership. Only the owner or an admin may update.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to update; omitted fields are unchanged"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	input := &domain.UpdateEventInput{
		Patch: domain.EventPatch{
			Title:         req.Title,
			Description:   req.Description,
			Location:      req.Location,
			CoverImage:    req.CoverImage,
			StartDate:     req.StartDate,
			EndDate:       req.EndDate,
			CategoryIDs:   req.CategoryIDs,
			IsLimitSeat:   req.IsLimitSeat,
			TotalSeats:    req.TotalSeats,
			EstimatePrice: req.EstimatePrice,
			RealPrice:     req.RealPrice,
		},
		Supporters: req.Supporters,
		Invites:    req.Invites,
	}
	event, err := c.Service.Update(r.Context(), eventID, input, actor)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CancelEvent godoc
// @Summary Cancel an event
// @Description Set the event status to CANCELLED. Only the owner or an admin may cancel. Cancelling an already cancelled event is a no-op.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the cancelled event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/cancel [patch]
func (c *EventController) CancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	event, err := c.Service.Cancel(r.Context(), eventID, actor)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Cancel the event and deactivate its support and invite links. Only the owner or an admin may delete. The event row is retained.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains a status message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), eventID, actor); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListEvents godoc
// @Summary List events
// @Description Paginated event listing with optional text search, date window, and category filters. Rows are enriched with supporters, invitees, categories, and creator.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param q query string false "Case-insensitive title search"
// @Param startDate query string false "Window start (RFC 3339 or YYYY-MM-DD)"
// @Param endDate query string false "Window end (RFC 3339 or YYYY-MM-DD)"
// @Param categoryId query string false "Category ID filter"
// @Param sortBy query string false "Sort field: createdAt, updatedAt, title, startDate, endDate, status" default(createdAt)
// @Param sortOrder query string false "asc or desc" default(asc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := domain.EventFilter{
		Query:      q.Get("q"),
		CategoryID: q.Get("categoryId"),
	}
	if s := q.Get("startDate"); s != "" {
		t, err := parseDateParam(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid startDate")
			return
		}
		filter.StartDate = &t
	}
	if s := q.Get("endDate"); s != "" {
		t, err := parseDateParam(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid endDate")
			return
		}
		filter.EndDate = &t
	}
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.List(r.Context(), filter, q.Get("sortBy"), q.Get("sortOrder"), params, actor)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     items,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// MyEvents godoc
// @Summary List the authenticated user's events
// @Description Returns every event created by the authenticated user, newest first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user's events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/my-events [get]
func (c *EventController) MyEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	events, err := c.Service.MyEvents(r.Context(), actor)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// EventsByCategories godoc
// @Summary List events by categories
// @Description Paginated listing of events attached to any of the given categories.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param categoryIds query string true "Comma-separated category IDs"
// @Param sortBy query string false "Sort field: createdAt, updatedAt, title, startDate, endDate, status" default(createdAt)
// @Param sortOrder query string false "asc or desc" default(asc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/event-by-categories [get]
func (c *EventController) EventsByCategories(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("categoryIds"))
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "categoryIds is required")
		return
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListByCategories(r.Context(), ids, q.Get("sortBy"), q.Get("sortOrder"), params, actor)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventsByCategoriesResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
