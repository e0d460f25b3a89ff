// Package incidents provides HTTP handlers and business logic for
// status-page incident management.
package incidents

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/barkbase/opsdash/internal/domain"
	"github.com/barkbase/opsdash/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Pagination constants.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers incident routes. The router group must
// already require authentication; write routes additionally gate on the
// incident-write capability before any handler runs.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/incidents", h.ListIncidents)
	r.Get("/incidents/{id}", h.GetIncident)

	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireIncidentWrite)
		r.Post("/incidents", h.CreateIncident)
		r.Put("/incidents/{id}", h.UpdateIncident)
		r.Post("/incidents/{id}/updates", h.AddIncidentUpdate)
	})
}

// CreateIncidentRequest represents the request body for creating an incident.
type CreateIncidentRequest struct {
	Title           string   `json:"title" validate:"required,min=1,max=255"`
	Severity        string   `json:"severity" validate:"required,oneof=degraded partial_outage major_outage"`
	Status          string   `json:"status" validate:"required,oneof=investigating identified monitoring resolved"`
	CustomerMessage string   `json:"customer_message" validate:"required,min=1"`
	InternalNotes   string   `json:"internal_notes"`
	Components      []string `json:"components"`
}

// UpdateIncidentRequest represents the request body for a partial update.
type UpdateIncidentRequest struct {
	Status          *string    `json:"status" validate:"omitempty,oneof=investigating identified monitoring resolved"`
	CustomerMessage *string    `json:"customer_message"`
	InternalNotes   *string    `json:"internal_notes"`
	ResolvedAt      *time.Time `json:"resolved_at"`
}

// AddUpdateRequest represents the request body for a timeline update.
type AddUpdateRequest struct {
	Message string `json:"message" validate:"required,min=1"`
	Status  string `json:"status" validate:"required,oneof=investigating identified monitoring resolved"`
}

// IncidentDetail is the GET response: the incident plus its timeline.
type IncidentDetail struct {
	*domain.Incident
	Updates []*domain.IncidentUpdate `json:"updates"`
}

// IncidentPage is the list response with pagination metadata.
type IncidentPage struct {
	Incidents []*domain.Incident `json:"incidents"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

var incidentErrorMappings = []httputil.ErrorMapping{
	{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
	{Error: ErrMissingField, Status: http.StatusBadRequest},
	{Error: ErrInvalidSeverity, Status: http.StatusBadRequest},
	{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
}

// CreateIncident handles POST /incidents.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	admin := httputil.GetAdmin(r.Context())

	incident, err := h.service.Create(r.Context(), CreateIncidentInput{
		Title:           req.Title,
		Severity:        domain.Severity(req.Severity),
		Status:          domain.IncidentStatus(req.Status),
		CustomerMessage: req.CustomerMessage,
		InternalNotes:   req.InternalNotes,
		Components:      req.Components,
	}, admin)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}

	httputil.JSON(w, http.StatusCreated, incident)
}

// GetIncident handles GET /incidents/{id}.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	incident, updates, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, IncidentDetail{Incident: incident, Updates: updates})
}

// ListIncidents handles GET /incidents.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Limit:  DefaultListLimit,
		Offset: 0,
	}

	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.IncidentStatus(status)
		if !s.IsValid() {
			httputil.Error(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = &s
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			httputil.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > MaxListLimit {
			n = MaxListLimit
		}
		filter.Limit = n
	}

	if offset := r.URL.Query().Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			httputil.Error(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	incidents, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, IncidentPage{
		Incidents: incidents,
		Total:     total,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
}

// UpdateIncident handles PUT /incidents/{id}.
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	admin := httputil.GetAdmin(r.Context())

	input := UpdateIncidentInput{
		CustomerMessage: req.CustomerMessage,
		InternalNotes:   req.InternalNotes,
		ResolvedAt:      req.ResolvedAt,
	}
	if req.Status != nil {
		s := domain.IncidentStatus(*req.Status)
		input.Status = &s
	}

	incident, err := h.service.Update(r.Context(), id, input, admin)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, incident)
}

// AddIncidentUpdate handles POST /incidents/{id}/updates.
func (h *Handler) AddIncidentUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AddUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	admin := httputil.GetAdmin(r.Context())

	update, err := h.service.AddUpdate(r.Context(), AddUpdateInput{
		IncidentID: id,
		Message:    req.Message,
		Status:     domain.IncidentStatus(req.Status),
	}, admin)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}

	httputil.JSON(w, http.StatusCreated, update)
}
