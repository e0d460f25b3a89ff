package directory

import (
	"net/http"

	"github.com/barkbase/opsdash/internal/audit"
	"github.com/barkbase/opsdash/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for the directory module.
type Handler struct {
	service *Service
	audit   audit.Recorder
}

// NewHandler creates a new directory handler.
func NewHandler(service *Service, recorder audit.Recorder) *Handler {
	return &Handler{service: service, audit: recorder}
}

// RegisterRoutes registers directory routes. The group must already
// require authentication; no write capability is involved here.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/search", h.Search)
	r.Get("/tenants/{id}", h.GetTenant)
	r.Get("/tenants/{id}/users", h.ListTenantUsers)
}

var directoryErrorMappings = []httputil.ErrorMapping{
	{Error: ErrTenantNotFound, Status: http.StatusNotFound},
	{Error: ErrQueryTooShort, Status: http.StatusBadRequest},
}

// Search handles GET /search?q=. Successful queries are audited so there
// is a record of who looked up what.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, directoryErrorMappings)
		return
	}

	admin := httputil.GetAdmin(r.Context())
	h.audit.Record(r.Context(), admin, "admin.search", "search", "", map[string]any{
		"query":       query,
		"tenant_hits": len(result.Tenants),
		"user_hits":   len(result.Users),
	})

	httputil.JSON(w, http.StatusOK, result)
}

// GetTenant handles GET /tenants/{id}.
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.service.GetTenantDetail(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, directoryErrorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, detail)
}

// ListTenantUsers handles GET /tenants/{id}/users.
func (h *Handler) ListTenantUsers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	users, err := h.service.ListTenantUsers(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, directoryErrorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"users": users})
}
