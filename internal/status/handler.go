package status

import (
	"net/http"

	"github.com/barkbase/opsdash/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles the unauthenticated public status routes.
type Handler struct {
	service *Service
}

// NewHandler creates a new status handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public status routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.GetStatus)
	r.Get("/status/banner", h.GetBanner)
}

// GetStatus handles GET /status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.JSON(w, http.StatusOK, overview)
}

// GetBanner handles GET /status/banner.
func (h *Handler) GetBanner(w http.ResponseWriter, r *http.Request) {
	banner, err := h.service.Banner(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.JSON(w, http.StatusOK, banner)
}
