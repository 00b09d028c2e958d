package stock

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/provender-erp/provender/internal/platform/httpx"
)

// Handler serves the stock dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the stock Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/overview", h.getOverview)
	r.Get("/card/{accountKey}", h.getCard)
	r.Post("/refresh", h.refresh)
}

func (h *Handler) getOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.Error("stock overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) getCard(w http.ResponseWriter, r *http.Request) {
	accountKey, err := url.PathUnescape(chi.URLParam(r, "accountKey"))
	if err != nil || accountKey == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "account key required")
		return
	}
	card, err := h.service.Card(r.Context(), accountKey)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("stock card", slog.String("account", accountKey), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, card)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Invalidate(r.Context()); err != nil {
		h.logger.Error("stock cache invalidate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}
