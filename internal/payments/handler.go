package payments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/provender-erp/provender/internal/ledger"
	"github.com/provender-erp/provender/internal/platform/httpx"
)

// Handler serves the settlement endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the payments Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the payments routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settlements", h.getSettlements)
	r.Get("/history/{supplyID}", h.getHistory)
	r.Post("/", h.registerPayment)
}

func (h *Handler) getSettlements(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Settlements(r.Context())
	if err != nil {
		h.logger.Error("payments settlements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	supplyID, err := strconv.ParseInt(chi.URLParam(r, "supplyID"), 10, 64)
	if err != nil || supplyID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "supply id must be a positive integer")
		return
	}
	history, err := h.service.History(r.Context(), supplyID)
	if err != nil {
		if errors.Is(err, ErrSupplyNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("payments history", slog.Int64("supply_id", supplyID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

func (h *Handler) registerPayment(w http.ResponseWriter, r *http.Request) {
	var input RegisterPaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		var fields []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fields: "+strings.Join(fields, ", "))
		return
	}

	payment, err := h.service.RegisterPayment(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrSupplyNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, ledger.ErrOverpayment):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Overpayment", err.Error())
		case errors.Is(err, ErrDuplicateNumber):
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
		default:
			h.logger.Error("register payment", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}
