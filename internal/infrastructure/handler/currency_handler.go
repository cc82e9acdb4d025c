package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/campoverde/currency-sync-service/internal/apperrors"
	"github.com/campoverde/currency-sync-service/internal/application/service"
	"github.com/campoverde/currency-sync-service/internal/domain/entity"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CurrencyHandler exposes the currency facade over HTTP to the screens that
// consume it.
type CurrencyHandler struct {
	service *service.CurrencyService
	logger  *zap.Logger
}

// NewCurrencyHandler creates a currency handler.
func NewCurrencyHandler(svc *service.CurrencyService, log *zap.Logger) *CurrencyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CurrencyHandler{service: svc, logger: log}
}

// RegisterRoutes registers the currency routes.
func (h *CurrencyHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/currency", h.GetRateInfo).Methods(http.MethodGet)
	router.HandleFunc("/currency/format", h.FormatAmount).Methods(http.MethodGet)
	router.HandleFunc("/currency/convert", h.ConvertAmount).Methods(http.MethodGet)
	router.HandleFunc("/currency/display", h.ChangeCurrency).Methods(http.MethodPut)
	router.HandleFunc("/currency/exchange-type", h.ChangeExchangeType).Methods(http.MethodPut)
	router.HandleFunc("/currency/rates/refresh", h.RefreshRates).Methods(http.MethodPost)
}

// GetRateInfo returns the current selection, cached rates and loading flag.
func (h *CurrencyHandler) GetRateInfo(w http.ResponseWriter, r *http.Request) {
	info := h.service.RateInfo()

	resp := RateInfoResponse{
		DisplayCurrency: string(info.DisplayCurrency),
		RateKind:        string(info.RateKind),
		Rates:           make(map[string]RateResponse, len(info.Rates)),
		Loading:         h.service.Loading(),
	}
	if !info.LastUpdate.IsZero() {
		resp.LastUpdate = info.LastUpdate.Format(time.RFC3339)
	}
	for kind, rate := range info.Rates {
		resp.Rates[string(kind)] = RateResponse{
			Currency:   string(rate.Currency),
			Kind:       string(rate.Kind),
			Rate:       rate.Rate.Float64(),
			ObservedAt: rate.ObservedAt.Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// FormatAmount renders a native amount in the selected display currency.
func (h *CurrencyHandler) FormatAmount(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	raw := r.URL.Query().Get("amount")
	if raw == "" {
		h.sendError(w, "Missing amount parameter",
			"The 'amount' query parameter is required", http.StatusBadRequest, requestID)
		return
	}

	// A malformed amount is a bad request; a non-finite one is the
	// facade's job to neutralize.
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.sendError(w, "Invalid amount parameter",
			"The 'amount' query parameter must be a number", http.StatusBadRequest, requestID)
		return
	}

	sel := h.service.CurrentSelection()
	writeJSON(w, http.StatusOK, FormatResponse{
		Amount:    amount,
		Currency:  string(sel.DisplayCurrency),
		Formatted: h.service.FormatCurrency(amount),
	})
}

// ConvertAmount returns a raw converted amount between two currencies.
func (h *CurrencyHandler) ConvertAmount(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	amount, err := strconv.ParseFloat(query.Get("amount"), 64)
	if err != nil {
		h.sendError(w, "Invalid amount parameter",
			"The 'amount' query parameter must be a number", http.StatusBadRequest, requestID)
		return
	}

	from, err := entity.ParseCurrency(query.Get("from"))
	if err != nil {
		h.sendError(w, "Invalid source currency", err.Error(), http.StatusBadRequest, requestID)
		return
	}
	to, err := entity.ParseCurrency(query.Get("to"))
	if err != nil {
		h.sendError(w, "Invalid target currency", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		Amount:    amount,
		From:      string(from),
		To:        string(to),
		Converted: h.service.ConvertCurrency(amount, from, to),
	})
}

// ChangeCurrency switches the display currency.
func (h *CurrencyHandler) ChangeCurrency(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req ChangeCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	currency, err := entity.ParseCurrency(req.Currency)
	if err != nil {
		h.sendError(w, "Invalid currency", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	if err := h.service.ChangeCurrency(r.Context(), currency); err != nil {
		h.sendError(w, "Failed to change currency", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	h.GetRateInfo(w, r)
}

// ChangeExchangeType switches the rate kind used for foreign display.
func (h *CurrencyHandler) ChangeExchangeType(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req ChangeExchangeTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	kind, err := entity.ParseRateKind(req.ExchangeType)
	if err != nil {
		h.sendError(w, "Invalid exchange type", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	if err := h.service.ChangeExchangeType(r.Context(), kind); err != nil {
		h.sendError(w, "Failed to change exchange type", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	h.GetRateInfo(w, r)
}

// RefreshRates triggers an explicit refresh. This is the only path where a
// provider failure reaches the UI; passive formatting keeps serving the
// last-known cache.
func (h *CurrencyHandler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.service.UpdateRates(r.Context()); err != nil {
		if errors.Is(err, apperrors.ErrRateFetch) {
			h.logger.Warn("manual rate refresh failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			h.sendError(w, "Rate provider unavailable",
				"Unable to retrieve exchange rates. The last-known rates are still in use.",
				http.StatusServiceUnavailable, requestID)
			return
		}
		h.logger.Error("unexpected error refreshing rates",
			zap.String("request_id", requestID),
			zap.Error(err))
		h.sendError(w, "Internal server error",
			"An unexpected error occurred. Please try again later.",
			http.StatusInternalServerError, requestID)
		return
	}

	h.GetRateInfo(w, r)
}

func (h *CurrencyHandler) sendError(w http.ResponseWriter, msg, description string, status int, requestID string) {
	writeJSON(w, status, ErrorResponse{
		Error:       msg,
		Status:      status,
		Description: description,
		RequestID:   requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
