package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campoverde/currency-sync-service/internal/apperrors"
	"github.com/campoverde/currency-sync-service/internal/application/service"
	"github.com/campoverde/currency-sync-service/internal/domain/entity"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/bus"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/cache"
	"github.com/campoverde/currency-sync-service/internal/mocks"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	rates map[entity.RateKind]entity.ExchangeRate
	err   error
}

func (s *stubSource) FetchRates(ctx context.Context, kinds []entity.RateKind) (map[entity.RateKind]entity.ExchangeRate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rates, nil
}

func newTestRouter(t *testing.T, source *stubSource) *mux.Router {
	t.Helper()

	store := new(mocks.MockStateStore)
	store.On("SaveRates", mock.Anything, mock.Anything).Return(nil)
	store.On("SaveSelection", mock.Anything, mock.Anything).Return(nil)
	store.On("LoadRates", mock.Anything).Return(nil, nil)
	store.On("LoadSelection", mock.Anything).Return(nil, nil)

	rateCache := cache.NewRateCache(store, nil)
	engine := service.NewConversionEngine(rateCache, nil, nil)
	svc := service.NewCurrencyService(source, store, rateCache, engine, bus.NewInvalidationBus(nil), nil, nil)
	require.NoError(t, svc.Hydrate(context.Background()))

	router := mux.NewRouter()
	NewCurrencyHandler(svc, nil).RegisterRoutes(router)
	return router
}

func warmQuotes() map[entity.RateKind]entity.ExchangeRate {
	now := time.Now().UTC()
	return map[entity.RateKind]entity.ExchangeRate{
		entity.RateKindOfficial: {Currency: entity.USD, Kind: entity.RateKindOfficial, Rate: entity.MustRate(1000), ObservedAt: now},
		entity.RateKindBlue:     {Currency: entity.USD, Kind: entity.RateKindBlue, Rate: entity.MustRate(1250), ObservedAt: now},
	}
}

func TestGetRateInfo(t *testing.T) {
	router := newTestRouter(t, &stubSource{rates: warmQuotes()})

	// Warm the cache through the refresh endpoint first
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/currency/rates/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/currency", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RateInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ARS", resp.DisplayCurrency)
	assert.Equal(t, "oficial", resp.RateKind)
	assert.False(t, resp.Loading)
	require.Contains(t, resp.Rates, "blue")
	assert.Equal(t, 1250.0, resp.Rates["blue"].Rate)
	assert.NotEmpty(t, resp.LastUpdate)
}

func TestFormatAmount(t *testing.T) {
	router := newTestRouter(t, &stubSource{rates: warmQuotes()})

	t.Run("Formats in the selected currency", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/currency/format?amount=500", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp FormatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ARS", resp.Currency)
		assert.Equal(t, "$ 500,00", resp.Formatted)
	})

	t.Run("Missing amount is a bad request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/currency/format", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Malformed amount is a bad request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/currency/format?amount=abc", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConvertAmount(t *testing.T) {
	router := newTestRouter(t, &stubSource{rates: warmQuotes()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/currency/rates/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("Converts between supported currencies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/currency/convert?amount=100000&from=ARS&to=USD", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ConvertResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 100.0, resp.Converted)
	})

	t.Run("Unknown currency is a bad request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/currency/convert?amount=1&from=ARS&to=EUR", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChangeDisplayCurrency(t *testing.T) {
	router := newTestRouter(t, &stubSource{rates: warmQuotes()})

	t.Run("Switches the display currency", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/currency/display", strings.NewReader(`{"currency":"USD"}`))
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp RateInfoResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "USD", resp.DisplayCurrency)
	})

	t.Run("Rejects unsupported currencies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/currency/display", strings.NewReader(`{"currency":"EUR"}`))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Rejects malformed bodies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/currency/display", strings.NewReader(`{`))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChangeExchangeType(t *testing.T) {
	router := newTestRouter(t, &stubSource{rates: warmQuotes()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/currency/exchange-type", strings.NewReader(`{"exchange_type":"blue"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RateInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "blue", resp.RateKind)
}

func TestRefreshRatesFailure(t *testing.T) {
	router := newTestRouter(t, &stubSource{err: apperrors.ErrRateFetch})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/currency/rates/refresh", nil))

	// The only failure surfaced to the UI, as a service-unavailable toast
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.NotEmpty(t, resp.Description)
}
