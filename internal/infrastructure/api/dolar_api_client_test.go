package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campoverde/currency-sync-service/internal/apperrors"
	"github.com/campoverde/currency-sync-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRates(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful fetch returns both kinds", func(t *testing.T) {
		// Setup
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, quotesPath, r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"casa":"oficial","nombre":"Oficial","compra":1290.0,"venta":1310.0,"fechaActualizacion":"2026-08-29T16:30:00.000Z"},
				{"casa":"blue","nombre":"Blue","compra":1330.0,"venta":1350.0,"fechaActualizacion":"2026-08-29T16:30:00.000Z"},
				{"casa":"bolsa","nombre":"Bolsa","compra":1315.0,"venta":1325.0,"fechaActualizacion":"2026-08-29T16:30:00.000Z"}
			]`))
		}))
		defer server.Close()

		client := NewDolarAPIClient(server.URL, nil, nil)

		// Execute
		rates, err := client.FetchRates(ctx, entity.RateKinds)

		// Assert
		require.NoError(t, err)
		require.Len(t, rates, 2)

		official := rates[entity.RateKindOfficial]
		assert.Equal(t, entity.USD, official.Currency)
		assert.Equal(t, 1310.0, official.Rate.Float64())
		assert.False(t, official.ObservedAt.IsZero())

		blue := rates[entity.RateKindBlue]
		assert.Equal(t, 1350.0, blue.Rate.Float64())
	})

	t.Run("Provider error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewDolarAPIClient(server.URL, nil, nil)

		_, err := client.FetchRates(ctx, entity.RateKinds)

		assert.ErrorIs(t, err, apperrors.ErrRateFetch)
	})

	t.Run("Malformed payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"an array"}`))
		}))
		defer server.Close()

		client := NewDolarAPIClient(server.URL, nil, nil)

		_, err := client.FetchRates(ctx, entity.RateKinds)

		assert.ErrorIs(t, err, apperrors.ErrRateFetch)
	})

	t.Run("Missing requested kind", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"casa":"oficial","venta":1310.0}]`))
		}))
		defer server.Close()

		client := NewDolarAPIClient(server.URL, nil, nil)

		_, err := client.FetchRates(ctx, entity.RateKinds)

		assert.ErrorIs(t, err, apperrors.ErrRateFetch)
		assert.Contains(t, err.Error(), "blue")
	})

	t.Run("Non-positive quote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[
				{"casa":"oficial","venta":0},
				{"casa":"blue","venta":1350.0}
			]`))
		}))
		defer server.Close()

		client := NewDolarAPIClient(server.URL, nil, nil)

		_, err := client.FetchRates(ctx, entity.RateKinds)

		assert.ErrorIs(t, err, apperrors.ErrRateFetch)
	})

	t.Run("Unreachable provider", func(t *testing.T) {
		// Closed server, connection refused
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewDolarAPIClient(server.URL, nil, nil)

		_, err := client.FetchRates(ctx, entity.RateKinds)

		assert.ErrorIs(t, err, apperrors.ErrRateFetch)
	})
}
