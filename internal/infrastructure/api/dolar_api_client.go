package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campoverde/currency-sync-service/internal/apperrors"
	"github.com/campoverde/currency-sync-service/internal/domain/entity"
	"go.uber.org/zap"
)

const quotesPath = "/v1/dolares"

// DolarAPIClient fetches ARS/USD quotes from a DolarAPI-compatible provider.
// One GET returns every market ("casa") in a single payload, so both rate
// kinds come back from one call. The client holds no state and performs no
// retries; resiliency belongs to the caller.
type DolarAPIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDolarAPIClient creates a provider client. A nil httpClient gets a
// default with a 10s timeout so a hung provider cannot pin a refresh forever.
func NewDolarAPIClient(baseURL string, httpClient *http.Client, log *zap.Logger) *DolarAPIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &DolarAPIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     log,
	}
}

// quoteResponse is one market entry in the provider payload.
type quoteResponse struct {
	Casa      string  `json:"casa"`
	Nombre    string  `json:"nombre"`
	Compra    float64 `json:"compra"`
	Venta     float64 `json:"venta"`
	UpdatedAt string  `json:"fechaActualizacion"`
}

// FetchRates retrieves one fresh quote per requested kind. Any failure mode
// (network, status, payload, missing kind, non-positive quote) collapses into
// the ErrRateFetch taxonomy.
func (c *DolarAPIClient) FetchRates(ctx context.Context, kinds []entity.RateKind) (map[entity.RateKind]entity.ExchangeRate, error) {
	reqURL := c.baseURL + quotesPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", apperrors.ErrRateFetch, err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRateFetch, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close provider response body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", apperrors.ErrRateFetch, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", apperrors.ErrRateFetch, resp.StatusCode)
	}

	var quotes []quoteResponse
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", apperrors.ErrRateFetch, err)
	}

	byKind := make(map[entity.RateKind]quoteResponse, len(quotes))
	for _, q := range quotes {
		byKind[entity.RateKind(q.Casa)] = q
	}

	observedAt := time.Now().UTC()
	rates := make(map[entity.RateKind]entity.ExchangeRate, len(kinds))

	for _, kind := range kinds {
		quote, ok := byKind[kind]
		if !ok {
			return nil, fmt.Errorf("%w: provider payload has no %q quote", apperrors.ErrRateFetch, kind)
		}

		// Venta is the selling price: how many pesos buy one dollar.
		rate, err := entity.NewRateFromFloat(quote.Venta)
		if err != nil {
			return nil, fmt.Errorf("%w: %q quote: %v", apperrors.ErrRateFetch, kind, err)
		}

		rates[kind] = entity.ExchangeRate{
			Currency:   entity.USD,
			Kind:       kind,
			Rate:       rate,
			ObservedAt: observedAt,
		}

		c.logger.Debug("fetched quote",
			zap.String("kind", string(kind)),
			zap.Float64("rate", rate.Float64()))
	}

	return rates, nil
}
