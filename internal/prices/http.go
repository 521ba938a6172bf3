package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/deflationproof/wheelcast/internal/logger"
)

const (
	requestTimeout = 30 * time.Second
	retryCount     = 3
	retryBaseWait  = 1 * time.Second
)

// httpProvider fetches prices from the quote endpoint over HTTP with
// retry and exponential backoff, falling back to its secondary when the
// endpoint is unreachable or returns an unusable payload.
type httpProvider struct {
	client    *resty.Client
	secondary Provider
}

// priceRequest is the JSON body posted to the quote endpoint.
type priceRequest struct {
	Symbols []string `json:"symbols"`
}

// priceResponse is the endpoint's envelope.
type priceResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Prices map[string]float64 `json:"prices"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// NewHTTPProvider constructs the HTTP quote provider.
//
// Parameters:
//   - baseURL: root of the quote API
//   - apiKey: optional key sent as X-Api-Key
//   - secondary: fallback provider; its values seed the result map and
//     survive any symbol the endpoint cannot quote
func NewHTTPProvider(baseURL, apiKey string, secondary Provider) Provider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryBaseWait).
		SetRetryMaxWaitTime(8 * time.Second)
	if apiKey != "" {
		client.SetHeader("X-Api-Key", apiKey)
	}
	return &httpProvider{client: client, secondary: secondary}
}

func (h *httpProvider) Secondary() Provider { return h.secondary }

func (h *httpProvider) Prices(ctx context.Context, symbols []string) (map[string]float64, error) {
	base := map[string]float64{}
	if h.secondary != nil {
		b, err := h.secondary.Prices(ctx, symbols)
		if err == nil {
			base = b
		}
	}

	var out priceResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(priceRequest{Symbols: symbols}).
		SetResult(&out).
		Post("/api/stock-prices")
	if err != nil {
		logger.Errorf("event=price_fetch_failed err=%v", err)
		if len(base) > 0 {
			return base, nil
		}
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	if !resp.IsSuccess() || !out.Success || len(out.Data.Prices) == 0 {
		logger.Infof("event=price_fetch_fallback status=%d api_err=%q", resp.StatusCode(), out.Error)
		if len(base) > 0 {
			return base, nil
		}
		return nil, fmt.Errorf("price endpoint returned status %d", resp.StatusCode())
	}

	logger.Debugf("event=price_fetch_ok symbols=%d", len(out.Data.Prices))
	return merge(base, out.Data.Prices), nil
}
