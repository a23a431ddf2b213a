package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"Farjax/internal/model"
)

// APIFetcher reads bars from the candle REST API (GET {base}/stocks/get/{symbol}),
// which answers with a JSON array of {name, date, open, high, low, close, volume}.
type APIFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAPIFetcher creates a new fetcher with optional proxy support.
func NewAPIFetcher(baseURL, apiKey, proxyURL string) *APIFetcher {
	return &APIFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *APIFetcher) Name() string { return "api" }

// FetchBars returns whatever window the API serves; lookbackDays is advisory.
func (f *APIFetcher) FetchBars(ctx context.Context, symbol string, lookbackDays int) ([]model.RawBar, error) {
	endpoint := fmt.Sprintf("%s/stocks/get/%s", f.BaseURL, url.PathEscape(strings.ToLower(symbol)))
	if lookbackDays > 0 {
		endpoint += fmt.Sprintf("?days=%d", lookbackDays)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	body, err := getBody(f.Client, req, "api")
	if err != nil {
		return nil, err
	}
	var bars []model.RawBar
	if err := json.Unmarshal(body, &bars); err != nil {
		return nil, fmt.Errorf("api decode bars: %w", err)
	}
	for i := range bars {
		if bars[i].Name == "" {
			bars[i].Name = symbol
		}
	}
	return bars, nil
}
