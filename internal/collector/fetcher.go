package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"Farjax/internal/model"
)

// Fetcher defines the interface for fetching intraday bars.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, lookbackDays int) ([]model.RawBar, error)
	Name() string
}

// Archive stores real bars between pulls so history can outlive the provider's window.
type Archive interface {
	RecordBars(symbol string, candles []model.Candle) error
	LoadBars(symbol string, since time.Time) ([]model.RawBar, error)
}

// newHTTPClient returns a client with a 30s timeout, routed through proxyURL when set.
// An unparseable proxy URL is ignored.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: 30 * time.Second, Transport: transport}
}

// getBody performs req and returns the body of a 200 response.
func getBody(client *http.Client, req *http.Request, source string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", source, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d, body: %s", source, resp.StatusCode, string(body))
	}
	return body, nil
}
