package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Farjax/internal/markethours"
	"Farjax/internal/model"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=5m&range=%s"

// YahooFetcher reads 5-minute bars from the public Yahoo Finance chart API.
type YahooFetcher struct {
	Client *http.Client

	// Tickers maps an index name to the ticker Yahoo knows it by.
	Tickers map[string]string

	// URLFormat takes the escaped ticker and the range.
	URLFormat string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		Client: newHTTPClient(proxyURL),
		Tickers: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"NDX":    "^NDX",
		},
		URLFormat: yahooChartURL,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

type chartQuote struct {
	Open   []interface{} `json:"open"`
	High   []interface{} `json:"high"`
	Low    []interface{} `json:"low"`
	Close  []interface{} `json:"close"`
	Volume []interface{} `json:"volume"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				DataGranularity string `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []chartQuote `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// chartRange picks the smallest range covering lookbackDays. 5m bars go back 60 days at most.
func chartRange(lookbackDays int) string {
	switch {
	case lookbackDays <= 1:
		return "1d"
	case lookbackDays <= 5:
		return "5d"
	case lookbackDays <= 30:
		return "1mo"
	default:
		return "60d"
	}
}

// FetchBars downloads 5-minute bars. Yahoo stamps a bar at its start, so bars are re-stamped at their close.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, lookbackDays int) ([]model.RawBar, error) {
	ticker := strings.ToUpper(symbol)
	if mapped, ok := f.Tickers[ticker]; ok {
		ticker = mapped
	}
	u := fmt.Sprintf(f.URLFormat, url.PathEscape(ticker), chartRange(lookbackDays))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	body, err := getBody(f.Client, req, "yahoo")
	if err != nil {
		return nil, err
	}
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo %s: %s", e.Code, e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.New("yahoo: no data returned")
	}
	res := chart.Chart.Result[0]
	if g := res.Meta.DataGranularity; g != "" && g != "5m" {
		return nil, fmt.Errorf("yahoo: got %s bars, want 5m", g)
	}

	q := res.Indicators.Quote[0]
	bars := make([]model.RawBar, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		bars[i] = model.RawBar{
			Name:   symbol,
			Date:   time.Unix(ts, 0).Add(markethours.SlotDuration).In(markethours.ET).Format(time.RFC3339),
			Open:   valueAt(q.Open, i),
			High:   valueAt(q.High, i),
			Low:    valueAt(q.Low, i),
			Close:  valueAt(q.Close, i),
			Volume: valueAt(q.Volume, i),
		}
	}
	return bars, nil
}

// valueAt tolerates quote arrays shorter than the timestamp list.
func valueAt(values []interface{}, i int) interface{} {
	if i < len(values) {
		return values[i]
	}
	return nil
}
