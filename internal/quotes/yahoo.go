package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shubham-shewale/trade-sim/pkg/models"
)

// chartResp mirrors the subset of the Yahoo v8 chart payload we read.
type chartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Client fetches real market data over the Yahoo-style chart API. It holds
// no state beyond the HTTP client and is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	suffix  string
}

func NewClient(baseURL, suffix string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		suffix:  suffix,
	}
}

// Suffix normalizes a bare symbol to its exchange-qualified ticker
// (e.g. "tcs" -> "TCS.NS"). Already-suffixed input passes through.
func (c *Client) Suffix(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(s, c.suffix) {
		return s
	}
	return s + c.suffix
}

// Quote returns the current regular-market price for an exchange-qualified
// ticker, or an error if the upstream has no tradable price. Callers must
// treat an error as "no update this cycle", never as fatal.
func (c *Client) Quote(ctx context.Context, ticker string) (float64, error) {
	q := url.Values{"range": {"1d"}, "interval": {"1d"}}
	var data chartResp
	if err := c.getChart(ctx, ticker, q, &data); err != nil {
		return 0, err
	}

	results := data.Chart.Result
	if len(results) == 0 {
		return 0, fmt.Errorf("no data for %s", ticker)
	}
	price := results[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("no tradable price for %s", ticker)
	}
	return price, nil
}

// Daily returns daily OHLC bars for the ticker between from and to.
func (c *Client) Daily(ctx context.Context, ticker string, from, to time.Time) ([]models.OHLCBar, error) {
	q := url.Values{
		"period1":  {fmt.Sprintf("%d", from.Unix())},
		"period2":  {fmt.Sprintf("%d", to.Unix())},
		"interval": {"1d"},
	}
	var data chartResp
	if err := c.getChart(ctx, ticker, q, &data); err != nil {
		return nil, err
	}

	results := data.Chart.Result
	if len(results) == 0 || len(results[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data for %s", ticker)
	}

	res := results[0]
	quote := res.Indicators.Quote[0]
	bars := make([]models.OHLCBar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		day := time.Unix(ts, 0).UTC()
		bars = append(bars, models.OHLCBar{
			Symbol:    ticker,
			Date:      day.Format("2006-01-02"),
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Close:     at(quote.Close, i),
			Volume:    atInt(quote.Volume, i),
			Timestamp: ts,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for %s", ticker)
	}
	return bars, nil
}

func (c *Client) getChart(ctx context.Context, ticker string, q url.Values, out *chartResp) error {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned %d for %s", resp.StatusCode, ticker)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	if e := out.Chart.Error; e != nil {
		return fmt.Errorf("upstream error for %s: %s", ticker, e.Description)
	}
	return nil
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func atInt(vals []int64, i int) int64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
