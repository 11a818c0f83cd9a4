package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"TigerChart/internal/model"
)

// RESTFetcher implements Fetcher and InstrumentLister against a bar-serving REST API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of one daily bar.
type restBar struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// FetchDailyBars fetches daily bars dated within [start, end].
func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	var raw []restBar
	if err := f.getJSON(ctx, endpoint, &raw); err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch bars %s: %w", symbol, err)
	}

	bars := make([]model.Bar, 0, len(raw))
	for _, rb := range raw {
		d, err := time.Parse("2006-01-02", rb.Date)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("decode bar date %q: %w", rb.Date, err)
		}
		if rb.Close <= 0 {
			continue
		}
		bars = append(bars, model.Bar{
			Date:   d,
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		})
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	bars = clip(dedupe(bars), dayOf(start), end)
	if len(bars) == 0 {
		return model.PriceSeries{}, fmt.Errorf("fetch bars %s: %w", symbol, ErrEmptyRange)
	}
	return model.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// ListInstruments fetches the instrument list.
func (f *RESTFetcher) ListInstruments(ctx context.Context) ([]model.Instrument, error) {
	var instruments []model.Instrument
	if err := f.getJSON(ctx, f.BaseURL+"/api/v1/instruments", &instruments); err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	return instruments, nil
}

func (f *RESTFetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrDataUnavailable
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
