// Package enrichment holds the thin clients for the third-party lookups the
// API proxies: weather, reverse geocoding and event search. Each client is
// stateless and reshapes the provider response into a small local type.
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/traveltales/api/internal/domain"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

var ErrMissingAPIKey = errors.New("enrichment: api key not configured")

type WeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type WeatherOption func(*WeatherClient)

// WithWeatherBaseURL points the client at a different endpoint, used by
// tests.
func WithWeatherBaseURL(base string) WeatherOption {
	return func(c *WeatherClient) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

func NewWeatherClient(apiKey string, opts ...WeatherOption) *WeatherClient {
	c := &WeatherClient{
		apiKey:     apiKey,
		baseURL:    openWeatherBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type openWeatherResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

type openWeatherForecast struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
}

// Snapshot fetches the current conditions at a coordinate. Callers that use
// it for chapter enrichment absorb any error into a nil snapshot.
func (c *WeatherClient) Snapshot(ctx context.Context, lat, lon float64) (*domain.WeatherSnapshot, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var current openWeatherResponse
	if err := c.get(ctx, "/weather", lat, lon, &current); err != nil {
		return nil, err
	}
	if len(current.Weather) == 0 {
		return nil, errors.New("enrichment: empty weather response")
	}

	return &domain.WeatherSnapshot{
		Temperature: current.Main.Temp,
		Description: current.Weather[0].Description,
		Icon:        current.Weather[0].Icon,
	}, nil
}

type ForecastEntry struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

type WeatherReport struct {
	Current  domain.WeatherSnapshot `json:"current"`
	Forecast []ForecastEntry        `json:"forecast"`
}

// Report combines the current conditions with the five-day forecast,
// keeping one midday slot per day.
func (c *WeatherClient) Report(ctx context.Context, lat, lon float64) (*WeatherReport, error) {
	current, err := c.Snapshot(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	var raw openWeatherForecast
	if err := c.get(ctx, "/forecast", lat, lon, &raw); err != nil {
		return nil, err
	}

	forecast := make([]ForecastEntry, 0, 5)
	for _, slot := range raw.List {
		if !strings.Contains(slot.DtTxt, "12:00:00") || len(slot.Weather) == 0 {
			continue
		}
		forecast = append(forecast, ForecastEntry{
			Date:        slot.DtTxt,
			Temperature: slot.Main.Temp,
			Description: slot.Weather[0].Description,
			Icon:        slot.Weather[0].Icon,
		})
	}

	return &WeatherReport{Current: *current, Forecast: forecast}, nil
}

func (c *WeatherClient) get(ctx context.Context, path string, lat, lon float64, out any) error {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("enrichment: weather provider returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
