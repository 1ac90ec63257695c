package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const ticketmasterBaseURL = "https://app.ticketmaster.com/discovery/v2/events.json"

type EventsClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type EventsOption func(*EventsClient)

func WithEventsBaseURL(base string) EventsOption {
	return func(c *EventsClient) {
		c.baseURL = base
	}
}

func NewEventsClient(apiKey string, opts ...EventsOption) *EventsClient {
	c := &EventsClient{
		apiKey:     apiKey,
		baseURL:    ticketmasterBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EventQuery filters the search; empty fields are omitted from the upstream
// request.
type EventQuery struct {
	City      string
	Date      string
	EventType string
}

type EventImage struct {
	Ratio  string `json:"ratio,omitempty"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type PriceRange struct {
	Type     string  `json:"type,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// EventSummary is the reshaped event returned to clients.
type EventSummary struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Start           string          `json:"start,omitempty"`
	URL             string          `json:"url,omitempty"`
	Images          []EventImage    `json:"images,omitempty"`
	Venue           string          `json:"venue,omitempty"`
	Location        string          `json:"location,omitempty"`
	City            string          `json:"city,omitempty"`
	PriceRanges     []PriceRange    `json:"priceRanges"`
	Classifications json.RawMessage `json:"classifications"`
}

type ticketmasterResponse struct {
	Embedded struct {
		Events []struct {
			ID     string       `json:"id"`
			Name   string       `json:"name"`
			URL    string       `json:"url"`
			Images []EventImage `json:"images"`
			Dates  struct {
				Start struct {
					DateTime string `json:"dateTime"`
				} `json:"start"`
			} `json:"dates"`
			PriceRanges     []PriceRange    `json:"priceRanges"`
			Classifications json.RawMessage `json:"classifications"`
			Embedded        struct {
				Venues []struct {
					Name    string `json:"name"`
					Address struct {
						Line1 string `json:"line1"`
					} `json:"address"`
					City struct {
						Name string `json:"name"`
					} `json:"city"`
				} `json:"venues"`
			} `json:"_embedded"`
		} `json:"events"`
	} `json:"_embedded"`
}

// Search queries the event provider and reshapes the answer. A missing key
// or failed call surfaces as an error for the handler to map.
func (c *EventsClient) Search(ctx context.Context, q EventQuery) ([]EventSummary, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("locale", "*")
	if city := strings.TrimSpace(q.City); city != "" {
		query.Set("city", city)
	}
	if eventType := strings.TrimSpace(q.EventType); eventType != "" {
		query.Set("classificationName", eventType)
	}
	if date := strings.TrimSpace(q.Date); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("enrichment: invalid date %q", date)
		}
		query.Set("startDateTime", day.Format("2006-01-02")+"T00:00:00Z")
		query.Set("endDateTime", day.Format("2006-01-02")+"T23:59:59Z")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment: events provider returned %d", resp.StatusCode)
	}

	var decoded ticketmasterResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	summaries := make([]EventSummary, 0, len(decoded.Embedded.Events))
	for _, event := range decoded.Embedded.Events {
		summary := EventSummary{
			ID:              event.ID,
			Name:            event.Name,
			Start:           event.Dates.Start.DateTime,
			URL:             event.URL,
			Images:          event.Images,
			PriceRanges:     event.PriceRanges,
			Classifications: event.Classifications,
		}
		if summary.PriceRanges == nil {
			summary.PriceRanges = []PriceRange{}
		}
		if len(summary.Classifications) == 0 {
			summary.Classifications = json.RawMessage("[]")
		}
		if venues := event.Embedded.Venues; len(venues) > 0 {
			summary.Venue = venues[0].Name
			summary.Location = venues[0].Address.Line1
			summary.City = venues[0].City.Name
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
