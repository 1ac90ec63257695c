package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrNoGeocodeResult is returned when the provider answers with a non-OK
// status for the given coordinate.
var ErrNoGeocodeResult = errors.New("enrichment: no geocode result")

type GeocodeClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type GeocodeOption func(*GeocodeClient)

func WithGeocodeBaseURL(base string) GeocodeOption {
	return func(c *GeocodeClient) {
		c.baseURL = base
	}
}

func NewGeocodeClient(apiKey string, opts ...GeocodeOption) *GeocodeClient {
	c := &GeocodeClient{
		apiKey:     apiKey,
		baseURL:    googleGeocodeBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Place is the reshaped reverse-geocode answer. Components the provider
// does not return stay empty strings.
type Place struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
	Suburb  string `json:"suburb"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

func (c *GeocodeClient) ReverseGeocode(ctx context.Context, lat, lng string) (*Place, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	query := url.Values{}
	query.Set("latlng", strings.TrimSpace(lat)+","+strings.TrimSpace(lng))
	query.Set("key", c.apiKey)

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
		return nil, fmt.Errorf("enrichment: geocode provider returned %d", resp.StatusCode)
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		return nil, ErrNoGeocodeResult
	}

	place := &Place{}
	for _, component := range decoded.Results[0].AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "country":
				place.Country = component.LongName
			case "administrative_area_level_1":
				place.State = component.LongName
			case "locality":
				place.City = component.LongName
			case "sublocality", "sublocality_level_1":
				place.Suburb = component.LongName
			}
		}
	}
	return place, nil
}
