package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/traveltales/api/internal/enrichment"
	"github.com/traveltales/api/internal/util"
)

type EnrichmentHandler struct {
	weather *enrichment.WeatherClient
	geocode *enrichment.GeocodeClient
	events  *enrichment.EventsClient
}

func RegisterEnrichment(e *echo.Echo, weather *enrichment.WeatherClient, geocode *enrichment.GeocodeClient, events *enrichment.EventsClient) {
	handler := &EnrichmentHandler{weather: weather, geocode: geocode, events: events}

	e.GET("/api/weather", handler.getWeather)
	e.GET("/api/geocode", handler.reverseGeocode)
	e.GET("/api/events", handler.searchEvents)
}

func (h *EnrichmentHandler) getWeather(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "lat must be a number"))
	}
	lon, err := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "lon must be a number"))
	}

	report, err := h.weather.Report(c.Request().Context(), lat, lon)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error(util.KindUpstream, "weather lookup failed"))
	}
	return c.JSON(http.StatusOK, report)
}

func (h *EnrichmentHandler) reverseGeocode(c echo.Context) error {
	lat := c.QueryParam("lat")
	lng := c.QueryParam("lng")
	if lat == "" || lng == "" {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "lat and lng are required"))
	}

	place, err := h.geocode.ReverseGeocode(c.Request().Context(), lat, lng)
	if err != nil {
		if errors.Is(err, enrichment.ErrNoGeocodeResult) {
			return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "no result for these coordinates"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error(util.KindUpstream, "geocoding failed"))
	}
	return c.JSON(http.StatusOK, place)
}

func (h *EnrichmentHandler) searchEvents(c echo.Context) error {
	query := enrichment.EventQuery{
		City:      c.QueryParam("city"),
		Date:      c.QueryParam("date"),
		EventType: c.QueryParam("eventType"),
	}

	events, err := h.events.Search(c.Request().Context(), query)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error(util.KindUpstream, "event search failed"))
	}
	return c.JSON(http.StatusOK, events)
}
