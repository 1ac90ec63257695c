package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/service"
	"github.com/traveltales/api/internal/util"
)

type TripHandler struct {
	trips   *service.TripService
	uploads *Uploader
}

// tripResponse carries the trip with its derived running total, recomputed
// on every render.
type tripResponse struct {
	*domain.Trip
	TotalCost float64 `json:"total_cost"`
}

func newTripResponse(trip *domain.Trip) tripResponse {
	return tripResponse{Trip: trip, TotalCost: trip.TotalCost()}
}

func RegisterTrips(e *echo.Echo, auth *service.AuthService, trips *service.TripService, uploads *Uploader) {
	handler := &TripHandler{trips: trips, uploads: uploads}

	group := e.Group("/api/trips", RequireAuth(auth))
	group.POST("", handler.createTrip)
	group.GET("", handler.listTrips)
	group.GET("/:id", handler.getTrip)
	group.DELETE("/:id", handler.deleteTrip)
	group.PUT("/:id/budget", handler.updateBudget)
	group.POST("/:id/information", handler.addInformation)
	group.GET("/:id/information/:info_id", handler.getInformation)
	group.PUT("/:id/information/:info_id", handler.updateInformation)
	group.DELETE("/:id/information/:info_id", handler.deleteInformation)
}

func (h *TripHandler) createTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "authentication required"))
	}

	input := service.TripCreateInput{
		Name:        c.FormValue("tripName"),
		Destination: c.FormValue("destination"),
	}
	if date := parseDate(c.FormValue("startDate")); date != nil {
		input.StartDate = *date
	}
	if date := parseDate(c.FormValue("endDate")); date != nil {
		input.EndDate = *date
	}

	if header, err := c.FormFile("photo"); err == nil && header != nil {
		url, uploadErr := h.uploads.SaveImage(c.Request().Context(), "photo", header)
		if uploadErr != nil {
			return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "photo must be a valid image"))
		}
		input.PhotoURL = url
	}

	trip, err := h.trips.CreateTrip(c.Request().Context(), user.ID, input)
	if err != nil {
		return tripError(c, err)
	}
	return c.JSON(http.StatusOK, newTripResponse(trip))
}

func (h *TripHandler) listTrips(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "authentication required"))
	}

	trips, err := h.trips.ListTrips(c.Request().Context(), user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error(util.KindInternal, "could not load trips"))
	}

	responses := make([]tripResponse, 0, len(trips))
	for i := range trips {
		responses = append(responses, newTripResponse(&trips[i]))
	}
	return c.JSON(http.StatusOK, responses)
}

func (h *TripHandler) getTrip(c echo.Context) error {
	user, tripID, err := h.ownerAndTripID(c)
	if err != nil {
		return err
	}

	trip, err := h.trips.GetTrip(c.Request().Context(), tripID, user.ID)
	if err != nil {
		return tripError(c, err)
	}
	return c.JSON(http.StatusOK, newTripResponse(trip))
}

func (h *TripHandler) deleteTrip(c echo.Context) error {
	user, tripID, err := h.ownerAndTripID(c)
	if err != nil {
		return err
	}

	if err := h.trips.DeleteTrip(c.Request().Context(), tripID, user.ID); err != nil {
		return tripError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Trip deleted"})
}

func (h *TripHandler) updateBudget(c echo.Context) error {
	user, tripID, err := h.ownerAndTripID(c)
	if err != nil {
		return err
	}

	var req struct {
		Budget *float64 `json:"budget"`
	}
	if err := c.Bind(&req); err != nil || req.Budget == nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "budget must be a number"))
	}

	trip, err := h.trips.UpdateBudget(c.Request().Context(), tripID, user.ID, *req.Budget)
	if err != nil {
		return tripError(c, err)
	}
	return c.JSON(http.StatusOK, newTripResponse(trip))
}

// addInformation accepts {"type": ..., <payload fields>}: everything beside
// "type" is the item's data.
func (h *TripHandler) addInformation(c echo.Context) error {
	user, tripID, err := h.ownerAndTripID(c)
	if err != nil {
		return err
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "invalid request body"))
	}

	var rawType string
	if encoded, ok := body["type"]; ok {
		if err := json.Unmarshal(encoded, &rawType); err != nil {
			return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "type must be a string"))
		}
		delete(body, "type")
	}
	data, err := json.Marshal(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "invalid request body"))
	}

	trip, err := h.trips.AddInformation(c.Request().Context(), tripID, user.ID, rawType, data)
	if err != nil {
		return tripError(c, err)
	}
	return c.JSON(http.StatusOK, newTripResponse(trip))
}

func (h *TripHandler) getInformation(c echo.Context) error {
	user, tripID, err := h.ownerAndTripID(c)
	if err != nil {
		return err
	}
	infoID, err := uuid.Parse(c.Param("info_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "information id must be a valid UUID"))
	}

	item, err := h.trips.GetInformation(c.Request().Context(), tripID, infoID, user.ID)
	if err != nil {
		return tripError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *TripHandler) updateInformation(c echo.Context) error {
	user, tripID, err := h.ownerAndTripID(c)
	if err != nil {
		return err
	}
	infoID, err := uuid.Parse(c.Param("info_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "information id must be a valid UUID"))
	}

	var data json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&data); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "invalid request body"))
	}

	trip, err := h.trips.UpdateInformation(c.Request().Context(), tripID, infoID, user.ID, data)
	if err != nil {
		return tripError(c, err)
	}
	return c.JSON(http.StatusOK, newTripResponse(trip))
}

func (h *TripHandler) deleteInformation(c echo.Context) error {
	user, tripID, err := h.ownerAndTripID(c)
	if err != nil {
		return err
	}
	infoID, err := uuid.Parse(c.Param("info_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "information id must be a valid UUID"))
	}

	trip, err := h.trips.DeleteInformation(c.Request().Context(), tripID, infoID, user.ID)
	if err != nil {
		return tripError(c, err)
	}
	return c.JSON(http.StatusOK, newTripResponse(trip))
}

func (h *TripHandler) ownerAndTripID(c echo.Context) (*domain.User, uuid.UUID, error) {
	user, ok := CurrentUser(c)
	if !ok {
		return nil, uuid.Nil, c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "authentication required"))
	}
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, uuid.Nil, c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "trip id must be a valid UUID"))
	}
	return user, tripID, nil
}

func tripError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTripValidation):
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, err.Error()))
	case errors.Is(err, service.ErrTripNotFound):
		return c.JSON(http.StatusNotFound, util.Error(util.KindNotFound, "trip not found"))
	case errors.Is(err, service.ErrInfoNotFound):
		return c.JSON(http.StatusNotFound, util.Error(util.KindNotFound, "information item not found"))
	case errors.Is(err, service.ErrTripForbidden):
		return c.JSON(http.StatusForbidden, util.Error(util.KindForbidden, "access denied"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error(util.KindInternal, "server error"))
	}
}
