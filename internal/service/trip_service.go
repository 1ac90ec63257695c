package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/repository/ports"
)

var (
	ErrTripValidation = errors.New("trip validation failed")
	ErrTripNotFound   = errors.New("trip not found")
	ErrTripForbidden  = errors.New("not allowed to access this trip")
	ErrInfoNotFound   = errors.New("information item not found")
)

type TripService struct {
	trips ports.TripRepository
}

func NewTripService(trips ports.TripRepository) *TripService {
	return &TripService{trips: trips}
}

type TripCreateInput struct {
	Name        string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	PhotoURL    string
	Budget      *float64
}

// CreateTrip validates required fields and applies the default budget. The
// date pair is required but deliberately not ordered: an end before the
// start is accepted.
func (s *TripService) CreateTrip(ctx context.Context, ownerID uuid.UUID, input TripCreateInput) (*domain.Trip, error) {
	name := strings.TrimSpace(input.Name)
	destination := strings.TrimSpace(input.Destination)

	if name == "" {
		return nil, fmt.Errorf("%w: trip name is required", ErrTripValidation)
	}
	if destination == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrTripValidation)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrTripValidation)
	}

	budget := float64(domain.DefaultTripBudget)
	if input.Budget != nil {
		budget = *input.Budget
	}

	return s.trips.Create(ctx, &domain.Trip{
		UserID:      ownerID,
		Name:        name,
		Destination: destination,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		PhotoURL:    input.PhotoURL,
		Budget:      budget,
		Information: domain.InformationList{},
	})
}

func (s *TripService) ListTrips(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	return s.trips.ListByUser(ctx, ownerID)
}

func (s *TripService) GetTrip(ctx context.Context, tripID, callerID uuid.UUID) (*domain.Trip, error) {
	return s.loadOwned(ctx, tripID, callerID)
}

func (s *TripService) DeleteTrip(ctx context.Context, tripID, callerID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, tripID, callerID); err != nil {
		return err
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		if isNotFound(err) {
			return ErrTripNotFound
		}
		return err
	}
	return nil
}

// AddInformation appends a typed item to the trip. The payload is decoded
// into the variant matching the type; its field set is not validated beyond
// that (presentation owns per-type field semantics).
func (s *TripService) AddInformation(ctx context.Context, tripID, callerID uuid.UUID, rawType string, data json.RawMessage) (*domain.Trip, error) {
	infoType, err := domain.ParseInformationType(rawType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTripValidation, err)
	}
	payload, err := domain.DecodeInformationData(infoType, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTripValidation, err)
	}

	trip, err := s.loadOwned(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}

	trip.Information = append(trip.Information, domain.Information{
		ID:   uuid.New(),
		Type: infoType,
		Data: payload,
	})
	if err := s.trips.Save(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *TripService) GetInformation(ctx context.Context, tripID, infoID, callerID uuid.UUID) (*domain.Information, error) {
	trip, err := s.loadOwned(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}
	item := trip.Item(infoID)
	if item == nil {
		return nil, ErrInfoNotFound
	}
	return item, nil
}

// UpdateInformation replaces the item's payload verbatim, keeping its type.
func (s *TripService) UpdateInformation(ctx context.Context, tripID, infoID, callerID uuid.UUID, data json.RawMessage) (*domain.Trip, error) {
	trip, err := s.loadOwned(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}
	item := trip.Item(infoID)
	if item == nil {
		return nil, ErrInfoNotFound
	}

	payload, err := domain.DecodeInformationData(item.Type, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTripValidation, err)
	}
	item.Data = payload

	if err := s.trips.Save(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// DeleteInformation filters the item out of the sequence. An absent id
// leaves the trip unchanged and still succeeds.
func (s *TripService) DeleteInformation(ctx context.Context, tripID, infoID, callerID uuid.UUID) (*domain.Trip, error) {
	trip, err := s.loadOwned(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}
	if !trip.RemoveItem(infoID) {
		return trip, nil
	}
	if err := s.trips.Save(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// UpdateBudget replaces the budget verbatim; no floor or ceiling applies.
func (s *TripService) UpdateBudget(ctx context.Context, tripID, callerID uuid.UUID, budget float64) (*domain.Trip, error) {
	trip, err := s.loadOwned(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}
	trip.Budget = budget
	if err := s.trips.Save(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *TripService) loadOwned(ctx context.Context, tripID, callerID uuid.UUID) (*domain.Trip, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	if !domain.ResolveAccess(&callerID, trip.UserID).CanWrite() {
		return nil, ErrTripForbidden
	}
	return trip, nil
}
