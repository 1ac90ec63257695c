package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/traveltales/api/internal/domain"
)

type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	// Save rewrites the whole aggregate row, last writer wins.
	Save(ctx context.Context, trip *domain.Trip) error
	Delete(ctx context.Context, id uuid.UUID) error
}
