package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/repository/ports"
)

type TripRepository struct {
	db *sqlx.DB
}

func NewTripRepo(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	const query = `
		INSERT INTO trip (user_id, name, destination, start_date, end_date, photo_url, budget, information)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, name, destination, start_date, end_date, photo_url, budget, information
	`

	row := r.db.QueryRowxContext(ctx, query,
		trip.UserID, trip.Name, trip.Destination, trip.StartDate, trip.EndDate,
		trip.PhotoURL, trip.Budget, trip.Information)
	var created domain.Trip
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *TripRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	const query = `
		SELECT id, user_id, name, destination, start_date, end_date, photo_url, budget, information
		FROM trip
		WHERE user_id = $1
		ORDER BY start_date DESC, id DESC
	`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0)
	for rows.Next() {
		var trip domain.Trip
		if err := rows.StructScan(&trip); err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *TripRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	const query = `
		SELECT id, user_id, name, destination, start_date, end_date, photo_url, budget, information
		FROM trip
		WHERE id = $1
	`
	var trip domain.Trip
	if err := r.db.GetContext(ctx, &trip, query, id); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) Save(ctx context.Context, trip *domain.Trip) error {
	const query = `
		UPDATE trip
		SET name = $2, destination = $3, start_date = $4, end_date = $5,
		    photo_url = $6, budget = $7, information = $8
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		trip.ID, trip.Name, trip.Destination, trip.StartDate, trip.EndDate,
		trip.PhotoURL, trip.Budget, trip.Information)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *TripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM trip WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.TripRepository = (*TripRepository)(nil)
