package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/repository/ports"
)

type DiaryRepository struct {
	db *sqlx.DB
}

func NewDiaryRepo(db *sqlx.DB) *DiaryRepository {
	return &DiaryRepository{db: db}
}

func (r *DiaryRepository) Create(ctx context.Context, diary *domain.Diary) (*domain.Diary, error) {
	const query = `
		INSERT INTO diary (user_id, name, photo_url, visibility, chapters)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, photo_url, visibility, created_at, chapters
	`

	row := r.db.QueryRowxContext(ctx, query,
		diary.UserID, diary.Name, diary.PhotoURL, diary.Visibility, diary.Chapters)
	var created domain.Diary
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *DiaryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Diary, error) {
	const query = `
		SELECT id, user_id, name, photo_url, visibility, created_at, chapters
		FROM diary
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.queryDiaries(ctx, query, userID)
}

func (r *DiaryRepository) ListVisible(ctx context.Context, viewer *uuid.UUID) ([]domain.Diary, error) {
	if viewer == nil {
		const query = `
			SELECT id, user_id, name, photo_url, visibility, created_at, chapters
			FROM diary
			WHERE visibility = 'public'
		`
		return r.queryDiaries(ctx, query)
	}

	const query = `
		SELECT id, user_id, name, photo_url, visibility, created_at, chapters
		FROM diary
		WHERE visibility = 'public' OR user_id = $1
	`
	return r.queryDiaries(ctx, query, *viewer)
}

func (r *DiaryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	const query = `
		SELECT id, user_id, name, photo_url, visibility, created_at, chapters
		FROM diary
		WHERE id = $1
	`
	var diary domain.Diary
	if err := r.db.GetContext(ctx, &diary, query, id); err != nil {
		return nil, err
	}
	return &diary, nil
}

func (r *DiaryRepository) Save(ctx context.Context, diary *domain.Diary) error {
	const query = `
		UPDATE diary
		SET name = $2, photo_url = $3, visibility = $4, chapters = $5
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		diary.ID, diary.Name, diary.PhotoURL, diary.Visibility, diary.Chapters)
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

func (r *DiaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM diary WHERE id = $1`
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

func (r *DiaryRepository) queryDiaries(ctx context.Context, query string, args ...any) ([]domain.Diary, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	diaries := make([]domain.Diary, 0)
	for rows.Next() {
		var diary domain.Diary
		if err := rows.StructScan(&diary); err != nil {
			return nil, err
		}
		diaries = append(diaries, diary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return diaries, nil
}

var _ ports.DiaryRepository = (*DiaryRepository)(nil)
