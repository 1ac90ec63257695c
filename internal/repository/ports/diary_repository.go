package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/traveltales/api/internal/domain"
)

type DiaryRepository interface {
	Create(ctx context.Context, diary *domain.Diary) (*domain.Diary, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Diary, error)
	// ListVisible returns every public diary plus, when viewer is non-nil,
	// the viewer's own diaries.
	ListVisible(ctx context.Context, viewer *uuid.UUID) ([]domain.Diary, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error)
	// Save rewrites the whole aggregate row. Last writer wins; there is no
	// version check.
	Save(ctx context.Context, diary *domain.Diary) error
	Delete(ctx context.Context, id uuid.UUID) error
}
