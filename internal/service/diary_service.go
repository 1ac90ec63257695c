package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/repository/ports"
)

var (
	ErrDiaryValidation = errors.New("diary validation failed")
	ErrDiaryNotFound   = errors.New("diary not found")
	ErrDiaryForbidden  = errors.New("not allowed to access this diary")
	ErrChapterNotFound = errors.New("chapter not found")
)

// WeatherLookup supplies the write-time weather enrichment for geotagged
// chapters. A failed lookup never blocks the chapter write.
type WeatherLookup interface {
	Snapshot(ctx context.Context, lat, lon float64) (*domain.WeatherSnapshot, error)
}

type DiaryService struct {
	diaries ports.DiaryRepository
	weather WeatherLookup
	now     func() time.Time
}

func NewDiaryService(diaries ports.DiaryRepository, weather WeatherLookup) *DiaryService {
	return &DiaryService{
		diaries: diaries,
		weather: weather,
		now:     time.Now,
	}
}

func (s *DiaryService) CreateDiary(ctx context.Context, ownerID uuid.UUID, name, photoURL string) (*domain.Diary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: diary name is required", ErrDiaryValidation)
	}

	return s.diaries.Create(ctx, &domain.Diary{
		UserID:     ownerID,
		Name:       name,
		PhotoURL:   photoURL,
		Visibility: domain.VisibilityPrivate,
		Chapters:   domain.ChapterList{},
	})
}

// ListDiaries returns every diary the owner has, regardless of visibility.
func (s *DiaryService) ListDiaries(ctx context.Context, ownerID uuid.UUID) ([]domain.Diary, error) {
	return s.diaries.ListByUser(ctx, ownerID)
}

// GetDiary loads a diary for the caller (nil for anonymous) and reports
// whether the caller owns it. Private diaries are only readable by their
// owner.
func (s *DiaryService) GetDiary(ctx context.Context, diaryID uuid.UUID, caller *uuid.UUID) (*domain.Diary, bool, error) {
	diary, access, err := s.loadForRead(ctx, diaryID, caller)
	if err != nil {
		return nil, false, err
	}
	return diary, access.IsOwner(), nil
}

// ListChapterPins flattens every geotagged chapter across all diaries
// visible to the caller into map pins. Ordering across diaries is not
// defined.
func (s *DiaryService) ListChapterPins(ctx context.Context, caller *uuid.UUID) ([]domain.ChapterPin, error) {
	diaries, err := s.diaries.ListVisible(ctx, caller)
	if err != nil {
		return nil, err
	}

	pins := make([]domain.ChapterPin, 0)
	for _, diary := range diaries {
		for _, chapter := range diary.Chapters {
			if !chapter.HasLocation() {
				continue
			}
			pins = append(pins, domain.ChapterPin{
				ID:        chapter.ID,
				Title:     chapter.Title,
				Date:      chapter.Date,
				Latitude:  *chapter.Latitude,
				Longitude: *chapter.Longitude,
				DiaryID:   diary.ID,
			})
		}
	}
	return pins, nil
}

type ChapterCreateInput struct {
	Title     string
	Content   string
	Date      *time.Time
	Latitude  *float64
	Longitude *float64
}

func (s *DiaryService) CreateChapter(ctx context.Context, diaryID, callerID uuid.UUID, input ChapterCreateInput) (*domain.Chapter, error) {
	diary, err := s.loadForWrite(ctx, diaryID, callerID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Untitled Chapter"
	}
	date := s.now()
	if input.Date != nil && !input.Date.IsZero() {
		date = *input.Date
	}

	chapter := domain.Chapter{
		ID:      uuid.New(),
		Title:   title,
		Content: input.Content,
		Date:    date,
		Photos:  []string{},
	}

	// Coordinates count only as a pair; a lone latitude or longitude is
	// stored as neither.
	if input.Latitude != nil && input.Longitude != nil {
		chapter.Latitude = input.Latitude
		chapter.Longitude = input.Longitude
		chapter.Weather = s.lookupWeather(ctx, *input.Latitude, *input.Longitude)
	}

	diary.Chapters = append(diary.Chapters, chapter)
	if err := s.diaries.Save(ctx, diary); err != nil {
		return nil, err
	}
	return &diary.Chapters[len(diary.Chapters)-1], nil
}

// ListChapters returns a diary's chapters under the same read gate as
// GetDiary.
func (s *DiaryService) ListChapters(ctx context.Context, diaryID uuid.UUID, caller *uuid.UUID) ([]domain.Chapter, bool, error) {
	diary, access, err := s.loadForRead(ctx, diaryID, caller)
	if err != nil {
		return nil, false, err
	}
	return diary.Chapters, access.IsOwner(), nil
}

func (s *DiaryService) GetChapter(ctx context.Context, diaryID, chapterID uuid.UUID, caller *uuid.UUID) (*domain.Chapter, error) {
	diary, _, err := s.loadForRead(ctx, diaryID, caller)
	if err != nil {
		return nil, err
	}
	chapter := diary.Chapter(chapterID)
	if chapter == nil {
		return nil, ErrChapterNotFound
	}
	return chapter, nil
}

// ChapterUpdateInput carries a partial update: a nil field means "leave
// unchanged". Empty strings are normalized to nil, so absent and empty are
// treated the same and a clear-to-empty is not expressible.
type ChapterUpdateInput struct {
	Title           *string
	Content         *string
	Date            *time.Time
	BackgroundColor *string
	Latitude        *float64
	Longitude       *float64
	AddPhotos       []string
}

func (s *DiaryService) UpdateChapter(ctx context.Context, diaryID, chapterID, callerID uuid.UUID, input ChapterUpdateInput) (*domain.Chapter, error) {
	diary, err := s.loadForWrite(ctx, diaryID, callerID)
	if err != nil {
		return nil, err
	}
	chapter := diary.Chapter(chapterID)
	if chapter == nil {
		return nil, ErrChapterNotFound
	}

	if v := normalizeString(input.Title); v != nil {
		chapter.Title = *v
	}
	if v := normalizeString(input.Content); v != nil {
		chapter.Content = *v
	}
	if input.Date != nil && !input.Date.IsZero() {
		chapter.Date = *input.Date
	}
	if v := normalizeString(input.BackgroundColor); v != nil {
		chapter.BackgroundColor = *v
	}

	// A new coordinate pair replaces the stored one and re-enriches the
	// weather snapshot, even when the new lookup fails and yields nil.
	if input.Latitude != nil && input.Longitude != nil {
		chapter.Latitude = input.Latitude
		chapter.Longitude = input.Longitude
		chapter.Weather = s.lookupWeather(ctx, *input.Latitude, *input.Longitude)
	}

	if len(input.AddPhotos) > 0 {
		chapter.Photos = append(chapter.Photos, input.AddPhotos...)
	}

	if err := s.diaries.Save(ctx, diary); err != nil {
		return nil, err
	}
	return chapter, nil
}

// DeleteChapter removes a chapter from its parent. Removing an absent
// chapter succeeds; the caller observes the same end state either way.
func (s *DiaryService) DeleteChapter(ctx context.Context, diaryID, chapterID, callerID uuid.UUID) error {
	diary, err := s.loadForWrite(ctx, diaryID, callerID)
	if err != nil {
		return err
	}
	if !diary.RemoveChapter(chapterID) {
		return nil
	}
	return s.diaries.Save(ctx, diary)
}

// DeleteDiary removes the diary and all embedded chapters in one aggregate
// delete.
func (s *DiaryService) DeleteDiary(ctx context.Context, diaryID, callerID uuid.UUID) error {
	if _, err := s.loadForWrite(ctx, diaryID, callerID); err != nil {
		return err
	}
	if err := s.diaries.Delete(ctx, diaryID); err != nil {
		if isNotFound(err) {
			return ErrDiaryNotFound
		}
		return err
	}
	return nil
}

func (s *DiaryService) SetVisibility(ctx context.Context, diaryID, callerID uuid.UUID, raw string) (domain.Visibility, error) {
	visibility, err := domain.ParseVisibility(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrDiaryValidation, err)
	}

	diary, err := s.loadForWrite(ctx, diaryID, callerID)
	if err != nil {
		return "", err
	}
	diary.Visibility = visibility
	if err := s.diaries.Save(ctx, diary); err != nil {
		return "", err
	}
	return visibility, nil
}

func (s *DiaryService) loadForRead(ctx context.Context, diaryID uuid.UUID, caller *uuid.UUID) (*domain.Diary, domain.Access, error) {
	diary, err := s.diaries.FindByID(ctx, diaryID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.AccessAnonymous, ErrDiaryNotFound
		}
		return nil, domain.AccessAnonymous, err
	}
	access := domain.ResolveAccess(caller, diary.UserID)
	if !access.CanRead(diary.Visibility) {
		return nil, access, ErrDiaryForbidden
	}
	return diary, access, nil
}

func (s *DiaryService) loadForWrite(ctx context.Context, diaryID, callerID uuid.UUID) (*domain.Diary, error) {
	diary, err := s.diaries.FindByID(ctx, diaryID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDiaryNotFound
		}
		return nil, err
	}
	if !domain.ResolveAccess(&callerID, diary.UserID).CanWrite() {
		return nil, ErrDiaryForbidden
	}
	return diary, nil
}

func (s *DiaryService) lookupWeather(ctx context.Context, lat, lon float64) *domain.WeatherSnapshot {
	if s.weather == nil {
		return nil
	}
	snapshot, err := s.weather.Snapshot(ctx, lat, lon)
	if err != nil {
		return nil
	}
	return snapshot
}
