package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/service"
)

type stubDiaryRepo struct {
	diaries map[uuid.UUID]*domain.Diary
}

func (s *stubDiaryRepo) Create(ctx context.Context, diary *domain.Diary) (*domain.Diary, error) {
	created := *diary
	created.ID = uuid.New()
	if s.diaries == nil {
		s.diaries = map[uuid.UUID]*domain.Diary{}
	}
	s.diaries[created.ID] = &created
	return &created, nil
}

func (s *stubDiaryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Diary, error) {
	out := make([]domain.Diary, 0)
	for _, diary := range s.diaries {
		if diary.UserID == userID {
			out = append(out, *diary)
		}
	}
	return out, nil
}

func (s *stubDiaryRepo) ListVisible(ctx context.Context, viewer *uuid.UUID) ([]domain.Diary, error) {
	out := make([]domain.Diary, 0)
	for _, diary := range s.diaries {
		if diary.Visibility == domain.VisibilityPublic || (viewer != nil && diary.UserID == *viewer) {
			out = append(out, *diary)
		}
	}
	return out, nil
}

func (s *stubDiaryRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	if diary, ok := s.diaries[id]; ok {
		copied := *diary
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubDiaryRepo) Save(ctx context.Context, diary *domain.Diary) error {
	if _, ok := s.diaries[diary.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *diary
	s.diaries[diary.ID] = &copied
	return nil
}

func (s *stubDiaryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.diaries[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.diaries, id)
	return nil
}

func newDiaryTestServer(t *testing.T, repo *stubDiaryRepo) (*echo.Echo, *domain.User, string) {
	t.Helper()
	auth, user, token := newTestAuth(t)
	e := echo.New()
	RegisterDiaries(e, auth, service.NewDiaryService(repo, nil), NewUploader(nil, "test", 1024))
	return e, user, token
}

func TestGetDiaryOwnerFlag(t *testing.T) {
	repo := &stubDiaryRepo{diaries: map[uuid.UUID]*domain.Diary{}}
	e, user, token := newDiaryTestServer(t, repo)

	diary := &domain.Diary{ID: uuid.New(), UserID: user.ID, Name: "Mine", Visibility: domain.VisibilityPrivate}
	repo.diaries[diary.ID] = diary

	req := httptest.NewRequest(http.MethodGet, "/api/diaries/"+diary.ID.String(), nil)
	req.Header.Set(headerAuthToken, token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["isOwner"] != true {
		t.Fatalf("expected isOwner true, got %v", body["isOwner"])
	}
	if body["diary_name"] != "Mine" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGetDiaryAnonymous(t *testing.T) {
	owner := uuid.New()

	t.Run("public diary is readable without a flag", func(t *testing.T) {
		repo := &stubDiaryRepo{diaries: map[uuid.UUID]*domain.Diary{}}
		e, _, _ := newDiaryTestServer(t, repo)
		diary := &domain.Diary{ID: uuid.New(), UserID: owner, Name: "Shared", Visibility: domain.VisibilityPublic}
		repo.diaries[diary.ID] = diary

		req := httptest.NewRequest(http.MethodGet, "/api/diaries/"+diary.ID.String(), nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["isOwner"] != false {
			t.Fatalf("expected isOwner false, got %v", body["isOwner"])
		}
	})

	t.Run("private diary is forbidden", func(t *testing.T) {
		repo := &stubDiaryRepo{diaries: map[uuid.UUID]*domain.Diary{}}
		e, _, _ := newDiaryTestServer(t, repo)
		diary := &domain.Diary{ID: uuid.New(), UserID: owner, Name: "Hidden", Visibility: domain.VisibilityPrivate}
		repo.diaries[diary.ID] = diary

		req := httptest.NewRequest(http.MethodGet, "/api/diaries/"+diary.ID.String(), nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestCreateChapterCoercesCoordinates(t *testing.T) {
	repo := &stubDiaryRepo{diaries: map[uuid.UUID]*domain.Diary{}}
	e, user, token := newDiaryTestServer(t, repo)

	diary := &domain.Diary{ID: uuid.New(), UserID: user.ID, Name: "Mine", Visibility: domain.VisibilityPrivate, Chapters: domain.ChapterList{}}
	repo.diaries[diary.ID] = diary

	// Clients send coordinates as strings or numbers; both must land.
	body := `{"title":"Harbour walk","latitude":"59.91","longitude":10.75}`
	req := httptest.NewRequest(http.MethodPost, "/api/diaries/"+diary.ID.String()+"/chapters/new", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(headerAuthToken, token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var chapter domain.Chapter
	if err := json.Unmarshal(rec.Body.Bytes(), &chapter); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !chapter.HasLocation() || *chapter.Latitude != 59.91 || *chapter.Longitude != 10.75 {
		t.Fatalf("expected coordinates to be stored, got %+v", chapter)
	}

	stored := repo.diaries[diary.ID]
	if len(stored.Chapters) != 1 || stored.Chapters[0].Title != "Harbour walk" {
		t.Fatalf("expected the chapter to be persisted, got %+v", stored.Chapters)
	}
}

func TestDeleteChapterEndpoint(t *testing.T) {
	repo := &stubDiaryRepo{diaries: map[uuid.UUID]*domain.Diary{}}
	e, user, token := newDiaryTestServer(t, repo)

	chapter := domain.Chapter{ID: uuid.New(), Title: "To remove"}
	diary := &domain.Diary{ID: uuid.New(), UserID: user.ID, Name: "Mine", Chapters: domain.ChapterList{chapter}}
	repo.diaries[diary.ID] = diary

	req := httptest.NewRequest(http.MethodDelete, "/api/diaries/"+diary.ID.String()+"/chapters/"+chapter.ID.String(), nil)
	req.Header.Set(headerAuthToken, token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(repo.diaries[diary.ID].Chapters) != 0 {
		t.Fatalf("expected the chapter to be removed, got %+v", repo.diaries[diary.ID].Chapters)
	}

	// Deleting the same chapter again is still a success.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/diaries/"+diary.ID.String()+"/chapters/"+chapter.ID.String(), nil)
	req.Header.Set(headerAuthToken, token)
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected repeated delete to succeed, got %d", rec.Code)
	}
}

func TestSetVisibilityEndpoint(t *testing.T) {
	repo := &stubDiaryRepo{diaries: map[uuid.UUID]*domain.Diary{}}
	e, user, token := newDiaryTestServer(t, repo)

	diary := &domain.Diary{ID: uuid.New(), UserID: user.ID, Name: "Mine", Visibility: domain.VisibilityPrivate}
	repo.diaries[diary.ID] = diary

	req := httptest.NewRequest(http.MethodPut, "/api/diaries/"+diary.ID.String()+"/visibility", strings.NewReader(`{"visibility":"public"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(headerAuthToken, token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if repo.diaries[diary.ID].Visibility != domain.VisibilityPublic {
		t.Fatalf("expected stored visibility to change, got %q", repo.diaries[diary.ID].Visibility)
	}
}
