package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/service"
	"github.com/traveltales/api/internal/util"
)

type DiaryHandler struct {
	diaries *service.DiaryService
	uploads *Uploader
}

type diaryResponse struct {
	*domain.Diary
	IsOwner bool `json:"isOwner"`
}

func RegisterDiaries(e *echo.Echo, auth *service.AuthService, diaries *service.DiaryService, uploads *Uploader) {
	handler := &DiaryHandler{diaries: diaries, uploads: uploads}

	group := e.Group("/api/diaries")
	group.POST("", handler.createDiary, RequireAuth(auth))
	group.GET("", handler.listDiaries, RequireAuth(auth))
	group.GET("/chapters-with-location", handler.listChapterPins, OptionalAuth(auth))
	group.GET("/:id", handler.getDiary, OptionalAuth(auth))
	group.DELETE("/:id", handler.deleteDiary, RequireAuth(auth))
	group.PUT("/:id/visibility", handler.setVisibility, RequireAuth(auth))
	group.POST("/:id/chapters/new", handler.createChapter, RequireAuth(auth))
	group.GET("/:id/chapters", handler.listChapters, OptionalAuth(auth))
	group.GET("/:id/chapters/:chapter_id", handler.getChapter, OptionalAuth(auth))
	group.PUT("/:id/chapters/:chapter_id", handler.updateChapter, RequireAuth(auth))
	group.DELETE("/:id/chapters/:chapter_id", handler.deleteChapter, RequireAuth(auth))
}

func (h *DiaryHandler) createDiary(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "authentication required"))
	}

	photoURL := ""
	if header, err := c.FormFile("photo"); err == nil && header != nil {
		url, uploadErr := h.uploads.SaveImage(c.Request().Context(), "photo", header)
		if uploadErr != nil {
			return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "photo must be a valid image"))
		}
		photoURL = url
	}

	diary, err := h.diaries.CreateDiary(c.Request().Context(), user.ID, c.FormValue("diaryName"), photoURL)
	if err != nil {
		if errors.Is(err, service.ErrDiaryValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error(util.KindInternal, "could not create diary"))
	}
	return c.JSON(http.StatusOK, diary)
}

func (h *DiaryHandler) listDiaries(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "authentication required"))
	}

	diaries, err := h.diaries.ListDiaries(c.Request().Context(), user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error(util.KindInternal, "could not load diaries"))
	}
	return c.JSON(http.StatusOK, diaries)
}

func (h *DiaryHandler) listChapterPins(c echo.Context) error {
	pins, err := h.diaries.ListChapterPins(c.Request().Context(), CallerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error(util.KindInternal, "could not load chapter locations"))
	}
	return c.JSON(http.StatusOK, pins)
}

func (h *DiaryHandler) getDiary(c echo.Context) error {
	diaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "diary id must be a valid UUID"))
	}

	diary, isOwner, err := h.diaries.GetDiary(c.Request().Context(), diaryID, CallerID(c))
	if err != nil {
		return diaryError(c, err)
	}
	return c.JSON(http.StatusOK, diaryResponse{Diary: diary, IsOwner: isOwner})
}

func (h *DiaryHandler) deleteDiary(c echo.Context) error {
	user, diaryID, err := h.ownerAndDiaryID(c)
	if err != nil {
		return err
	}

	if err := h.diaries.DeleteDiary(c.Request().Context(), diaryID, user.ID); err != nil {
		return diaryError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Diary deleted"})
}

func (h *DiaryHandler) setVisibility(c echo.Context) error {
	user, diaryID, err := h.ownerAndDiaryID(c)
	if err != nil {
		return err
	}

	var req struct {
		Visibility string `json:"visibility"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "invalid request body"))
	}

	visibility, err := h.diaries.SetVisibility(c.Request().Context(), diaryID, user.ID, req.Visibility)
	if err != nil {
		return diaryError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"visibility": visibility})
}

func (h *DiaryHandler) createChapter(c echo.Context) error {
	user, diaryID, err := h.ownerAndDiaryID(c)
	if err != nil {
		return err
	}

	var req struct {
		Title     string `json:"title"`
		Content   string `json:"content"`
		Date      string `json:"date"`
		Latitude  any    `json:"latitude"`
		Longitude any    `json:"longitude"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "invalid request body"))
	}

	chapter, err := h.diaries.CreateChapter(c.Request().Context(), diaryID, user.ID, service.ChapterCreateInput{
		Title:     req.Title,
		Content:   req.Content,
		Date:      parseDate(req.Date),
		Latitude:  coerceCoordinate(req.Latitude),
		Longitude: coerceCoordinate(req.Longitude),
	})
	if err != nil {
		return diaryError(c, err)
	}
	return c.JSON(http.StatusOK, chapter)
}

func (h *DiaryHandler) listChapters(c echo.Context) error {
	diaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "diary id must be a valid UUID"))
	}

	chapters, _, err := h.diaries.ListChapters(c.Request().Context(), diaryID, CallerID(c))
	if err != nil {
		return diaryError(c, err)
	}
	return c.JSON(http.StatusOK, chapters)
}

func (h *DiaryHandler) getChapter(c echo.Context) error {
	diaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "diary id must be a valid UUID"))
	}
	chapterID, err := uuid.Parse(c.Param("chapter_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "chapter id must be a valid UUID"))
	}

	chapter, err := h.diaries.GetChapter(c.Request().Context(), diaryID, chapterID, CallerID(c))
	if err != nil {
		return diaryError(c, err)
	}
	return c.JSON(http.StatusOK, chapter)
}

// updateChapter applies a multipart partial update. Omitted or empty fields
// stay unchanged; uploaded "photos" files are appended to the chapter's
// photo sequence.
func (h *DiaryHandler) updateChapter(c echo.Context) error {
	user, diaryID, err := h.ownerAndDiaryID(c)
	if err != nil {
		return err
	}
	chapterID, err := uuid.Parse(c.Param("chapter_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "chapter id must be a valid UUID"))
	}

	input := service.ChapterUpdateInput{
		Title:           formValuePtr(c, "title"),
		Content:         formValuePtr(c, "content"),
		BackgroundColor: formValuePtr(c, "backgroundColor"),
	}
	if raw := formValuePtr(c, "date"); raw != nil {
		input.Date = parseDate(*raw)
	}
	input.Latitude = parseCoordinate(c.FormValue("latitude"))
	input.Longitude = parseCoordinate(c.FormValue("longitude"))

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File["photos"] {
			url, uploadErr := h.uploads.SaveImage(c.Request().Context(), "photos", header)
			if uploadErr != nil {
				return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "photos must be valid images"))
			}
			input.AddPhotos = append(input.AddPhotos, url)
		}
	}

	chapter, err := h.diaries.UpdateChapter(c.Request().Context(), diaryID, chapterID, user.ID, input)
	if err != nil {
		return diaryError(c, err)
	}
	return c.JSON(http.StatusOK, chapter)
}

func (h *DiaryHandler) deleteChapter(c echo.Context) error {
	user, diaryID, err := h.ownerAndDiaryID(c)
	if err != nil {
		return err
	}
	chapterID, err := uuid.Parse(c.Param("chapter_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "chapter id must be a valid UUID"))
	}

	if err := h.diaries.DeleteChapter(c.Request().Context(), diaryID, chapterID, user.ID); err != nil {
		return diaryError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Chapter removed"})
}

func (h *DiaryHandler) ownerAndDiaryID(c echo.Context) (*domain.User, uuid.UUID, error) {
	user, ok := CurrentUser(c)
	if !ok {
		return nil, uuid.Nil, c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "authentication required"))
	}
	diaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, uuid.Nil, c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "diary id must be a valid UUID"))
	}
	return user, diaryID, nil
}

func diaryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrDiaryValidation):
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, err.Error()))
	case errors.Is(err, service.ErrDiaryNotFound):
		return c.JSON(http.StatusNotFound, util.Error(util.KindNotFound, "diary not found"))
	case errors.Is(err, service.ErrChapterNotFound):
		return c.JSON(http.StatusNotFound, util.Error(util.KindNotFound, "chapter not found"))
	case errors.Is(err, service.ErrDiaryForbidden):
		return c.JSON(http.StatusForbidden, util.Error(util.KindForbidden, "access denied"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error(util.KindInternal, "server error"))
	}
}

func formValuePtr(c echo.Context, field string) *string {
	value := strings.TrimSpace(c.FormValue(field))
	if value == "" {
		return nil
	}
	return &value
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func parseCoordinate(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// coerceCoordinate accepts the number-or-string coordinates JSON clients
// send.
func coerceCoordinate(raw any) *float64 {
	switch v := raw.(type) {
	case float64:
		return &v
	case string:
		return parseCoordinate(v)
	default:
		return nil
	}
}
