package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func ParseVisibility(raw string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(raw))) {
	case VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	default:
		return "", fmt.Errorf("invalid visibility %q", raw)
	}
}

type WeatherSnapshot struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Chapter is an embedded entry of a Diary. It has no lifecycle outside its
// parent aggregate; its ID is assigned when it is appended.
type Chapter struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	Date            time.Time        `json:"date"`
	Photos          []string         `json:"photos"`
	BackgroundColor string           `json:"background_color,omitempty"`
	Latitude        *float64         `json:"latitude"`
	Longitude       *float64         `json:"longitude"`
	Weather         *WeatherSnapshot `json:"weather"`
}

// HasLocation is true only when both coordinates are present. A chapter with
// a single coordinate is treated as having none.
func (c Chapter) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// ChapterList stores a diary's chapters as a JSONB column so the whole
// aggregate is written in a single row update.
type ChapterList []Chapter

func (l ChapterList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Chapter(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ChapterList) Scan(value any) error {
	if l == nil {
		return fmt.Errorf("domain.ChapterList: Scan on nil pointer")
	}
	b, err := jsonColumnBytes(value, "domain.ChapterList")
	if err != nil {
		return err
	}
	if b == nil {
		*l = ChapterList{}
		return nil
	}
	var chapters []Chapter
	if err := json.Unmarshal(b, &chapters); err != nil {
		return fmt.Errorf("domain.ChapterList: %w", err)
	}
	*l = chapters
	return nil
}

type Diary struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	UserID     uuid.UUID   `db:"user_id" json:"user"`
	Name       string      `db:"name" json:"diary_name"`
	PhotoURL   string      `db:"photo_url" json:"photo_url"`
	Visibility Visibility  `db:"visibility" json:"visibility"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	Chapters   ChapterList `db:"chapters" json:"chapters"`
}

// Chapter returns the embedded chapter with the given id, or nil.
func (d *Diary) Chapter(id uuid.UUID) *Chapter {
	for i := range d.Chapters {
		if d.Chapters[i].ID == id {
			return &d.Chapters[i]
		}
	}
	return nil
}

// RemoveChapter drops the chapter with the given id from the sequence and
// reports whether it was present.
func (d *Diary) RemoveChapter(id uuid.UUID) bool {
	for i := range d.Chapters {
		if d.Chapters[i].ID == id {
			d.Chapters = append(d.Chapters[:i], d.Chapters[i+1:]...)
			return true
		}
	}
	return false
}

// ChapterPin is the map-view projection of a geotagged chapter.
type ChapterPin struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	DiaryID   uuid.UUID `json:"diary_id"`
}

func jsonColumnBytes(value any, what string) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("%s: unsupported Scan type %T", what, value)
	}
}
