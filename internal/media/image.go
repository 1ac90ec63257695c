package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension bounds either side of an accepted image.
	MaxDimension = 8192
)

var ErrNotAnImage = errors.New("file is not a supported image")

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Image is a validated upload ready to be pushed to object storage.
type Image struct {
	Bytes       []byte
	ContentType string
	Width       int
	Height      int
}

// ReadImage buffers an uploaded file, sniffs its real content type and
// verifies it decodes as a supported image within size limits. The declared
// multipart content type is ignored; only the bytes are trusted.
func ReadImage(r io.Reader, maxBytes int64) (*Image, error) {
	limited := io.LimitReader(r, maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("image exceeds size limit (%d bytes)", maxBytes)
	}
	if len(data) == 0 {
		return nil, ErrNotAnImage
	}

	contentType := http.DetectContentType(data)
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, ErrNotAnImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotAnImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, fmt.Errorf("image dimensions %dx%d out of range", cfg.Width, cfg.Height)
	}

	return &Image{
		Bytes:       data,
		ContentType: contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
