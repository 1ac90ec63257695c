package http

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/traveltales/api/internal/media"
	"github.com/traveltales/api/internal/repository/ports"
)

// Uploader pushes validated multipart images into object storage. Object
// names follow {field}-{timestamp}{ext} under an uploads/ prefix so served
// URLs stay collision free and recognizable.
type Uploader struct {
	storage  ports.ObjectStorage
	bucket   string
	maxBytes int64
}

func NewUploader(storage ports.ObjectStorage, bucket string, maxBytes int64) *Uploader {
	return &Uploader{storage: storage, bucket: bucket, maxBytes: maxBytes}
}

// SaveImage streams one multipart file through image validation into
// storage and returns the URL it will be served under.
func (u *Uploader) SaveImage(ctx context.Context, field string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	img, err := media.ReadImage(file, u.maxBytes)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("uploads/%s-%d%s", field, time.Now().UnixMilli(), extensionFor(img.ContentType))
	return u.storage.Upload(ctx, u.bucket, objectName, img.ContentType, bytes.NewReader(img.Bytes), int64(len(img.Bytes)))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
