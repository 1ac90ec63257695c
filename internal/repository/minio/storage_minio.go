package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/traveltales/api/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

// Storage implements ports.ObjectStorage on a MinIO bucket. Upload returns
// the URL the stored object is served back under.
type Storage struct {
	client    *minio.Client
	publicURL string
	useSSL    bool
}

func NewStorage(client *minio.Client, publicURL string, useSSL bool) *Storage {
	return &Storage{
		client:    client,
		publicURL: strings.TrimRight(strings.TrimSpace(publicURL), "/"),
		useSSL:    useSSL,
	}
}

func (s *Storage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, objectName), nil
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, bucket, objectName), nil
}

var _ ports.ObjectStorage = (*Storage)(nil)
