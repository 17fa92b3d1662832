package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage implements BlobStore on Cloudinary. The object path maps
// to folder + public ID, so "events/main/photo.jpg" lands in the events/main
// folder as "photo".
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	base := path.Base(objectPath)
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   path.Dir(objectPath),
		PublicID: strings.TrimSuffix(base, path.Ext(base)),
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}

	return resp.SecureURL, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, imageURL string) error {
	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

// extractPublicID derives the Cloudinary public ID from a delivery URL, e.g.
// https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg
// yields "events/abc123".
func extractPublicID(imageURL string) (string, error) {
	const marker = "/upload/"

	idx := strings.Index(imageURL, marker)
	if idx == -1 {
		return "", fmt.Errorf("invalid cloudinary URL %q", imageURL)
	}

	parts := strings.Split(imageURL[idx+len(marker):], "/")
	// Skip the version segment (e.g. v1234567890) when present.
	if len(parts) > 1 && len(parts[0]) > 1 && parts[0][0] == 'v' && isDigits(parts[0][1:]) {
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("invalid cloudinary URL %q", imageURL)
	}

	joined := path.Join(parts...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
