package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FirebaseStorage implements BlobStore on a Firebase Storage bucket. Retrieval
// URLs are built in the firebasestorage.googleapis.com download shape so that
// ObjectPathFromURL can recover the object path for deletion.
type FirebaseStorage struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseStorage initialises the Firebase app and resolves its default
// bucket. credentialsFile may be empty when application-default credentials
// are available.
func NewFirebaseStorage(ctx context.Context, bucketName, credentialsFile string) (*FirebaseStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("default bucket %q: %w", bucketName, err)
	}

	return &FirebaseStorage{bucket: bucket, bucketName: bucketName}, nil
}

func (s *FirebaseStorage) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error) {
	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("write object %q: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish object %q: %w", objectPath, err)
	}

	return DownloadURL(s.bucketName, objectPath), nil
}

func (s *FirebaseStorage) Delete(ctx context.Context, imageURL string) error {
	objectPath, err := ObjectPathFromURL(imageURL)
	if err != nil {
		return err
	}

	if err := s.bucket.Object(objectPath).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, objectPath)
		}
		return fmt.Errorf("delete object %q: %w", objectPath, err)
	}
	return nil
}

// DownloadURL builds the public download URL for an object, with the object
// path percent-encoded between the /o/ and ?alt= markers.
func DownloadURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		bucket, url.PathEscape(objectPath))
}
