package blob

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/kintreehq/kintree/pkg/errors"
)

// GCS stores photo objects in a Google Cloud Storage bucket. Objects are
// public-read by bucket policy; Upload returns the canonical
// storage.googleapis.com URL.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS connects to GCS with the given service-account key. A missing key
// file or failed client setup yields a STORAGE_UNAVAILABLE error, so the
// caller can degrade to metadata-only mode.
func NewGCS(ctx context.Context, bucket, credentialsPath string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New(errors.ErrCodeStorageUnavailable, "no photo bucket configured")
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageUnavailable, err, "service account key not found at %s", credentialsPath)
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageUnavailable, err, "create storage client")
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Upload writes one photo object and returns its public URL.
func (g *GCS) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	w := g.client.Bucket(g.bucket).Object(filename).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", errors.Wrap(errors.ErrCodeUploadFailed, err, "write object %s", filename)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeUploadFailed, err, "close object %s", filename)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, filename), nil
}

// Delete removes the object behind a URL returned by Upload. URLs outside
// this bucket are rejected.
func (g *GCS) Delete(ctx context.Context, url string) error {
	prefix := fmt.Sprintf("https://storage.googleapis.com/%s/", g.bucket)
	name, ok := strings.CutPrefix(url, prefix)
	if !ok || name == "" {
		return errors.New(errors.ErrCodeValidation, "url %q is not in bucket %s", url, g.bucket)
	}
	if err := g.client.Bucket(g.bucket).Object(name).Delete(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeUploadFailed, err, "delete object %s", name)
	}
	return nil
}

// Close releases the underlying client.
func (g *GCS) Close() error { return g.client.Close() }

var _ Store = (*GCS)(nil)
