// Package blob abstracts the object store holding photo bytes. The family
// graph store only ever sees URLs; the bytes live behind this interface.
package blob

import "context"

// Store uploads and deletes raw photo objects. Implementations return
// errors.ErrCodeStorageUnavailable when the backend cannot be reached or is
// not configured, and errors.ErrCodeUploadFailed when a write is rejected
// (see pkg/errors).
type Store interface {
	// Upload writes the object and returns its public URL.
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
	// Delete removes the object behind a previously returned URL.
	Delete(ctx context.Context, url string) error
	Close() error
}
