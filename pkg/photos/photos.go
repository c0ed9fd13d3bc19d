// Package photos manages the photo gallery: metadata and tags live in the
// family store, the bytes behind each URL live in a blob store.
package photos

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kintreehq/kintree/pkg/blob"
	"github.com/kintreehq/kintree/pkg/family"
)

// Service coordinates the blob store and the family store for photo flows.
type Service struct {
	store  family.Store
	blobs  blob.Store
	logger *log.Logger
}

// NewService creates a photo service. If logger is nil, log.Default() is
// used.
func NewService(store family.Store, blobs blob.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, blobs: blobs, logger: logger}
}

// Upload is one file of a batch.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Fields carries the metadata shared by every photo of a batch.
type Fields struct {
	Caption   string   `json:"caption"`
	Location  string   `json:"location"`
	Date      string   `json:"date"`
	Comments  string   `json:"comments"`
	PersonIDs []string `json:"person_ids"`
}

// BatchResult aggregates a batch upload. A failed file is skipped and the
// batch continues; the caller decides how to surface partial failure.
type BatchResult struct {
	SuccessCount int            `json:"success_count"`
	FailCount    int            `json:"fail_count"`
	Errors       []string       `json:"errors,omitempty"`
	Photos       []family.Photo `json:"photos"`
}

// UploadBatch processes the files sequentially: upload bytes, create the
// photo record, tag all persons with one batch store call. Any step failing
// fails that file only. The returned error is reserved for total breakdowns;
// per-file failures land in the result.
func (s *Service) UploadBatch(ctx context.Context, uploads []Upload, fields Fields) (BatchResult, error) {
	res := BatchResult{Photos: []family.Photo{}}
	for _, up := range uploads {
		ph, err := s.uploadOne(ctx, up, fields)
		if err != nil {
			s.logger.Warn("photo upload failed", "file", up.Filename, "err", err)
			res.FailCount++
			res.Errors = append(res.Errors, up.Filename+": "+err.Error())
			continue
		}
		res.SuccessCount++
		res.Photos = append(res.Photos, ph)
	}
	return res, nil
}

func (s *Service) uploadOne(ctx context.Context, up Upload, fields Fields) (family.Photo, error) {
	id := uuid.NewString()
	url, err := s.blobs.Upload(ctx, up.Data, id+"-"+up.Filename, up.ContentType)
	if err != nil {
		return family.Photo{}, err
	}

	ph, err := s.store.CreatePhoto(ctx, family.Photo{
		ID:       id,
		URL:      url,
		Caption:  fields.Caption,
		Location: fields.Location,
		Date:     fields.Date,
		Comments: fields.Comments,
	})
	if err != nil {
		return family.Photo{}, err
	}
	if err := s.store.CreateTags(ctx, ph.ID, fields.PersonIDs); err != nil {
		return family.Photo{}, err
	}
	ph.Persons = fields.PersonIDs
	return ph, nil
}

// List returns all photos with their tagged person ids populated.
func (s *Service) List(ctx context.Context) ([]family.Photo, error) {
	return s.store.ListPhotos(ctx)
}

// Delete removes a photo: its record, its tag edges, and its stored bytes.
// Tagged persons are untouched. A blob that cannot be deleted is logged and
// left behind; the record is gone either way.
func (s *Service) Delete(ctx context.Context, id string) error {
	photos, err := s.store.ListPhotos(ctx)
	if err != nil {
		return err
	}
	var url string
	for _, ph := range photos {
		if ph.ID == id {
			url = ph.URL
			break
		}
	}

	if err := s.store.DeletePhoto(ctx, id); err != nil {
		return err
	}
	if url != "" {
		if err := s.blobs.Delete(ctx, url); err != nil {
			s.logger.Warn("orphaned blob after photo delete", "id", id, "url", url, "err", err)
		}
	}
	s.logger.Info("deleted photo", "id", id)
	return nil
}
