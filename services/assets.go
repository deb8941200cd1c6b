package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vendorportal/logger"
	"vendorportal/models"
	"vendorportal/storage"
	"vendorportal/utils"
)

var ErrMissingSubmission = errors.New("submission id is required")

// AssetService issues direct upload URLs for digital assets and keeps a
// submission's asset prefix tidy.
type AssetService struct {
	blobs     storage.BlobStore
	container string
	sasTTL    time.Duration
	log       logger.Logger
	now       func() time.Time
}

func NewAssetService(blobs storage.BlobStore, container string, sasTTL time.Duration, log logger.Logger) *AssetService {
	return &AssetService{blobs: blobs, container: container, sasTTL: sasTTL, log: log, now: time.Now}
}

// UploadURL returns a write URL for a new asset blob under the submission.
func (s *AssetService) UploadURL(ctx context.Context, vendor, submissionID, filename string) (*models.AssetSASResponse, error) {
	if submissionID == "" {
		return nil, ErrMissingSubmission
	}
	name := utils.SafeFilename(filename)
	if vendor == "" || name == "" {
		return nil, fmt.Errorf("%w: missing vendor or filename", ErrMissingVendor)
	}
	key := AssetKey(vendor, submissionID, name, s.now())
	url, err := s.blobs.UploadURL(ctx, s.container, key, s.sasTTL)
	if err != nil {
		return nil, fmt.Errorf("issue upload url: %w", err)
	}
	return &models.AssetSASResponse{SASURL: url, BlobPath: key}, nil
}

// CheckHash reports whether an asset with the same name and sha256 is
// already stored under the submission, so the browser can skip the upload.
func (s *AssetService) CheckHash(ctx context.Context, vendor, submissionID, fileHash, filename string) (*models.AssetHashResponse, error) {
	if submissionID == "" {
		return nil, ErrMissingSubmission
	}
	name := utils.SafeFilename(filename)
	if vendor == "" || fileHash == "" || name == "" {
		return &models.AssetHashResponse{Skip: false}, nil
	}
	blobs, err := s.blobs.List(ctx, s.container, AssetPrefix(vendor, submissionID))
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	for _, b := range blobs {
		if !strings.HasSuffix(b.Name, name) {
			continue
		}
		data, err := s.blobs.Download(ctx, s.container, b.Name)
		if err != nil {
			return nil, err
		}
		sum, err := utils.HashReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(sum, fileHash) {
			return &models.AssetHashResponse{Skip: true, ExistingBlobPath: b.Name}, nil
		}
	}
	return &models.AssetHashResponse{Skip: false}, nil
}

// Cleanup deletes every asset under the submission that is not in keep and
// returns how many were removed.
func (s *AssetService) Cleanup(ctx context.Context, vendor, submissionID string, keep []string) (int, error) {
	if submissionID == "" {
		return 0, ErrMissingSubmission
	}
	if vendor == "" {
		return 0, ErrMissingVendor
	}
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	blobs, err := s.blobs.List(ctx, s.container, AssetPrefix(vendor, submissionID))
	if err != nil {
		return 0, fmt.Errorf("list assets: %w", err)
	}
	removed := 0
	for _, b := range blobs {
		if kept[b.Name] {
			continue
		}
		if err := s.blobs.Delete(ctx, s.container, b.Name); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			return removed, fmt.Errorf("delete asset %s: %w", b.Name, err)
		}
		removed++
	}
	s.log.Infof(ctx, "Asset cleanup removed %d blobs for submission=%s", removed, submissionID)
	return removed, nil
}
