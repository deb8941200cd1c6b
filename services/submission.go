// Package services holds the portal workflows: submissions to the raw zone,
// review outputs, asset uploads, single product batches and authentication.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"vendorportal/logger"
	"vendorportal/models"
	"vendorportal/storage"
	"vendorportal/utils"
)

var (
	ErrMissingVendor         = errors.New("vendor is required")
	ErrMissingFile           = errors.New("required file missing")
	ErrFileType              = errors.New("file type not allowed")
	ErrUnknownVendorType     = errors.New("unknown vendor type")
	ErrUnknownSubmissionType = errors.New("unknown submission type")
)

// Extensions accepted per upload kind.
var (
	DataExtensions  = []string{"xml", "xlsx"}
	AssetExtensions = []string{"zip"}
)

// Containers names the raw (bronze) and curated (silver) containers.
type Containers struct {
	Bronze string
	Silver string
}

// StagedFile is an upload already saved to the local staging folder.
type StagedFile struct {
	Name string // name as sent by the client
	Path string
}

type VendorSubmission struct {
	Vendor      string
	VendorType  string
	DraftID     string
	SubmittedBy string

	Product  *StagedFile // OptiCat
	Pricing  *StagedFile // OptiCat
	Unified  *StagedFile // non-OptiCat
	AssetZip *StagedFile
}

type PricingReview struct {
	Vendor      string
	SubmittedBy string
	File        *StagedFile
}

type SubmissionResult struct {
	SubmissionID  string           `json:"submission_id"`
	Vendor        string           `json:"vendor"`
	MarkerPath    string           `json:"marker_path"`
	Manifest      *models.Manifest `json:"manifest,omitempty"`
	MovedAssets   int              `json:"moved_assets"`
	AssetsSkipped bool             `json:"assets_skipped"`
}

// SubmissionService lands vendor files in the raw zone and drops the marker
// the downstream watcher picks up.
type SubmissionService struct {
	blobs      storage.BlobStore
	records    storage.SubmissionStore
	trigger    Trigger
	log        logger.Logger
	containers Containers
	now        func() time.Time
}

func NewSubmissionService(blobs storage.BlobStore, records storage.SubmissionStore, trigger Trigger, log logger.Logger, containers Containers) *SubmissionService {
	return &SubmissionService{
		blobs:      blobs,
		records:    records,
		trigger:    trigger,
		log:        log,
		containers: containers,
		now:        time.Now,
	}
}

// SubmitVendor handles an OptiCat or non-OptiCat vendor submission.
func (s *SubmissionService) SubmitVendor(ctx context.Context, in VendorSubmission) (*SubmissionResult, error) {
	if in.Vendor == "" {
		return nil, ErrMissingVendor
	}
	var files []*StagedFile
	switch in.VendorType {
	case models.VendorTypeOptiCat:
		if in.Product == nil || in.Pricing == nil {
			return nil, fmt.Errorf("%w: XML and Pricing XLSX are required for OptiCat vendors", ErrMissingFile)
		}
		files = []*StagedFile{in.Product, in.Pricing}
	case models.VendorTypeNonOptiCat:
		if in.Unified == nil {
			return nil, fmt.Errorf("%w: a unified XLSX file is required for Non-OptiCat vendors", ErrMissingFile)
		}
		files = []*StagedFile{in.Unified}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVendorType, in.VendorType)
	}
	for _, f := range files {
		if !utils.AllowedFile(f.Name, DataExtensions...) {
			return nil, fmt.Errorf("%w: %s", ErrFileType, f.Name)
		}
	}
	if in.AssetZip != nil && !utils.AllowedFile(in.AssetZip.Name, AssetExtensions...) {
		return nil, fmt.Errorf("%w: %s", ErrFileType, in.AssetZip.Name)
	}

	now := s.now()
	id := SubmissionID(now)
	ts := Timestamp(now)
	ctx = logger.WithSubmission(logger.WithVendor(ctx, in.Vendor), id)
	s.log.Infof(ctx, "%s submission for vendor=%s", in.VendorType, in.Vendor)

	res := &SubmissionResult{SubmissionID: id, Vendor: in.Vendor}
	if in.DraftID != "" && in.DraftID != id {
		moved, err := s.MoveDraftAssets(ctx, in.Vendor, in.DraftID, id)
		if err != nil {
			return nil, err
		}
		res.MovedAssets = moved
	}

	manifest := models.Manifest{Vendor: in.Vendor, SubmissionID: id, Timestamp: ts}
	var err error
	if in.VendorType == models.VendorTypeOptiCat {
		if manifest.XMLBlob, err = s.uploadStaged(ctx, in.Product, ProductKey(in.Vendor, ts)); err != nil {
			return nil, err
		}
		if manifest.PricingBlob, err = s.uploadStaged(ctx, in.Pricing, PricingKey(in.Vendor, ts)); err != nil {
			return nil, err
		}
	} else {
		if manifest.UnifiedBlob, err = s.uploadStaged(ctx, in.Unified, UnifiedKey(in.Vendor, ts)); err != nil {
			return nil, err
		}
	}

	if in.AssetZip != nil {
		skipped, err := s.storeAssetZip(ctx, in.Vendor, in.AssetZip, ts, &manifest)
		if err != nil {
			return nil, err
		}
		res.AssetsSkipped = skipped
	}

	manifestKey := ManifestKey(in.Vendor, ts)
	if err := storage.UploadJSON(ctx, s.blobs, s.containers.Bronze, manifestKey, manifest); err != nil {
		return nil, fmt.Errorf("upload manifest: %w", err)
	}
	s.log.Infof(ctx, "Manifest uploaded: %s", manifestKey)
	res.Manifest = &manifest

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	marker := models.Marker{
		SchemaVersion:  models.MarkerSchemaVersion,
		MarkerType:     models.MarkerVendorSubmission,
		Vendor:         in.Vendor,
		SubmissionID:   id,
		SubmissionType: models.SubmissionTypeVendor,
		VendorType:     in.VendorType,
		Actions:        models.MarkerActions{Notify: true, RunETL: true},
		UploadedFiles:  names,
		RawVendorPath:  RawVendorPath(in.Vendor),
		CreatedAt:      createdAt(now),
	}
	res.MarkerPath = MarkerKey(in.Vendor, ts)
	if err := storage.UploadJSON(ctx, s.blobs, s.containers.Bronze, res.MarkerPath, marker); err != nil {
		return nil, fmt.Errorf("upload marker: %w", err)
	}

	if in.VendorType == models.VendorTypeNonOptiCat {
		if err := s.WriteStatus(ctx, in.Vendor, id, "UPLOAD", "DONE", "Files uploaded to bronze"); err != nil {
			return nil, err
		}
		if err := s.trigger.Trigger(ctx, in.Vendor, id); err != nil {
			s.log.Warnf(ctx, "submission stored, ETL not triggered: %v", err)
		}
	}

	s.record(ctx, models.Submission{
		SubmissionID:   id,
		Vendor:         in.Vendor,
		VendorType:     in.VendorType,
		SubmissionType: models.SubmissionTypeVendor,
		SubmittedBy:    in.SubmittedBy,
		Files:          names,
		MarkerPath:     res.MarkerPath,
		CreatedAt:      now.UTC(),
	})
	return res, nil
}

// SubmitPricingReview stores an approved pricing file in the silver zone and
// drops a pricing review marker.
func (s *SubmissionService) SubmitPricingReview(ctx context.Context, in PricingReview) (*SubmissionResult, error) {
	if in.Vendor == "" {
		return nil, ErrMissingVendor
	}
	if in.File == nil {
		return nil, fmt.Errorf("%w: Vendor and pricing file are required", ErrMissingFile)
	}
	if !utils.AllowedFile(in.File.Name, "xlsx") {
		return nil, fmt.Errorf("%w: %s", ErrFileType, in.File.Name)
	}

	now := s.now()
	id := SubmissionID(now)
	ctx = logger.WithSubmission(logger.WithVendor(ctx, in.Vendor), id)
	s.log.Infof(ctx, "Pricing review submitted for vendor=%s", in.Vendor)

	key := PricingReviewKey(in.Vendor, id)
	if err := s.uploadFile(ctx, s.containers.Silver, in.File.Path, key); err != nil {
		return nil, err
	}

	marker := models.Marker{
		SchemaVersion:  models.MarkerSchemaVersion,
		MarkerType:     models.MarkerPricingReview,
		Vendor:         in.Vendor,
		SubmissionID:   id,
		SubmissionType: models.SubmissionTypePricingReview,
		Actions:        models.MarkerActions{Notify: true, RunETL: true},
		UploadedFile:   in.File.Name,
		CreatedAt:      createdAt(now),
	}
	res := &SubmissionResult{SubmissionID: id, Vendor: in.Vendor, MarkerPath: PricingMarkerKey(in.Vendor, id)}
	if err := storage.UploadJSON(ctx, s.blobs, s.containers.Bronze, res.MarkerPath, marker); err != nil {
		return nil, fmt.Errorf("upload marker: %w", err)
	}

	s.record(ctx, models.Submission{
		SubmissionID:   id,
		Vendor:         in.Vendor,
		SubmissionType: models.SubmissionTypePricingReview,
		SubmittedBy:    in.SubmittedBy,
		Files:          []string{in.File.Name},
		MarkerPath:     res.MarkerPath,
		CreatedAt:      now.UTC(),
	})
	return res, nil
}

// MoveDraftAssets moves assets uploaded under a draft submission id to the
// final submission prefix and returns how many moved.
func (s *SubmissionService) MoveDraftAssets(ctx context.Context, vendor, draftID, finalID string) (int, error) {
	from := AssetPrefix(vendor, draftID)
	to := AssetPrefix(vendor, finalID)
	blobs, err := s.blobs.List(ctx, s.containers.Bronze, from)
	if err != nil {
		return 0, fmt.Errorf("list draft assets: %w", err)
	}
	if len(blobs) == 0 {
		s.log.Infof(ctx, "No draft assets to move")
		return 0, nil
	}
	for _, b := range blobs {
		target := to + strings.TrimPrefix(b.Name, from)
		if err := s.blobs.Move(ctx, s.containers.Bronze, b.Name, target); err != nil {
			return 0, fmt.Errorf("move asset %s: %w", b.Name, err)
		}
		s.log.Infof(ctx, "Asset moved to %s", target)
	}
	return len(blobs), nil
}

// WriteStatus stores the progress document of a submission.
func (s *SubmissionService) WriteStatus(ctx context.Context, vendor, submissionID, stage, status, message string) error {
	doc := models.Status{
		Vendor:       vendor,
		SubmissionID: submissionID,
		Stage:        stage,
		Status:       status,
		Message:      message,
		UpdatedAt:    createdAt(s.now()),
	}
	if err := storage.UploadJSON(ctx, s.blobs, s.containers.Silver, StatusKey(vendor, submissionID), doc); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

// LatestAssetHash returns the assets_hash of the vendor's newest manifest,
// by name. nil when there is no manifest or it carried no hash.
func (s *SubmissionService) LatestAssetHash(ctx context.Context, vendor string) (*string, error) {
	blobs, err := s.blobs.List(ctx, s.containers.Bronze, ManifestPrefix(vendor))
	if err != nil {
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	if len(blobs) == 0 {
		return nil, nil
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name > blobs[j].Name })

	var m models.Manifest
	if err := storage.DownloadJSON(ctx, s.blobs, s.containers.Bronze, blobs[0].Name, &m); err != nil {
		return nil, err
	}
	return m.AssetsHash, nil
}

func (s *SubmissionService) storeAssetZip(ctx context.Context, vendor string, zip *StagedFile, ts string, m *models.Manifest) (bool, error) {
	hash, err := utils.FileHash(zip.Path)
	if err != nil {
		return false, fmt.Errorf("hash asset zip: %w", err)
	}
	last, err := s.LatestAssetHash(ctx, vendor)
	if err != nil {
		return false, err
	}
	if last != nil && *last == hash {
		s.log.Infof(ctx, "Assets unchanged, skipping ZIP upload")
		return true, nil
	}

	blob, err := s.uploadStaged(ctx, zip, AssetZipKey(vendor, ts))
	if err != nil {
		return false, err
	}
	m.AssetsBlob = &blob
	m.AssetsHash = &hash
	return false, s.deleteOldAssetZips(ctx, vendor)
}

// deleteOldAssetZips keeps only the newest archive, by name.
func (s *SubmissionService) deleteOldAssetZips(ctx context.Context, vendor string) error {
	blobs, err := s.blobs.List(ctx, s.containers.Bronze, AssetZipPrefix(vendor))
	if err != nil {
		return fmt.Errorf("list asset zips: %w", err)
	}
	if len(blobs) <= 1 {
		return nil
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name < blobs[j].Name })
	for _, old := range blobs[:len(blobs)-1] {
		if err := s.blobs.Delete(ctx, s.containers.Bronze, old.Name); err != nil {
			return fmt.Errorf("delete old asset zip: %w", err)
		}
		s.log.Infof(ctx, "Deleted old asset ZIP: %s", old.Name)
	}
	return nil
}

// uploadStaged uploads a staged file to the bronze container and returns the
// "container/key" reference stored in manifests.
func (s *SubmissionService) uploadStaged(ctx context.Context, f *StagedFile, key string) (string, error) {
	if err := s.uploadFile(ctx, s.containers.Bronze, f.Path, key); err != nil {
		return "", err
	}
	return s.containers.Bronze + "/" + key, nil
}

func (s *SubmissionService) uploadFile(ctx context.Context, container, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()
	if err := s.blobs.Upload(ctx, container, key, f); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	s.log.Infof(ctx, "Uploaded to %s: %s", container, key)
	return nil
}

func (s *SubmissionService) record(ctx context.Context, sub models.Submission) {
	if s.records == nil {
		return
	}
	if err := s.records.RecordSubmission(ctx, &sub); err != nil {
		s.log.Errorf(ctx, "record submission %s: %v", sub.SubmissionID, err)
	}
}

func createdAt(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000") + "Z"
}

// History lists recorded submissions, newest first. An empty vendor lists
// every vendor.
func (s *SubmissionService) History(ctx context.Context, vendor string, limit int) ([]models.Submission, error) {
	subs, err := s.records.ListSubmissions(ctx, vendor, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}
